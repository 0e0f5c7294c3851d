package getorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/transport/http/respond"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, id int64) (order.Order, error)
}

// GetOrder handles the point read of one order with its lines.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: "invalid order id"})

		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order", "order_id", id, "error", err)

		return
	}

	respond.OK(w, "", o)
}

package deleteorder

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
	DeleteOrder(ctx context.Context, id int64) (bool, error)
}

// DeleteOrder handles the administrative order delete. The order and
// all of its lines go together.
func DeleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: "invalid order id"})

		return
	}

	existed, err := service.DeleteOrder(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error deleting order", "order_id", id, "error", err)

		return
	}

	if !existed {
		respond.JSON(w, http.StatusNotFound, respond.Envelope{Success: false, Error: order.ErrNotFound.Error()})

		return
	}

	respond.OK(w, "Order deleted", nil)
}

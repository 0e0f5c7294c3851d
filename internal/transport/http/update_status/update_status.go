package updatestatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/transport/http/respond"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type service interface {
	ChangeStatus(ctx context.Context, id int64, newStatus string) (order.Order, error)
}

// updateStatusRequest represents a status update request.
type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the update status request.
func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateStatus handles the order status update request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: "invalid order id"})

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: err.Error()})
		slog.Error("Error decoding request body for status update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: err.Error()})

		return
	}

	updated, err := service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating order status", "order_id", id, "status", req.Status, "error", err)

		return
	}

	respond.OK(w, "Order status updated", updated)
}

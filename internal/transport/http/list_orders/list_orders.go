package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/status"
	"github.com/dinetrack/order/internal/transport/http/respond"
	"github.com/gorilla/schema"
)

type service interface {
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Status      string `schema:"status,omitempty"`
	TableNumber int    `schema:"tableNumber,omitempty"`
}

func (q *queryOrdersRequest) toModel() (*order.QueryOrdersModel, error) {
	model := &order.QueryOrdersModel{TableNumber: q.TableNumber}
	if q.Status != "" {
		st, err := status.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		model.Status = st
	}

	return model, nil
}

// ListOrders handles the filtered order listing.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: err.Error()})
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.toModel()
	if err != nil {
		respond.Error(w, err)

		return
	}

	orders, err := service.GetOrders(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	respond.List(w, len(orders), orders)
}

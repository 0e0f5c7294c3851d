package placeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(
		ctx context.Context,
		tableNumber int,
		lines []orderline.OrderLine,
		totalCents int64,
	) (order.Order, error)
}

// itemInPlaceOrderRequest represents one line in a placement request.
type itemInPlaceOrderRequest struct {
	Name     string `json:"name"     validate:"required"`
	Price    int64  `json:"price"    validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Category string `json:"category"`
	Image    string `json:"image"`
	PrepTime int    `json:"prepTime" validate:"gte=0"`
}

// toModel converts itemInPlaceOrderRequest to orderline.OrderLine.
func (r *itemInPlaceOrderRequest) toModel() orderline.OrderLine {
	return orderline.OrderLine{
		Name:        r.Name,
		PriceCents:  r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		Image:       r.Image,
		PrepMinutes: r.PrepTime,
	}
}

// placeOrderRequest represents a place order request.
type placeOrderRequest struct {
	TableNumber int                       `json:"tableNumber" validate:"gt=0"`
	Items       []itemInPlaceOrderRequest `json:"items"       validate:"required,min=1,dive"`
	Total       int64                     `json:"total"       validate:"gt=0"`
}

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// PlaceOrder handles the order placement request.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: err.Error()})
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.Envelope{Success: false, Error: err.Error()})
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	lines := make([]orderline.OrderLine, len(req.Items))
	for i := range req.Items {
		lines[i] = req.Items[i].toModel()
	}

	created, err := service.PlaceOrder(r.Context(), req.TableNumber, lines, req.Total)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	respond.Created(w, "Order placed successfully", created)
}

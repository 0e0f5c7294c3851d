package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dinetrack/order/internal/dal/interfaces/iorderstore"
	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/status"
)

// Envelope is the uniform response body for client-facing endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes the envelope with the given HTTP status.
func JSON(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// List writes a 200 success envelope with an item count.
func List(w http.ResponseWriter, count int, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

// Error maps a service error onto the HTTP taxonomy and writes it.
func Error(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, status.ErrUnknownStatus),
		errors.Is(err, status.ErrInvalidTransition):
		code = http.StatusBadRequest
	case errors.Is(err, order.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, iorderstore.ErrUnavailable):
		code = http.StatusInternalServerError
	}

	JSON(w, code, Envelope{Success: false, Error: err.Error()})
}

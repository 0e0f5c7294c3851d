package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	deleteorder "github.com/dinetrack/order/internal/transport/http/delete_order"
	getorder "github.com/dinetrack/order/internal/transport/http/get_order"
	listorders "github.com/dinetrack/order/internal/transport/http/list_orders"
	placeorder "github.com/dinetrack/order/internal/transport/http/place_order"
	"github.com/dinetrack/order/internal/transport/http/respond"
	updatestatus "github.com/dinetrack/order/internal/transport/http/update_status"
	"github.com/dinetrack/order/pkg/http/middleware/trace"
	"github.com/dinetrack/order/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type service interface {
	PlaceOrder(
		ctx context.Context,
		tableNumber int,
		lines []orderline.OrderLine,
		totalCents int64,
	) (order.Order, error)
	ChangeStatus(ctx context.Context, id int64, newStatus string) (order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	DeleteOrder(ctx context.Context, id int64) (bool, error)
	Degraded() bool
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	ws      http.Handler
}

func NewHTTPTransport(service service, ws http.Handler) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		ws:      ws,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Patch("/orders/{id}/status", h.updateStatus)
		r.Delete("/orders/{id}", h.deleteOrder)
	})
	h.router.Get("/health", h.health)

	if h.ws != nil {
		h.router.Get("/ws", h.ws.ServeHTTP)
	}
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.service)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.service)
}

// health carries the out-of-band degraded-store signal: clients placing
// orders while degraded must be able to learn about the data-loss window.
func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	database := "up"
	if h.service.Degraded() {
		database = "degraded"
	}

	respond.OK(w, "", map[string]any{
		"status":    "healthy",
		"database":  database,
		"degraded":  h.service.Degraded(),
		"timestamp": time.Now().UTC(),
	})
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	if viper.GetBool("otel.enabled") {
		router.Use(trace.NewTraceMiddleware)
	}

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}

package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dinetrack/order/internal/dal/postgres"
	"github.com/dinetrack/order/internal/dal/rabbitmq"
	outboxrepo "github.com/dinetrack/order/internal/dal/repositories/outbox/postgres"
	memorystore "github.com/dinetrack/order/internal/dal/store/memory"
	postgresstore "github.com/dinetrack/order/internal/dal/store/postgres"
	"github.com/dinetrack/order/internal/hub"
	"github.com/dinetrack/order/internal/otel"
	"github.com/dinetrack/order/internal/service/services/ordersvc"
	httptransport "github.com/dinetrack/order/internal/transport/http"
	"github.com/dinetrack/order/internal/transport/ws"
	outboxworker "github.com/dinetrack/order/internal/worker/outbox"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
	probeInterval  time.Duration
}

// MustNewApp creates a new application. A missing database is not
// fatal: the service comes up in degraded mode and the probe loop
// keeps watching for recovery.
func MustNewApp() *App {
	a := &App{}

	postgresClient, err := postgres.NewClient(context.Background())
	if err != nil {
		slog.Warn("Durable store unavailable at startup, running degraded", "error", err)
	}
	a.postgresClient = postgresClient

	notifHub := hub.NewHub(viper.GetInt("hub.send_buffer"))

	opts := []ordersvc.Option{
		ordersvc.WithFallbackStore(memorystore.NewStore()),
		ordersvc.WithPublisher(notifHub),
	}
	if postgresClient != nil {
		opts = append(opts, ordersvc.WithDurableStore(postgresstore.NewStore(postgresClient)))
	}

	if viper.GetBool("rabbitmq.enabled") && postgresClient != nil {
		rabbitClient, err := rabbitmq.NewClient()
		if err != nil {
			slog.Error("RabbitMQ unavailable, event mirror disabled", "error", err)
		} else {
			if err := rabbitClient.DeclareExchange(viper.GetString("rabbitmq.exchange")); err != nil {
				panic("failed to declare exchange: " + err.Error())
			}
			repo := outboxrepo.NewOutboxRepository(postgresClient.Pool())
			a.rabbitClient = rabbitClient
			a.outboxWorker = outboxworker.NewWorker(repo, rabbitClient)
			opts = append(opts, ordersvc.WithOutboxRepository(repo))
		}
	}

	a.orderSvc = ordersvc.MustNewOrderService(opts...)

	transport := httptransport.NewHTTPTransport(a.orderSvc, ws.NewHandler(notifHub))
	transport.RegisterRoutes()
	a.transport = transport

	if viper.GetBool("otel.enabled") {
		a.otelController = otel.MustInitOtel()
	}

	probeSeconds := viper.GetInt("service.probe_interval_seconds")
	if probeSeconds == 0 {
		probeSeconds = 15
	}
	a.probeInterval = time.Duration(probeSeconds) * time.Second

	return a
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go a.probeLoop(workerCtx)

	if a.outboxWorker != nil {
		go a.outboxWorker.Start(workerCtx)
	}

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorkers()

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	if a.otelController != nil {
		if err := a.otelController.Shutdown(); err != nil {
			slog.Error("Trace provider shutdown error", "error", err)
		}
	}

	if a.postgresClient != nil {
		a.postgresClient.Close()
		slog.Info("Database connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}

// probeLoop re-checks durable store liveness so the service returns
// from degraded mode once the database recovers.
func (a *App) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(a.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			a.orderSvc.ProbeDurable(probeCtx)
			cancel()
		}
	}
}

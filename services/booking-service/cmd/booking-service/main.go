package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookline/bookline/libs/config"
	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/libs/httpx"
	"github.com/bookline/bookline/libs/kafkax"
	otelx "github.com/bookline/bookline/libs/otel"
	"github.com/bookline/bookline/libs/runtime"
	"github.com/bookline/bookline/services/booking-service/internal/booking"
	"github.com/bookline/bookline/services/booking-service/internal/handlers"
	"github.com/bookline/bookline/services/booking-service/internal/lifecycle"
	"github.com/bookline/bookline/services/booking-service/internal/outbox"
	"github.com/bookline/bookline/services/booking-service/internal/schedule"
	"github.com/bookline/bookline/services/booking-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	store := storage.NewReservationStore(pool, outboxRepo)
	catalog := storage.NewServiceCatalog(pool)

	var availability booking.AvailabilityStore
	provider, err := schedule.NewProvider(config.String("PROVIDER_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("availability provider init failed; using shared schema", "err", err)
		provider = nil
	}
	if provider != nil {
		availability = provider
	} else {
		availability = storage.NewAvailabilityStore(pool)
	}

	svc := booking.New(booking.Config{
		Store:        store,
		Availability: availability,
		Catalog:      catalog,
		Logger:       logger,
		Rules: lifecycle.Rules{
			RescheduleNotice: config.DurationMinutes("RESCHEDULE_NOTICE_MINUTES", 24*time.Hour),
			CancelNotice:     config.DurationMinutes("CANCEL_NOTICE_MINUTES", 2*time.Hour),
		},
	})

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handlers.NewReservationHandler(svc, logger).Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookline/bookline/libs/config"
	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/libs/httpx"
	"github.com/bookline/bookline/libs/kafkax"
	otelx "github.com/bookline/bookline/libs/otel"
	"github.com/bookline/bookline/libs/runtime"
	"github.com/bookline/bookline/services/analytics-service/internal/cache"
	"github.com/bookline/bookline/services/analytics-service/internal/consumer"
	"github.com/bookline/bookline/services/analytics-service/internal/handlers"
	"github.com/bookline/bookline/services/analytics-service/internal/inbox"
	"github.com/bookline/bookline/services/analytics-service/internal/metrics"
	"github.com/bookline/bookline/services/analytics-service/internal/storage"
)

// reservationTopics are the booking-service event streams projected into
// the daily aggregates.
var reservationTopics = []string{
	"booking.reservation.booked.v1",
	"booking.reservation.updated.v1",
	"booking.reservation.cancelled.v1",
	"booking.reservation.deleted.v1",
}

func main() {
	service := config.String("SERVICE_NAME", "analytics-service")
	port, err := config.Port("PORT", "8084")
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

	repo := storage.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)
	responseCache := cache.New(
		config.String("REDIS_ADDR", ""),
		logger,
		config.DurationSeconds("CACHE_TTL_SECONDS", 60*time.Second),
	)

	project := func(ctx context.Context, msg kafka.Message) error {
		var evt metrics.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid reservation event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		delta, ok := metrics.DeltaFor(evt)
		if !ok {
			return nil
		}
		return repo.ApplyDelta(ctx, delta)
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "analytics-service")
	for _, topic := range reservationTopics {
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, project)
		go eventConsumer.Run(ctx)
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
		runtime.ReadyCheck{Name: "redis", Check: responseCache.ReadyCheck()},
	)
	handlers.NewDashboardHandler(repo, responseCache, logger).Register(mux)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "analytics")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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

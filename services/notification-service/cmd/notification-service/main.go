package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookline/bookline/libs/config"
	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/libs/httpx"
	"github.com/bookline/bookline/libs/kafkax"
	otelx "github.com/bookline/bookline/libs/otel"
	"github.com/bookline/bookline/libs/runtime"
	"github.com/bookline/bookline/services/notification-service/internal/consumer"
	"github.com/bookline/bookline/services/notification-service/internal/email"
	"github.com/bookline/bookline/services/notification-service/internal/inbox"
	"github.com/bookline/bookline/services/notification-service/internal/notify"
	"github.com/bookline/bookline/services/notification-service/internal/outbox"
	"github.com/bookline/bookline/services/notification-service/internal/reminders"
	"github.com/bookline/bookline/services/notification-service/internal/sms"
	"github.com/bookline/bookline/services/notification-service/internal/storage"
)

// reservationTopics are the booking-service event streams this service
// turns into customer and provider notifications.
var reservationTopics = []string{
	"booking.reservation.booked.v1",
	"booking.reservation.updated.v1",
	"booking.reservation.cancelled.v1",
	"booking.reservation.deleted.v1",
}

type app struct {
	pool       *db.Pool
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	emails     email.Sender
	texts      sms.Sender
	logger     *slog.Logger
}

func (a *app) handleReservationEvent(ctx context.Context, msg kafka.Message) error {
	var evt notify.ReservationEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		a.logger.Error("invalid reservation event payload", "err", err, "topic", msg.Topic)
		return nil
	}
	if evt.ReservationID == "" || evt.CustomerID == "" || evt.ProviderID == "" || evt.Event == "" {
		a.logger.Error("missing reservation event fields", "topic", msg.Topic)
		return nil
	}

	if msg, ok := notify.ForCustomer(evt); ok {
		if err := a.deliver(ctx, evt, evt.CustomerID, msg); err != nil {
			return err
		}
	}
	if msg, ok := notify.ForProvider(evt); ok {
		if err := a.deliver(ctx, evt, evt.ProviderID, msg); err != nil {
			return err
		}
	}
	return nil
}

// deliver sends over email, falling back to SMS when the recipient has a
// phone but no mailbox, and records the attempt plus its outbox event.
func (a *app) deliver(ctx context.Context, evt notify.ReservationEvent, recipient string, msg notify.Message) error {
	contact, err := a.repo.GetContact(ctx, recipient)
	if err != nil && !errors.Is(err, storage.ErrNoContact) {
		return err
	}

	channel := "email"
	address := contact.Email
	if address == "" && contact.Phone != "" {
		channel = "sms"
		address = contact.Phone
	}

	status := "sent"
	reason := ""
	switch {
	case address == "":
		status = "failed"
		reason = "no contact on file"
		a.logger.Warn("notification skipped, no contact", "recipient", recipient, "reservation_id", evt.ReservationID)
	case channel == "email":
		if err := a.emails.Send(address, msg.Subject, msg.Body); err != nil {
			status = "failed"
			reason = err.Error()
			a.logger.Error("email send failed", "err", err, "recipient", recipient)
		}
	default:
		if err := a.texts.Send(ctx, address, msg.Body); err != nil {
			status = "failed"
			reason = err.Error()
			a.logger.Error("sms send failed", "err", err, "recipient", recipient)
		}
	}

	if err := a.repo.Insert(ctx, storage.Notification{
		ReservationID: evt.ReservationID,
		Recipient:     recipient,
		Channel:       channel,
		Kind:          evt.Event,
		Address:       address,
		Subject:       msg.Subject,
		Body:          msg.Body,
		Status:        status,
	}); err != nil {
		return err
	}

	var outEvt outbox.Event
	if status == "sent" {
		outEvt, err = outbox.SentEvent(evt.ReservationID, recipient, channel, evt.Event)
	} else {
		outEvt, err = outbox.FailedEvent(evt.ReservationID, recipient, channel, evt.Event, reason)
	}
	if err != nil {
		return err
	}
	return a.outboxRepo.InsertStandalone(ctx, outEvt)
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8083")
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
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	emailSender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@bookline.local"),
	)

	var smsSender sms.Sender
	switch strings.ToLower(config.String("SMS_PROVIDER", "noop")) {
	case "webhook":
		smsSender = sms.NewWebhookSender(
			config.String("SMS_WEBHOOK_URL", ""),
			config.String("SMS_WEBHOOK_TOKEN", ""),
		)
	default:
		smsSender = sms.NewNoopSender()
	}

	a := &app{
		pool:       pool,
		repo:       repo,
		outboxRepo: outboxRepo,
		emails:     emailSender,
		texts:      smsSender,
		logger:     logger,
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	for _, topic := range reservationTopics {
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, a.handleReservationEvent)
		go eventConsumer.Run(ctx)
	}

	reminderWorker := reminders.NewWorker(pool, repo, outboxRepo, emailSender, logger, reminders.Config{
		Interval:  config.DurationMinutes("REMINDER_INTERVAL_MINUTES", 5*time.Minute),
		Window:    config.DurationMinutes("REMINDER_WINDOW_MINUTES", 24*time.Hour),
		BatchSize: 50,
	})
	go reminderWorker.Run(ctx)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
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

package gateway

import (
	"context"
	"encoding/json"
	"time"

	"tour-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// BookingSummary is the notification payload for a durably confirmed booking.
type BookingSummary struct {
	BookingID   string  `json:"booking_id"`
	OrderID     string  `json:"order_id"`
	PackageID   string  `json:"package_id"`
	PackageType string  `json:"package_type"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Adults      int     `json:"adults"`
	Children    int     `json:"children"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

// Notifier dispatches booking confirmations. Failures must never roll back a
// booking; callers log and move on.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, summary *BookingSummary) error
	SendCartConfirmation(ctx context.Context, summaries []*BookingSummary) error
}

// amqpNotifier publishes confirmations to a durable RabbitMQ queue consumed
// by the notification worker. Dials per publish so a broken connection never
// lingers across requests.
type amqpNotifier struct {
	config utils.NotificationConfig
	log    *zap.Logger
}

func NewAMQPNotifier(config utils.NotificationConfig, log *zap.Logger) Notifier {
	return &amqpNotifier{
		config: config,
		log:    log.With(zap.String("gateway", "notifier")),
	}
}

func (n *amqpNotifier) SendBookingConfirmation(ctx context.Context, summary *BookingSummary) error {
	return n.publish(ctx, map[string]any{
		"type":     "booking.confirmed",
		"bookings": []*BookingSummary{summary},
	})
}

func (n *amqpNotifier) SendCartConfirmation(ctx context.Context, summaries []*BookingSummary) error {
	return n.publish(ctx, map[string]any{
		"type":     "cart.confirmed",
		"bookings": summaries,
	})
}

func (n *amqpNotifier) publish(ctx context.Context, payload any) error {
	conn, err := amqp.Dial(n.config.AMQPURL)
	if err != nil {
		n.log.Error("AMQP dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		n.log.Error("AMQP channel open failed", zap.Error(err))
		return err
	}
	defer ch.Close()

	// Durable queue so messages survive broker restarts. Declare is idempotent.
	if _, err := ch.QueueDeclare(n.config.Queue, true, false, false, false, nil); err != nil {
		n.log.Error("AMQP queue declare failed", zap.Error(err), zap.String("queue", n.config.Queue))
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",             // default exchange
		n.config.Queue, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		n.log.Error("AMQP publish failed", zap.Error(err), zap.String("queue", n.config.Queue))
		return err
	}

	return nil
}

// logNotifier is a stand-in used when no broker is configured.
type logNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log.With(zap.String("gateway", "notifier"))}
}

func (n *logNotifier) SendBookingConfirmation(_ context.Context, summary *BookingSummary) error {
	n.log.Info("Booking confirmation (log only)",
		zap.String("booking_id", summary.BookingID),
		zap.String("email", summary.Email),
	)
	return nil
}

func (n *logNotifier) SendCartConfirmation(_ context.Context, summaries []*BookingSummary) error {
	n.log.Info("Cart confirmation (log only)", zap.Int("bookings", len(summaries)))
	return nil
}

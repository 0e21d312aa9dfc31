package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const otpQueueName = "email.otp"

// Publisher sends OTP email events to RabbitMQ. Publishing is strictly
// best-effort: every failure is logged and returned, and callers in the
// request path ignore the error so an email-provider or broker outage
// never blocks registration or login.
type Publisher struct {
	URL string
	Log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

// PublishOTPEmail publishes an OTPEmailEvent to the email.otp queue.
// Messages are marked persistent so they survive broker restarts.
func (p *Publisher) PublishOTPEmail(ctx context.Context, event OTPEmailEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Declare is idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(otpQueueName, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Log.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", otpQueueName, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}

package queue

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Sender delivers a formatted mail. Implemented by service.Mailer; the
// indirection keeps SMTP out of the consumer's tests.
type Sender interface {
	Send(recipient, subject, body string) error
}

// Consumer drains the email.otp queue and hands each event to the Sender.
// It runs a reconnect loop with exponential backoff and never stops on
// processing errors; a message that cannot be handled is rejected without
// requeue so a poison message cannot wedge the queue.
type Consumer struct {
	URL    string
	Mailer Sender
	Log    *zap.Logger
}

func NewConsumer(url string, mailer Sender, log *zap.Logger) *Consumer {
	return &Consumer{URL: url, Mailer: mailer, Log: log}
}

// Run connects to RabbitMQ and consumes until the process exits. Intended
// to be launched in its own goroutine from main.
func (c *Consumer) Run() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("otp-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			c.Log.Warn("otp-consumer: consume loop ended", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(otpQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(otpQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.Log.Warn("otp-consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var ev OTPEmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	subject := "Your Daybook verification code"
	text := fmt.Sprintf(
		"Your verification code is %s.\r\n\r\nIt expires at %s. If you did not request this code, ignore this message.",
		ev.Code, ev.ExpiresAt)
	if err := c.Mailer.Send(ev.Recipient, subject, text); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	c.Log.Info("otp-consumer: mail delivered", zap.String("recipient", ev.Recipient))
	return nil
}

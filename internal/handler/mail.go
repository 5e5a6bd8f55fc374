package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// publishMail queues a message for the mail worker.
func (h *Handler) publishMail(ctx context.Context, msg domain.MailMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    msg.ID,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

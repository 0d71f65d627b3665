package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/labstock/labstock-backend/pkg/logger"
)

// Publisher handles publishing events to the broker's exchange
type Publisher struct {
	broker *Broker
	source string
	logger *logger.Logger
}

// NewPublisher creates a publisher stamping events with source
func NewPublisher(broker *Broker, source string, log *logger.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		source: source,
		logger: log,
	}
}

// Publish wraps data in an Event envelope and publishes it under stock.<eventType>.
// A publish on a closed channel triggers one reconnect and a single retry.
func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	correlationID := getCorrelationID(ctx)

	event, err := NewEvent(eventType, p.source, correlationID, data)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: correlationID,
		Timestamp:     event.Timestamp,
		Body:          body,
	}
	routingKey := RoutingKey(eventType)

	exchange := p.broker.Exchange()
	err = p.broker.Channel().PublishWithContext(ctx, exchange, routingKey, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		if rcErr := p.broker.Reconnect(ctx); rcErr != nil {
			return fmt.Errorf("failed to publish event: %w", rcErr)
		}
		err = p.broker.Channel().PublishWithContext(ctx, exchange, routingKey, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithCorrelationID(correlationID).Debug().
		Str("routing_key", routingKey).
		Str("event_id", event.ID).
		Msg("event published")

	return nil
}

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID adds a correlation ID to the context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// getCorrelationID retrieves the correlation ID from context
func getCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

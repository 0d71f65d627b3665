package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExchangeStockEvents is the default topic exchange for engine notifications
const ExchangeStockEvents = "stock.events"

// RoutingKeyPrefix namespaces every routing key published by the stock service
const RoutingKeyPrefix = "stock."

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// RoutingKey returns the topic routing key for an event type
func RoutingKey(eventType string) string {
	return RoutingKeyPrefix + eventType
}

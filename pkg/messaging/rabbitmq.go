package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/labstock/labstock-backend/pkg/config"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// ErrBrokerClosed is returned once Close has been called
var ErrBrokerClosed = errors.New("broker connection is closed")

// Broker owns the AMQP connection and the channel stock events go out on.
// The events exchange is declared on every (re)connect so a restarted
// broker gets it back.
type Broker struct {
	cfg     *config.RabbitMQConfig
	logger  *logger.Logger
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	reconnects int
	lastErr    error
}

// Dial connects to the broker and declares the events exchange
func Dial(cfg *config.RabbitMQConfig, log *logger.Logger) (*Broker, error) {
	b := &Broker{cfg: cfg, logger: log}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// Exchange is the topic exchange events are published to
func (b *Broker) Exchange() string {
	return b.cfg.Exchange
}

func (b *Broker) connect() error {
	conn, err := amqp.Dial(b.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	// topic, durable, not auto-deleted
	if err := ch.ExchangeDeclare(b.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", b.cfg.Exchange, err)
	}

	b.conn, b.channel = conn, ch
	b.logger.Info().Str("exchange", b.cfg.Exchange).Msg("connected to broker")
	return nil
}

// Channel returns the current channel
func (b *Broker) Channel() *amqp.Channel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.channel
}

// Reconnect replaces the connection, waiting ReconnectDelay between attempts
// and doubling it each time. It gives up after MaxRetries attempts or when
// ctx is done.
func (b *Broker) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	if b.conn != nil && !b.conn.IsClosed() {
		b.conn.Close()
	}

	delay := b.cfg.ReconnectDelay
	for attempt := 1; attempt <= b.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.logger.Info().Int("attempt", attempt).Msg("reconnecting to broker")
		err := b.connect()
		if err == nil {
			b.reconnects++
			b.lastErr = nil
			return nil
		}
		b.lastErr = err
		b.logger.Warn().Err(err).Int("attempt", attempt).Msg("reconnect attempt failed")

		if attempt == b.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("broker unreachable after %d attempts: %w", b.cfg.MaxRetries, b.lastErr)
}

// Health reports the connection state for the health endpoint
func (b *Broker) Health() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status := map[string]interface{}{
		"status":     "up",
		"exchange":   b.cfg.Exchange,
		"reconnects": b.reconnects,
	}
	if b.closed || b.conn == nil || b.conn.IsClosed() {
		status["status"] = "down"
	}
	if b.lastErr != nil {
		status["error"] = b.lastErr.Error()
	}
	return status
}

// Close shuts the channel and connection; later reconnects fail
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.channel != nil {
		if err := b.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			b.logger.Warn().Err(err).Msg("failed to close broker channel")
		}
	}
	if b.conn != nil && !b.conn.IsClosed() {
		if err := b.conn.Close(); err != nil {
			return fmt.Errorf("close broker connection: %w", err)
		}
	}

	b.logger.Info().Msg("broker connection closed")
	return nil
}

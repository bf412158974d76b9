// Package natsadapter fans blockage-change events across session servers.
// The events are ephemeral notifications, not a log: a server that was down
// re-pulls the authoritative set on reconnect anyway, so plain core NATS
// publish/subscribe is enough and no stream is configured.
package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/routelab/routeboard/internal/core/ports"
)

const subjectBlockagesChanged = "routeboard.blockages.changed"

// blockageEvent is the wire shape of one change notification.
type blockageEvent struct {
	Actor string    `json:"actor"`
	At    time.Time `json:"at"`
}

// Bus implements ports.EventPublisher and ports.EventSubscriber over one
// NATS connection.
type Bus struct {
	conn *nats.Conn
}

// NewBus connects to NATS with indefinite reconnects.
func NewBus(url string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Bus{conn: conn}, nil
}

func (b *Bus) PublishBlockagesChanged(ctx context.Context, actor string) error {
	data, err := json.Marshal(blockageEvent{Actor: actor, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.conn.Publish(subjectBlockagesChanged, data)
}

func (b *Bus) SubscribeBlockagesChanged(handler func(actor string)) (func(), error) {
	sub, err := b.conn.Subscribe(subjectBlockagesChanged, func(msg *nats.Msg) {
		var ev blockageEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("malformed blockage event", "error", err)
			return
		}
		handler(ev.Actor)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subjectBlockagesChanged, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Connected reports whether the underlying connection is up.
func (b *Bus) Connected() bool {
	return b.conn.IsConnected()
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	_ = b.conn.Drain()
}

var (
	_ ports.EventPublisher  = (*Bus)(nil)
	_ ports.EventSubscriber = (*Bus)(nil)
)

package bus

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/natsclient"
)

// Conn is the subset of *natsclient.Client used by NATS.
type Conn interface {
	PublishMsg(ctx context.Context, msg *nats.Msg) error
	SubscribeSync(subject string) (*natsclient.Subscription, error)
}

// NATS is a Bus over a NATS connection.
type NATS struct {
	conn   Conn
	logger *slog.Logger
}

// NewNATS creates a bus on conn.
func NewNATS(conn Conn, logger *slog.Logger) *NATS {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATS{conn: conn, logger: logger.With("component", "bus")}
}

// Subscribe opens a pull subscription on topic.
func (b *NATS) Subscribe(_ context.Context, topic string) (Receiver, error) {
	subject := Subject(topic)
	sub, err := b.conn.SubscribeSync(subject)
	if err != nil {
		return nil, errors.Wrap(err, "NATS", "Subscribe", fmt.Sprintf("subscribe to %s", topic))
	}
	b.logger.Debug("Subscribed", "topic", topic, "subject", subject)
	return &natsReceiver{sub: sub}, nil
}

// Publish sends msg on topic with its attachment in the Attachment header.
func (b *NATS) Publish(ctx context.Context, topic string, msg Message) error {
	out := nats.NewMsg(Subject(topic))
	out.Data = msg.Body
	out.Header.Set(message.HeaderID, message.NewID())
	if msg.Attachment != "" {
		out.Header.Set(message.HeaderAttachment, msg.Attachment)
	}
	if err := b.conn.PublishMsg(ctx, out); err != nil {
		return errors.Wrap(err, "NATS", "Publish", fmt.Sprintf("publish to %s", topic))
	}
	return nil
}

type natsReceiver struct {
	sub *natsclient.Subscription
}

func (r *natsReceiver) Next(ctx context.Context) (Message, error) {
	msg, err := r.sub.Next(ctx)
	if err != nil {
		if stderrors.Is(err, natsclient.ErrSubscriptionClosed) {
			return Message{}, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return Message{}, err
	}
	return Message{
		Body:       msg.Data,
		Attachment: msg.Header.Get(message.HeaderAttachment),
	}, nil
}

func (r *natsReceiver) Close() error {
	return r.sub.Unsubscribe()
}

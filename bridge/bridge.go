package bridge

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bus"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/metric"
)

// Bridge reacts to horn commands on a topic.
type Bridge struct {
	bus      bus.Bus
	topic    string
	actuator Actuator
	policy   MalformedPolicy
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTopic overrides bus.HornTopic.
func WithTopic(topic string) Option {
	return func(b *Bridge) {
		if topic != "" {
			b.topic = topic
		}
	}
}

// WithActuator sets the actuator. Without one the bridge only reports.
func WithActuator(a Actuator) Option {
	return func(b *Bridge) {
		b.actuator = a
	}
}

// WithMalformedPolicy sets how non-boolean command bodies are handled.
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(b *Bridge) {
		b.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records bridge metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// New creates a bridge on b.
func New(b bus.Bus, opts ...Option) *Bridge {
	br := &Bridge{
		bus:    b,
		topic:  bus.HornTopic,
		policy: Discard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(br)
	}
	br.logger = br.logger.With("component", "bridge", "topic", br.topic)
	return br
}

// Run subscribes to the topic and handles messages until ctx is cancelled,
// which returns nil, or the subscription fails, which returns the error.
func (b *Bridge) Run(ctx context.Context) error {
	recv, err := b.bus.Subscribe(ctx, b.topic)
	if err != nil {
		return errors.Wrap(err, "Bridge", "Run", "subscribe")
	}
	defer recv.Close()

	b.logger.Debug("Waiting for messages", "policy", b.policy.String())

	for {
		msg, err := recv.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
				return nil
			}
			return errors.Wrap(err, "Bridge", "Run", "receive message")
		}
		b.Handle(ctx, msg)
	}
}

// Handle processes a single message.
func (b *Bridge) Handle(ctx context.Context, msg bus.Message) {
	tag, err := ParseTag(msg.Attachment)
	if err != nil {
		b.metrics.RecordBridgeMessage("other")
		b.logger.Debug("Ignoring message", "attachment", msg.Attachment)
		return
	}
	b.metrics.RecordBridgeMessage(tag.String())
	if tag != TagTarget {
		return
	}

	on, ok := b.decode(msg.Body)
	if !ok {
		return
	}

	if on {
		b.logger.Info("activating horn signal")
	} else {
		b.logger.Info("deactivating horn signal")
	}

	if b.actuator != nil {
		if err := b.actuator.Set(ctx, on); err != nil {
			b.logger.Error("Failed to set horn actuator", "on", on, "error", err)
			return
		}
	}
	b.metrics.RecordHornState(on)

	b.publish(ctx, on)
}

func (b *Bridge) decode(body []byte) (bool, bool) {
	on, err := parseBool(body)
	if err == nil {
		return on, true
	}

	b.metrics.RecordBridgeParseError()

	if b.policy == CoerceFalse && utf8.Valid(body) {
		b.logger.Warn("Payload is not a boolean, treating as false", "body", string(body))
		return false, true
	}

	b.logger.Error("Payload is not a boolean", "error", err)
	return false, false
}

func (b *Bridge) publish(ctx context.Context, on bool) {
	err := b.bus.Publish(ctx, b.topic, bus.Message{
		Body:       []byte(strconv.FormatBool(on)),
		Attachment: TagCurrent.String(),
	})
	b.metrics.RecordBridgePublish(err)
	if err != nil {
		b.logger.Warn("Failed to publish current status", "error", err)
	}
}

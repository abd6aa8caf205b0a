// Package bus is the tagged publish/subscribe surface used by the horn bridge
// and service. A Message carries a body and an out-of-band attachment tag; on
// NATS the tag travels in the Attachment header.
package bus

import (
	"context"
	stderrors "errors"
	"strings"
)

// HornTopic is the shared topic for horn commands and state reports.
const HornTopic = "Vehicle/Body/Horn/IsActive"

// ErrClosed is returned by a Receiver whose subscription has ended.
var ErrClosed = stderrors.New("bus: receiver closed")

// Message is a payload with its attachment tag.
type Message struct {
	Body       []byte
	Attachment string
}

// Receiver yields messages of one subscription in arrival order.
type Receiver interface {
	// Next blocks until a message arrives. It returns ctx.Err() when ctx is
	// done and an error wrapping ErrClosed once the subscription has ended.
	Next(ctx context.Context) (Message, error)
	Close() error
}

// Bus publishes and subscribes to topics.
type Bus interface {
	Subscribe(ctx context.Context, topic string) (Receiver, error)
	Publish(ctx context.Context, topic string, msg Message) error
}

// Subject maps a slash separated topic onto a NATS subject.
func Subject(topic string) string {
	return strings.ReplaceAll(strings.Trim(topic, "/"), "/", ".")
}

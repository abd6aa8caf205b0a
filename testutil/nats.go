package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

// MockNATSClient is an in-memory NATS client for testing.
// Matches the natsclient.Client signatures for Publish, PublishMsg, Subscribe
// and Request. Thread-safe for concurrent use from multiple goroutines.
type MockNATSClient struct {
	mu            sync.RWMutex
	messages      map[string][]*nats.Msg
	subscriptions map[string][]func(context.Context, *nats.Msg)
	inboxes       map[string]chan *nats.Msg
	nextInbox     int
	publishErr    error
	closed        bool
}

// NewMockNATSClient creates a new mock NATS client.
func NewMockNATSClient() *MockNATSClient {
	return &MockNATSClient{
		messages:      make(map[string][]*nats.Msg),
		subscriptions: make(map[string][]func(context.Context, *nats.Msg)),
		inboxes:       make(map[string]chan *nats.Msg),
	}
}

// FailPublish makes every following publish return err. Nil restores success.
func (c *MockNATSClient) FailPublish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishErr = err
}

// Publish publishes raw data to a subject.
func (c *MockNATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	return c.PublishMsg(ctx, &nats.Msg{Subject: subject, Data: data})
}

// PublishMsg records msg and delivers it to subscribers, or to the request
// waiting on it when the subject is a reply inbox. Handlers run synchronously.
func (c *MockNATSClient) PublishMsg(ctx context.Context, msg *nats.Msg) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nats.ErrConnectionClosed
	}
	if c.publishErr != nil {
		err := c.publishErr
		c.mu.Unlock()
		return err
	}

	msg = copyMsg(msg)
	c.messages[msg.Subject] = append(c.messages[msg.Subject], msg)

	if inbox, ok := c.inboxes[msg.Subject]; ok {
		delete(c.inboxes, msg.Subject)
		c.mu.Unlock()
		inbox <- msg
		return nil
	}

	handlers := c.handlers(msg.Subject)
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, copyMsg(msg))
	}
	return nil
}

// Subscribe registers a handler for an exact subject.
func (c *MockNATSClient) Subscribe(ctx context.Context, subject string, handler func(context.Context, *nats.Msg)) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nats.ErrConnectionClosed
	}

	c.subscriptions[subject] = append(c.subscriptions[subject], handler)
	return nil
}

// Request delivers msg to the first subscriber on its subject and waits for
// the reply. Without subscribers it fails with nats.ErrNoResponders.
func (c *MockNATSClient) Request(ctx context.Context, msg *nats.Msg) (*nats.Msg, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, nats.ErrConnectionClosed
	}

	handlers := c.handlers(msg.Subject)
	if len(handlers) == 0 {
		c.mu.Unlock()
		return nil, nats.ErrNoResponders
	}

	c.nextInbox++
	inbox := fmt.Sprintf("_INBOX.mock.%d", c.nextInbox)
	replies := make(chan *nats.Msg, 1)
	c.inboxes[inbox] = replies

	msg = copyMsg(msg)
	msg.Reply = inbox
	c.messages[msg.Subject] = append(c.messages[msg.Subject], msg)
	c.mu.Unlock()

	go handlers[0](context.WithoutCancel(ctx), copyMsg(msg))

	select {
	case reply := <-replies:
		return reply, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.inboxes, inbox)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (c *MockNATSClient) handlers(subject string) []func(context.Context, *nats.Msg) {
	h := c.subscriptions[subject]
	if len(h) == 0 {
		return nil
	}
	handlers := make([]func(context.Context, *nats.Msg), len(h))
	copy(handlers, h)
	return handlers
}

// Messages returns all messages published or requested on a subject.
func (c *MockNATSClient) Messages(subject string) []*nats.Msg {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := c.messages[subject]
	if msgs == nil {
		return nil
	}
	result := make([]*nats.Msg, len(msgs))
	copy(result, msgs)
	return result
}

// MessageCount returns the number of messages on a subject.
func (c *MockNATSClient) MessageCount(subject string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages[subject])
}

// ClearAll clears all recorded messages.
func (c *MockNATSClient) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make(map[string][]*nats.Msg)
}

// Close closes the mock client.
func (c *MockNATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func copyMsg(msg *nats.Msg) *nats.Msg {
	out := &nats.Msg{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Header:  nats.Header{},
	}
	if msg.Data != nil {
		out.Data = append([]byte(nil), msg.Data...)
	}
	for k, v := range msg.Header {
		out.Header[k] = append([]string(nil), v...)
	}
	return out
}

// WaitForMessageCount waits for a specific number of messages (with timeout).
func WaitForMessageCount(t *testing.T, client *MockNATSClient, subject string, count int, timeout time.Duration) []*nats.Msg {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if msgs := client.Messages(subject); len(msgs) >= count {
			return msgs
		}
		select {
		case <-ctx.Done():
			got := client.MessageCount(subject)
			t.Fatalf("timeout waiting for %d messages on subject %s (got %d)", count, subject, got)
			return nil
		case <-ticker.C:
		}
	}
}

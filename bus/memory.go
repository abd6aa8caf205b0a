package bus

import (
	"context"
	"sync"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// Memory is an in-process Bus. Every receiver on a topic gets every message
// published after it subscribed, including the publisher's own.
type Memory struct {
	mu        sync.Mutex
	receivers map[string][]*memoryReceiver
	published map[string][]Message
	buffer    int
	closed    bool
}

// NewMemory creates an in-process bus. buffer sizes each receiver's initial
// queue; queues grow as needed, so Publish never waits for a consumer.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 64
	}
	return &Memory{
		receivers: make(map[string][]*memoryReceiver),
		published: make(map[string][]Message),
		buffer:    buffer,
	}
}

// Subscribe registers a receiver on topic.
func (m *Memory) Subscribe(_ context.Context, topic string) (Receiver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.WrapFatal(ErrClosed, "Memory", "Subscribe", "subscribe to "+topic)
	}

	r := &memoryReceiver{
		bus:    m,
		topic:  topic,
		queue:  make([]Message, 0, m.buffer),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	m.receivers[topic] = append(m.receivers[topic], r)
	return r, nil
}

// Publish queues msg for every receiver on topic. A receiver may publish from
// the goroutine that drains it.
func (m *Memory) Publish(ctx context.Context, topic string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.WrapTransient(ErrClosed, "Memory", "Publish", "publish to "+topic)
	}
	msg.Body = append([]byte(nil), msg.Body...)
	m.published[topic] = append(m.published[topic], msg)
	for _, r := range m.receivers[topic] {
		r.push(msg)
	}
	m.mu.Unlock()
	return nil
}

// Published returns everything published on topic so far.
func (m *Memory) Published(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.published[topic]...)
}

// Close ends every subscription.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, rs := range m.receivers {
		for _, r := range rs {
			r.closeOnce.Do(func() { close(r.done) })
		}
	}
	m.receivers = make(map[string][]*memoryReceiver)
	return nil
}

type memoryReceiver struct {
	bus       *Memory
	topic     string
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	queue  []Message
	notify chan struct{}
}

func (r *memoryReceiver) push(msg Message) {
	select {
	case <-r.done:
		return
	default:
	}

	r.mu.Lock()
	r.queue = append(r.queue, msg)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *memoryReceiver) pop() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return Message{}, false
	}
	msg := r.queue[0]
	r.queue[0] = Message{}
	r.queue = r.queue[1:]
	return msg, true
}

func (r *memoryReceiver) Next(ctx context.Context) (Message, error) {
	for {
		// Queued messages drain before closure is reported.
		if msg, ok := r.pop(); ok {
			return msg, nil
		}

		select {
		case <-r.notify:
		case <-r.done:
			if msg, ok := r.pop(); ok {
				return msg, nil
			}
			return Message{}, errors.WrapFatal(ErrClosed, "Receiver", "Next", "receive message")
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

func (r *memoryReceiver) Close() error {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()

	rs := r.bus.receivers[r.topic]
	for i, other := range rs {
		if other == r {
			r.bus.receivers[r.topic] = append(rs[:i:i], rs[i+1:]...)
			break
		}
	}
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

// Package bus provides the in-process publish/subscribe fabric nodes use to
// talk to each other. Every topic carries exactly one message variant and a
// publish only returns after every handler for the topic has observed the
// message, in the order the handlers were registered.
package bus

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Set of errors returned by Publish.
var (
	ErrTopicMismatch = errors.New("message does not belong to the topic")
	ErrInvalidMsg    = errors.New("invalid message")
	ErrShutdown      = errors.New("bus is shut down")
)

// EventHandler defines a function that is called when events
// occur on the bus.
type EventHandler func(v string, args ...any)

// Handler processes a message published on a topic.
type Handler func(msg Message)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a set of topics with their registered handlers.
type Bus struct {
	evHandler EventHandler

	mu       sync.RWMutex
	topics   map[Topic][]subscription
	nextID   uint64
	shutdown bool
}

// New constructs a bus. The event handler is optional.
func New(evHandler EventHandler) *Bus {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Bus{
		evHandler: ev,
		topics:    make(map[Topic][]subscription),
	}
}

// Subscribe registers the handler for the topic. The returned function
// removes the registration and is safe to call more than once.
func (b *Bus) Subscribe(topic Topic, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.topics[topic]
		for i, sub := range subs {
			if sub.id == id {
				b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish validates the message and hands it to every handler registered for
// the topic, one after the other. A handler that panics is reported and the
// remaining handlers still run.
func (b *Bus) Publish(topic Topic, msg Message) error {
	if msg == nil || msg.Topic() != topic {
		return fmt.Errorf("%w: topic[%s]: msg[%T]", ErrTopicMismatch, topic, msg)
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: topic[%s]: %w", ErrInvalidMsg, topic, err)
	}

	// Take a snapshot so handlers can subscribe or publish without
	// holding the lock.
	b.mu.RLock()
	if b.shutdown {
		b.mu.RUnlock()
		return ErrShutdown
	}
	subs := make([]subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(topic, sub, msg)
	}

	return nil
}

// Subscribers returns the number of handlers registered for the topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}

// Shutdown removes every subscription. Later publishes fail with
// ErrShutdown.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shutdown = true
	b.topics = make(map[Topic][]subscription)
}

// =============================================================================

func (b *Bus) deliver(topic Topic, sub subscription, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.evHandler("bus: deliver: topic[%s]: handler[%d]: PANIC: %v\n%s", topic, sub.id, r, debug.Stack())
		}
	}()

	sub.handler(msg)
}

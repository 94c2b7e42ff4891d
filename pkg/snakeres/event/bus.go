package event

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

// Bus provides pub/sub event distribution with fan-out support.
type Bus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, evt Event) error

	// Subscribe creates a subscription for specific event types.
	Subscribe(types []string, handler Handler) Subscription

	// SubscribeAll subscribes to all events.
	SubscribeAll(handler Handler) Subscription

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe removes the subscription. Safe to call more than once.
	Unsubscribe()

	// Pause temporarily stops delivery. Events published while paused are dropped.
	Pause()

	// Resume continues delivery after pause.
	Resume()

	// IsPaused returns true if the subscription is paused.
	IsPaused() bool
}

// BusConfig configures bus behavior.
type BusConfig struct {
	// BufferSize is the channel buffer size per subscription.
	// Default: 256
	BufferSize int

	// NonBlocking makes Publish drop events for full subscribers instead of waiting.
	NonBlocking bool

	// OnDrop is called when an event is dropped (non-blocking mode).
	OnDrop func(evt Event, subscriberID string)

	// OnError is called when a handler returns an error.
	OnError func(evt Event, subscriberID string, err error)
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	BufferSize: 256,
}

// LocalBus is an in-memory event bus.
type LocalBus struct {
	config BusConfig

	mu            sync.RWMutex
	subscriptions map[string]*subscription
	byType        map[string]map[string]*subscription // event type -> subscription ID -> subscription
	wildcards     map[string]*subscription

	nextID  atomic.Int64
	closed  atomic.Bool
	closeCh chan struct{}
}

var _ Bus = (*LocalBus)(nil)

// NewBus creates a new local event bus.
func NewBus(config BusConfig) *LocalBus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBusConfig.BufferSize
	}

	return &LocalBus{
		config:        config,
		subscriptions: make(map[string]*subscription),
		byType:        make(map[string]map[string]*subscription),
		wildcards:     make(map[string]*subscription),
		closeCh:       make(chan struct{}),
	}
}

type subscription struct {
	id       string
	types    []string // empty = all types
	handler  Handler
	events   chan Event
	paused   atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
	bus      *LocalBus
}

// Publish sends an event to all matching subscribers.
func (b *LocalBus) Publish(ctx context.Context, evt Event) error {
	if b.closed.Load() {
		return &EventError{Event: evt, Message: "publish", Err: ErrBusClosed}
	}

	b.mu.RLock()
	subs := b.matching(evt.Type())
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.paused.Load() {
			continue
		}

		if b.config.NonBlocking {
			select {
			case sub.events <- evt:
			default:
				if b.config.OnDrop != nil {
					b.config.OnDrop(evt, sub.id)
				}
			}
			continue
		}

		select {
		case sub.events <- evt:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closeCh:
			return &EventError{Event: evt, Message: "publish", Err: ErrBusClosed}
		}
	}

	return nil
}

// Subscribe creates a subscription for specific event types.
// Returns nil if the bus is closed.
func (b *LocalBus) Subscribe(types []string, handler Handler) Subscription {
	if sub := b.subscribe(types, handler); sub != nil {
		return sub
	}
	return nil
}

// SubscribeAll subscribes to all events.
// Returns nil if the bus is closed.
func (b *LocalBus) SubscribeAll(handler Handler) Subscription {
	return b.Subscribe(nil, handler)
}

func (b *LocalBus) subscribe(types []string, handler Handler) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed.Load() {
		return nil
	}

	sub := &subscription{
		id:      strconv.FormatInt(b.nextID.Add(1), 10),
		types:   types,
		handler: handler,
		events:  make(chan Event, b.config.BufferSize),
		done:    make(chan struct{}),
		bus:     b,
	}

	b.subscriptions[sub.id] = sub
	if len(types) == 0 {
		b.wildcards[sub.id] = sub
	} else {
		for _, t := range types {
			if b.byType[t] == nil {
				b.byType[t] = make(map[string]*subscription)
			}
			b.byType[t][sub.id] = sub
		}
	}

	go sub.process()
	return sub
}

// matching returns all subscriptions for an event type. Caller holds b.mu.
func (b *LocalBus) matching(eventType string) []*subscription {
	subs := make([]*subscription, 0, len(b.byType[eventType])+len(b.wildcards))
	for _, sub := range b.byType[eventType] {
		subs = append(subs, sub)
	}
	for _, sub := range b.wildcards {
		subs = append(subs, sub)
	}
	return subs
}

// Close shuts down the bus. Safe to call more than once.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(b.closeCh)

	for _, sub := range b.subscriptions {
		sub.stop()
	}
	return nil
}

// process delivers queued events to the handler.
func (s *subscription) process() {
	for {
		select {
		case evt := <-s.events:
			if s.paused.Load() {
				continue
			}
			if err := s.handler.Handle(context.Background(), evt); err != nil && s.bus.config.OnError != nil {
				s.bus.config.OnError(evt, s.id, err)
			}
		case <-s.done:
			return
		}
	}
}

func (s *subscription) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Unsubscribe removes the subscription.
func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subscriptions, s.id)
	delete(s.bus.wildcards, s.id)
	for _, t := range s.types {
		if typeSubs, ok := s.bus.byType[t]; ok {
			delete(typeSubs, s.id)
		}
	}

	s.stop()
}

// Pause temporarily stops delivery.
func (s *subscription) Pause() {
	s.paused.Store(true)
}

// Resume continues delivery after pause.
func (s *subscription) Resume() {
	s.paused.Store(false)
}

// IsPaused returns true if the subscription is paused.
func (s *subscription) IsPaused() bool {
	return s.paused.Load()
}

// Package event publishes resource lifecycle events (registration,
// rejection, failed resolution, teardown) over an in-process pub/sub bus.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the asset registry.
const (
	TypeRegistered = "resource.registered"
	TypeRejected   = "resource.rejected"
	TypeMissing    = "resource.missing"
	TypeClosed     = "registry.closed"
)

// Event is a resource lifecycle notification.
// Events are immutable once created.
type Event interface {
	ID() string     // Unique event identifier
	Type() string   // Event type (e.g., "resource.registered")
	Source() string // Publishing registry instance

	Category() string // Resource category ("texture", "mesh", ...)
	Tag() string      // Resource tag, empty for registry-wide events

	Timestamp() time.Time

	Data() any         // Payload
	DataBytes() []byte // Serialized payload
}

// Metadata contains common event metadata fields.
type Metadata struct {
	EventID     string    `json:"id"`
	EventType   string    `json:"type"`
	EventSource string    `json:"source"`
	Category    string    `json:"category,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BaseEvent is the generic Event implementation.
type BaseEvent[T any] struct {
	Meta    Metadata `json:"metadata"`
	Payload T        `json:"payload"`

	cachedBytes []byte
}

func (e *BaseEvent[T]) ID() string           { return e.Meta.EventID }
func (e *BaseEvent[T]) Type() string         { return e.Meta.EventType }
func (e *BaseEvent[T]) Source() string       { return e.Meta.EventSource }
func (e *BaseEvent[T]) Category() string     { return e.Meta.Category }
func (e *BaseEvent[T]) Tag() string          { return e.Meta.Tag }
func (e *BaseEvent[T]) Timestamp() time.Time { return e.Meta.Timestamp }
func (e *BaseEvent[T]) Data() any            { return e.Payload }

// TypedData returns the strongly-typed payload.
func (e *BaseEvent[T]) TypedData() T {
	return e.Payload
}

// DataBytes returns the JSON-encoded payload.
// The result is cached.
func (e *BaseEvent[T]) DataBytes() []byte {
	if e.cachedBytes == nil {
		e.cachedBytes, _ = json.Marshal(e.Payload)
	}
	return e.cachedBytes
}

// Registered is the payload of TypeRegistered.
type Registered struct {
	DurationMs float64 `json:"duration_ms"`
	Adopted    bool    `json:"adopted"`
}

// Rejected is the payload of TypeRejected.
type Rejected struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Missing is the payload of TypeMissing.
type Missing struct {
	Referrer string `json:"referrer,omitempty"`
}

// Closed is the payload of TypeClosed.
type Closed struct {
	Released int `json:"released"`
	Failed   int `json:"failed"`
}

// Option configures event creation.
type Option func(*eventConfig)

type eventConfig struct {
	id        string
	timestamp time.Time
}

// WithEventID sets a specific event ID (default: random UUID).
func WithEventID(id string) Option {
	return func(cfg *eventConfig) {
		cfg.id = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) Option {
	return func(cfg *eventConfig) {
		cfg.timestamp = t
	}
}

// New creates an event.
func New[T any](eventType, source, category, tag string, payload T, opts ...Option) *BaseEvent[T] {
	cfg := &eventConfig{
		id:        uuid.New().String(),
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &BaseEvent[T]{
		Meta: Metadata{
			EventID:     cfg.id,
			EventType:   eventType,
			EventSource: source,
			Category:    category,
			Tag:         tag,
			Timestamp:   cfg.timestamp,
		},
		Payload: payload,
	}
}

// Handler processes delivered events.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

package snakeres

import (
	"context"
	"fmt"
	"sort"
	"sync"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/event"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
)

// MaxLayers is the number of render layers a registry can hold.
const MaxLayers = 16

// RenderLayers maps layer names to draw-order ids 0..MaxLayers-1,
// assigned in registration order.
type RenderLayers struct {
	mu   sync.RWMutex
	ids  map[string]uint8
	byID []string
}

func newRenderLayers() *RenderLayers {
	return &RenderLayers{ids: make(map[string]uint8)}
}

func (l *RenderLayers) add(name string) (uint8, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[name]; ok {
		return 0, &reserrors.DuplicateTagError{Category: string(CategoryLayer), Tag: name}
	}
	if len(l.byID) >= MaxLayers {
		return 0, &reserrors.InvalidArgumentError{
			Category: string(CategoryLayer),
			Tag:      name,
			Message:  fmt.Sprintf("at most %d render layers can be registered", MaxLayers),
		}
	}

	id := uint8(len(l.byID))
	l.ids[name] = id
	l.byID = append(l.byID, name)
	return id, nil
}

// ID returns the id of a named layer.
func (l *RenderLayers) ID(name string) (uint8, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.ids[name]
	return id, ok
}

// Name returns the layer registered with id.
func (l *RenderLayers) Name(id uint8) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if int(id) >= len(l.byID) {
		return "", false
	}
	return l.byID[id], true
}

// Len returns the number of registered layers.
func (l *RenderLayers) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

// Names returns the layer names sorted alphabetically.
func (l *RenderLayers) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := append([]string(nil), l.byID...)
	sort.Strings(names)
	return names
}

// Ordered returns the layer names in id order.
func (l *RenderLayers) Ordered() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.byID...)
}

func (l *RenderLayers) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = make(map[string]uint8)
	l.byID = nil
}

// RegisterRenderLayer assigns the next free layer id to name.
func (a *Assets) RegisterRenderLayer(name string) (uint8, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return 0, ErrClosed
	}
	if a.sealed.Load() {
		return 0, ErrSealed
	}

	category := string(CategoryLayer)
	ctx := context.Background()

	var (
		id  uint8
		err error
	)
	if name == "" {
		err = &reserrors.InvalidArgumentError{Category: category, Tag: name, Field: "name", Message: "must not be empty"}
	} else {
		id, err = a.layers.add(name)
	}
	a.cfg.metrics.RecordRegistration(ctx, category, 0, err)

	if err != nil {
		a.rejected(ctx, category, name, err)
		return 0, err
	}

	observability.LogRegistered(a.cfg.logger, category, name, 0)
	a.publish(ctx, event.New(event.TypeRegistered, a.id, category, name, event.Registered{}))
	return id, nil
}

// LayerID returns the id of a registered layer.
func (a *Assets) LayerID(name string) (uint8, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, ErrClosed
	}
	id, ok := a.layers.ID(name)
	if !ok {
		return 0, &reserrors.MissingResourceError{Category: string(CategoryLayer), Tag: name}
	}
	return id, nil
}

// LayerName returns the name of the layer with id.
func (a *Assets) LayerName(id uint8) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return "", ErrClosed
	}
	name, ok := a.layers.Name(id)
	if !ok {
		return "", &reserrors.MissingResourceError{Category: string(CategoryLayer), Tag: fmt.Sprintf("#%d", id)}
	}
	return name, nil
}

// Layers returns the registered layer names in id order.
func (a *Assets) Layers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil
	}
	return a.layers.Ordered()
}

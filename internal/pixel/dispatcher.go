package pixel

import (
	"slices"
	"sync"
)

// Events dispatched to host page listeners.
const (
	EventReady    = "proofpop:ready"
	EventDisplay  = "proofpop:display"
	EventClick    = "proofpop:click"
	EventVerified = "proofpop:verified"
	EventLoaded   = "proofpop:loaded"
)

type Event struct {
	Name   string
	Detail map[string]any
}

// Dispatcher delivers pixel events to host listeners. Listeners run
// synchronously with no pixel lock held and may call back into the pixel,
// but must not block.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]func(Event)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]func(Event))}
}

func (d *Dispatcher) On(name string, fn func(Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], fn)
}

func (d *Dispatcher) Emit(name string, detail map[string]any) {
	d.mu.RLock()
	listeners := slices.Clone(d.listeners[name])
	d.mu.RUnlock()

	ev := Event{Name: name, Detail: detail}
	for _, fn := range listeners {
		fn(ev)
	}
}

package events

import "sync"

// Handler consumes a domain event
type Handler func(DomainEvent)

// Dispatcher fans events out to subscribers in subscription order. Handlers run
// synchronously on the publishing goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	order    []int
	next     int
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it
func (d *Dispatcher) Subscribe(h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.next
	d.next++
	d.handlers[id] = h
	d.order = append(d.order, id)

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers events to every subscriber
func (d *Dispatcher) Publish(evts ...DomainEvent) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.order))
	for _, id := range d.order {
		handlers = append(handlers, d.handlers[id])
	}
	d.mu.RUnlock()

	for _, evt := range evts {
		for _, h := range handlers {
			h(evt)
		}
	}
}

// Package event provides a simple synchronous/async event dispatcher.
//
// The catalog fires product.added, product.deleted and catalog.cleared; the
// live feed and metrics listen.
package event

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	pending  sync.WaitGroup
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
// A panicking listener is logged and does not stop the others.
func Fire(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		call(event, h, payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. Wait blocks until those listeners finish.
func FireAsync(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		pending.Add(1)
		go func(h Handler) {
			defer pending.Done()
			call(event, h, payload)
		}(h)
	}
}

// Wait blocks until every listener started by FireAsync has returned.
func Wait() { pending.Wait() }

func call(event string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event: listener panicked", "event", event, "panic", fmt.Sprintf("%v", r))
		}
	}()
	h(payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}

package service

import (
	"sync"

	"canvasboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Emitters
// ─────────────────────────────────────────────────────────────

// Fanout forwards every event to each of its emitters in order.
type Fanout []domain.EventEmitter

func (f Fanout) Emit(event string, data any) {
	for _, e := range f {
		if e != nil {
			e.Emit(event, data)
		}
	}
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

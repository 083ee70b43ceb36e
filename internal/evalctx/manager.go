// Package evalctx is Cantus's thread manager: it tracks the workers
// backing asynchronous top-level evaluations and lets a caller abort
// some or all of them.
package evalctx

import (
	"context"
	"sync"

	"github.com/cantus-lang/cantus/internal/object"
	"github.com/google/uuid"
)

// Runner performs one top-level evaluation. It should check ctx at its
// own suspension points (between statement-engine lines, on feeder
// wait, on I/O) and return promptly once ctx is done; Manager does not
// force a Runner to stop, it only cancels the context.
type Runner func(ctx context.Context) (object.Value, error)

// EventSink receives worker lifecycle notifications. A larger
// host-facing event interface (pkg/cantus's EventSink) satisfies
// this by construction, since it declares the same two methods among
// others.
type EventSink interface {
	ThreadStarted(id string)
	EvalComplete(id string, result object.Value, err error)
}

type noopSink struct{}

func (noopSink) ThreadStarted(string)                     {}
func (noopSink) EvalComplete(string, object.Value, error) {}

type worker struct {
	id     string
	cancel context.CancelFunc
}

// Manager is the registry of active workers, guarded by a RWMutex: the
// registry itself, unlike the three evaluator dictionaries shared
// across scopes, is Manager's own to protect.
type Manager struct {
	mu      sync.RWMutex
	workers map[string]*worker
	sink    EventSink
}

// NewManager returns a Manager posting lifecycle events to sink. A nil
// sink is replaced with a no-op one.
func NewManager(sink EventSink) *Manager {
	if sink == nil {
		sink = noopSink{}
	}
	return &Manager{workers: map[string]*worker{}, sink: sink}
}

// EvalAsync starts run on a new worker goroutine derived from parent,
// registers it under a fresh uuid, and posts ThreadStarted immediately
// and EvalComplete once run returns (success, failure, or cancellation
// all go through EvalComplete — the caller's Runner is what turns a
// cancelled ctx into whatever error value it wants to report). The
// worker deregisters itself before the completion event fires.
func (m *Manager) EvalAsync(parent context.Context, run Runner) string {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	m.mu.Lock()
	m.workers[id] = &worker{id: id, cancel: cancel}
	m.mu.Unlock()

	m.sink.ThreadStarted(id)

	go func() {
		result, err := run(ctx)
		m.deregister(id)
		m.sink.EvalComplete(id, result, err)
	}()

	return id
}

func (m *Manager) deregister(id string) {
	m.mu.Lock()
	delete(m.workers, id)
	m.mu.Unlock()
}

// StopAll cancels every registered worker's context except spareID (pass
// "" to spare none) — the "merciful" form of stop_all that lets one
// worker keep running. A stopped worker removes itself from the
// registry when its Runner actually returns; StopAll does not wait for
// that to happen.
func (m *Manager) StopAll(spareID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, w := range m.workers {
		if id == spareID {
			continue
		}
		w.cancel()
	}
}

// Stop cancels one worker by ID. Reports whether id was registered.
func (m *Manager) Stop(id string) bool {
	m.mu.RLock()
	w, ok := m.workers[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	w.cancel()
	return true
}

// Active returns the IDs of currently running workers.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.workers))
	for id := range m.workers {
		ids = append(ids, id)
	}
	return ids
}

// Count reports how many workers are currently registered.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers)
}

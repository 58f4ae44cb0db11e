// Package lifecycle dispatches the framework's lifecycle callbacks to
// subscribed handlers and guarantees the framework's continuation fires
// exactly once per trigger.
//
// Handlers run synchronously, in subscription order. A handler that wants
// to finish asynchronously calls assume() before returning and invokes the
// continuation later; the dispatcher then skips its automatic completion.
// Calling the continuation directly counts as adoption, so synchronous
// handlers need not call assume() first.
package lifecycle

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/artpar/modelkit/core/descriptor"
)

// Handler processes an instance at one lifecycle. next resumes the
// framework; assume declares that this handler will invoke next itself,
// possibly after asynchronous work.
type Handler func(instance map[string]any, next descriptor.Continuation, assume func())

// Subscription identifies one registered handler so it can be removed.
// Handlers are functions and not comparable, so removal is by handle.
type Subscription struct {
	lifecycle descriptor.Lifecycle
	id        uint64
}

// Lifecycle returns the lifecycle this subscription is attached to.
func (s Subscription) Lifecycle() descriptor.Lifecycle { return s.lifecycle }

type registration struct {
	id uint64
	fn Handler
}

// Dispatcher maintains per-lifecycle handler lists and installs the
// callbacks the framework invokes onto descriptors.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[descriptor.Lifecycle][]registration
	nextID   uint64
	logger   zerolog.Logger
	metrics  *Collector
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics attaches a prometheus collector to the dispatcher.
func WithMetrics(c *Collector) Option {
	return func(d *Dispatcher) {
		d.metrics = c
	}
}

// New creates a dispatcher with no subscriptions.
func New(logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[descriptor.Lifecycle][]registration),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers a handler for a lifecycle. Handlers for the same
// lifecycle are invoked in subscription order on every trigger.
func (d *Dispatcher) Subscribe(lc descriptor.Lifecycle, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.handlers[lc] = append(d.handlers[lc], registration{id: d.nextID, fn: h})

	return Subscription{lifecycle: lc, id: d.nextID}
}

// Unsubscribe removes a previously registered handler. A removed handler
// is no longer invoked on subsequent triggers; the remaining handlers keep
// their relative order. Unknown subscriptions are ignored.
func (d *Dispatcher) Unsubscribe(s Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	regs := d.handlers[s.lifecycle]
	for i, reg := range regs {
		if reg.id == s.id {
			d.handlers[s.lifecycle] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// HasSubscribers reports whether any handler is registered for a lifecycle.
func (d *Dispatcher) HasSubscribers(lc descriptor.Lifecycle) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[lc]) > 0
}

// Install writes one callback per lifecycle onto the descriptor. The
// framework is the sole caller of these callbacks; each one routes back
// into Trigger.
func (d *Dispatcher) Install(desc *descriptor.Descriptor) {
	for _, lc := range descriptor.Lifecycles() {
		d.InstallCallback(desc, lc)
	}
}

// InstallCallback writes the callback for a single lifecycle onto the
// descriptor.
func (d *Dispatcher) InstallCallback(desc *descriptor.Descriptor, lc descriptor.Lifecycle) {
	desc.EnsureMaps()
	desc.Callbacks[lc] = d.callback(lc)
}

func (d *Dispatcher) callback(lc descriptor.Lifecycle) descriptor.Callback {
	return func(instance map[string]any, next descriptor.Continuation) {
		d.Trigger(lc, instance, next)
	}
}

// Trigger fires one lifecycle for an instance. The framework reaches this
// through the installed callbacks; tests call it directly.
//
// The continuation is invoked exactly once per trigger: immediately when
// no handlers are subscribed, after the synchronous handler pass when no
// handler adopted, or whenever an adopting handler completes. A second
// invocation is dropped and logged as misuse.
func (d *Dispatcher) Trigger(lc descriptor.Lifecycle, instance map[string]any, next descriptor.Continuation) {
	d.mu.RLock()
	regs := make([]registration, len(d.handlers[lc]))
	copy(regs, d.handlers[lc])
	d.mu.RUnlock()

	if d.metrics != nil {
		d.metrics.Triggers.WithLabelValues(string(lc)).Inc()
	}

	d.logger.Debug().
		Str("lifecycle", string(lc)).
		Int("handlers", len(regs)).
		Msg("lifecycle triggered")

	// Fast path: nothing subscribed, unblock the framework immediately.
	if len(regs) == 0 {
		if d.metrics != nil {
			d.metrics.Completions.WithLabelValues(string(lc)).Inc()
		}
		next(nil)
		return
	}

	var adopted atomic.Bool
	var once sync.Once

	complete := func(err error) {
		fired := false
		once.Do(func() {
			fired = true
			next(err)
		})
		if fired {
			if d.metrics != nil {
				d.metrics.Completions.WithLabelValues(string(lc)).Inc()
			}
			return
		}

		// Two handlers each adopted and each completed. The framework must
		// not see its continuation twice, so the extra call is dropped.
		d.logger.Warn().
			Str("lifecycle", string(lc)).
			Msg("continuation invoked more than once, dropping extra call")
		if d.metrics != nil {
			d.metrics.DuplicateCompletions.WithLabelValues(string(lc)).Inc()
		}
	}

	assume := func() {
		adopted.Store(true)
	}

	// Invoking the continuation counts as adoption even without a prior
	// assume(), so a synchronous handler can just call next.
	wrapped := descriptor.Continuation(func(err error) {
		adopted.Store(true)
		complete(err)
	})

	for _, reg := range regs {
		reg.fn(instance, wrapped, assume)
	}

	if adopted.Load() {
		if d.metrics != nil {
			d.metrics.Adoptions.WithLabelValues(string(lc)).Inc()
		}
		return
	}

	if d.metrics != nil {
		d.metrics.AutoCompletions.WithLabelValues(string(lc)).Inc()
	}
	complete(nil)
}

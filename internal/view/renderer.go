package view

import (
	"sync"

	"github.com/godaily/godaily/internal/application/tasks"
)

// Sink receives every frame the renderer produces.
type Sink interface {
	Render(Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Frame)

func (f SinkFunc) Render(frame Frame) { f(frame) }

// Source is the part of tasks.Store a renderer observes.
type Source interface {
	Subscribe(fn func(tasks.Snapshot)) (cancel func())
	Snapshot() tasks.Snapshot
}

// Renderer turns store notifications into frames. It never mutates the store.
type Renderer struct {
	sink Sink

	mu     sync.Mutex
	opts   Options
	last   tasks.Snapshot
	cancel func()
}

// NewRenderer creates a renderer that pushes frames to sink.
func NewRenderer(sink Sink, opts Options) *Renderer {
	return &Renderer{sink: sink, opts: opts}
}

// Attach subscribes to src and renders its current state immediately.
// Attaching again detaches from the previous source.
func (r *Renderer) Attach(src Source) {
	cancel := src.Subscribe(r.update)

	r.mu.Lock()
	prev := r.cancel
	r.cancel = cancel
	r.mu.Unlock()

	if prev != nil {
		prev()
	}
	r.update(src.Snapshot())
}

// Detach stops listening to the store.
func (r *Renderer) Detach() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SetOptions changes the filter, search or location and re-renders the last snapshot.
func (r *Renderer) SetOptions(opts Options) {
	r.mu.Lock()
	r.opts = opts
	snap := r.last
	r.mu.Unlock()

	r.sink.Render(Build(snap, opts))
}

func (r *Renderer) update(snap tasks.Snapshot) {
	r.mu.Lock()
	r.last = snap
	opts := r.opts
	r.mu.Unlock()

	r.sink.Render(Build(snap, opts))
}

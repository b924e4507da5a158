package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ErrStale reports a render that was superseded by a newer one.
var ErrStale = errors.New("render superseded by a newer request")

// Renderer serialises interactive renders by generation. Starting a render
// cancels the previous one; only the newest generation's result is ever
// returned or kept as Latest.
type Renderer struct {
	render func(context.Context, image.Image, Request) (*Result, error)
	gen    atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	latest *Result
}

// NewRenderer wraps p.
func NewRenderer(p *Pipeline) *Renderer {
	return &Renderer{render: p.Render}
}

// Render starts a new generation and renders req. It returns ErrStale when
// a newer Render call started before this one finished.
func (r *Renderer) Render(ctx context.Context, src image.Image, req Request) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	gen := r.gen.Add(1)
	r.mu.Unlock()

	res, err := r.render(ctx, src, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen.Load() != gen {
		log.Debug().Uint64("generation", gen).Msg("dropping stale render")
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	res.Generation = gen
	r.latest = res
	return res, nil
}

// Generation returns the id of the most recently started render.
func (r *Renderer) Generation() uint64 {
	return r.gen.Load()
}

// Latest returns the newest completed render, or nil.
func (r *Renderer) Latest() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Reset cancels any render in flight and forgets the latest result. Used
// when the source photo changes.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen.Add(1)
	r.latest = nil
}

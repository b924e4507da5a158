package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestRenderer_Generations(t *testing.T) {
	r := NewRenderer(New(nil))
	src := checker(40, 30)

	for want := uint64(1); want <= 3; want++ {
		res, err := r.Render(context.Background(), src, DefaultRequest(40, 30))
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if res.Generation != want {
			t.Errorf("Generation = %d, want %d", res.Generation, want)
		}
		if r.Latest() != res {
			t.Error("Latest() should return the newest result")
		}
	}
	if r.Generation() != 3 {
		t.Errorf("Generation() = %d, want 3", r.Generation())
	}
}

// blockingRenderer makes the first render wait until released; later
// renders finish immediately.
func blockingRenderer(honourCancel bool) (r *Renderer, started, release chan struct{}) {
	r = NewRenderer(New(nil))
	started = make(chan struct{})
	release = make(chan struct{})
	calls := make(chan struct{}, 1)
	calls <- struct{}{}

	r.render = func(ctx context.Context, _ image.Image, _ Request) (*Result, error) {
		select {
		case <-calls:
			close(started)
			if honourCancel {
				<-ctx.Done()
			}
			<-release
			if honourCancel {
				return nil, ctx.Err()
			}
		default:
		}
		return &Result{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1))}, nil
	}
	return r, started, release
}

func TestRenderer_StaleRenderIsDropped(t *testing.T) {
	for _, honourCancel := range []bool{true, false} {
		r, started, release := blockingRenderer(honourCancel)
		src := checker(8, 8)

		errc := make(chan error, 1)
		go func() {
			_, err := r.Render(context.Background(), src, Request{})
			errc <- err
		}()
		<-started

		newer, err := r.Render(context.Background(), src, Request{})
		if err != nil {
			t.Fatalf("newer Render() error = %v", err)
		}
		if newer.Generation != 2 {
			t.Errorf("newer Generation = %d, want 2", newer.Generation)
		}

		close(release)
		if err := <-errc; !errors.Is(err, ErrStale) {
			t.Errorf("honourCancel=%v: older Render() error = %v, want ErrStale", honourCancel, err)
		}
		if r.Latest() != newer {
			t.Error("stale render replaced the latest result")
		}
	}
}

func TestRenderer_Reset(t *testing.T) {
	r := NewRenderer(New(nil))
	if _, err := r.Render(context.Background(), checker(16, 16), DefaultRequest(16, 16)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	gen := r.Generation()
	r.Reset()
	if r.Latest() != nil {
		t.Error("Reset() should clear the latest result")
	}
	if r.Generation() <= gen {
		t.Error("Reset() should advance the generation")
	}
}

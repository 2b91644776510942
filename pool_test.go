package raster2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type closeErrCapturer struct {
	stubCapturer
	err error
}

func (c *closeErrCapturer) Close() error { return c.err }

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}
	if got := ResolvePoolSize(20); got != 20 {
		t.Errorf("ResolvePoolSize(20) = %d, want 20", got)
	}

	want := max(MinPoolSize, min(MaxPoolSize, runtime.GOMAXPROCS(0)/cpuDivisor))
	for _, n := range []int{0, -1} {
		if got := ResolvePoolSize(n); got != want {
			t.Errorf("ResolvePoolSize(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestConverterPool_LazyCreation(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	p := newConverterPool(2, func() *Converter {
		created.Add(1)
		return newTestConverter(&recordingFactory{}, &stubCapturer{})
	})
	defer func() { _ = p.Close() }()

	if p.Size() != 2 {
		t.Errorf("Size() = %d, want 2", p.Size())
	}
	if created.Load() != 0 {
		t.Fatalf("created %d converters before Acquire", created.Load())
	}

	a := p.Acquire()
	p.Release(a)
	b := p.Acquire()
	if a != b {
		t.Error("released converter was not reused")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}

	c := p.Acquire()
	if c == b || created.Load() != 2 {
		t.Errorf("second concurrent Acquire: created = %d", created.Load())
	}
	p.Release(b)
	p.Release(c)
}

func TestConverterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	p := newConverterPool(0, func() *Converter { return newTestConverter(&recordingFactory{}, &stubCapturer{}) })
	defer func() { _ = p.Close() }()
	if p.Size() != MinPoolSize {
		t.Errorf("Size() = %d, want %d", p.Size(), MinPoolSize)
	}
}

func TestConverterPool_AcquireBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	p := newConverterPool(1, func() *Converter { return newTestConverter(&recordingFactory{}, &stubCapturer{}) })
	defer func() { _ = p.Close() }()

	held := p.Acquire()
	got := make(chan *Converter, 1)
	go func() { got <- p.Acquire() }()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the only converter was held")
	case <-time.After(30 * time.Millisecond):
	}

	p.Release(held)
	select {
	case c := <-got:
		if c != held {
			t.Error("waiting Acquire() got a different converter")
		}
		p.Release(c)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire() did not unblock after Release")
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	failing := &closeErrCapturer{err: errors.New("chrome stuck")}
	capturers := []Capturer{&stubCapturer{}, failing}
	var mu sync.Mutex
	next := 0
	p := newConverterPool(2, func() *Converter {
		mu.Lock()
		defer mu.Unlock()
		cp := capturers[next]
		next++
		return newTestConverter(&recordingFactory{}, cp)
	})

	a, b := p.Acquire(), p.Acquire()
	p.Release(a)
	p.Release(b)

	err := p.Close()
	if err == nil || !errors.Is(err, failing.err) {
		t.Errorf("Close() error = %v, want joined capturer error", err)
	}
	if !capturers[0].(*stubCapturer).closed {
		t.Error("first converter not closed")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if c := p.Acquire(); c != nil {
		t.Error("Acquire() after Close returned a converter")
	}
	p.Release(a) // must not panic
}

func TestConverterPool_ConcurrentConversions(t *testing.T) {
	t.Parallel()

	p := newConverterPool(3, func() *Converter { return newTestConverter(&recordingFactory{}, &stubCapturer{}) })
	defer func() { _ = p.Close() }()

	r := newTestRaster(t, 200, 2500, 1)
	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := p.Acquire()
			defer p.Release(c)
			doc, err := c.Convert(context.Background(), Input{Raster: r, Options: buildOptions(MarginNone)})
			if err == nil && doc.PageCount() != 3 {
				err = errors.New("unexpected page count")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestConverterPool_ReleaseRacingClose(t *testing.T) {
	t.Parallel()

	for range 200 {
		p := newConverterPool(4, func() *Converter { return newTestConverter(&recordingFactory{}, &stubCapturer{}) })
		held := make([]*Converter, 4)
		for i := range held {
			held[i] = p.Acquire()
		}

		var wg sync.WaitGroup
		for _, c := range held {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Release(c)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Close()
		}()
		wg.Wait()

		if c := p.Acquire(); c != nil {
			t.Fatal("Acquire() after Close returned a converter")
		}
	}
}

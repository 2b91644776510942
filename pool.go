package raster2pdf

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ConverterPool hands out Converters for parallel conversions. Each
// Converter owns its own browser, so captures in different workers do not
// serialize. Converters are created lazily on first Acquire.
type ConverterPool struct {
	size       int
	newFn      func() *Converter
	converters []*Converter
	sem        chan *Converter
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewConverterPool creates a pool with capacity for n Converters, each built
// with opts.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	return newConverterPool(n, func() *Converter { return NewConverter(opts...) })
}

func newConverterPool(n int, newFn func() *Converter) *ConverterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &ConverterPool{
		size:       n,
		newFn:      newFn,
		converters: make([]*Converter, 0, n),
		sem:        make(chan *Converter, n),
	}
}

// Acquire gets a Converter, creating one if capacity remains.
// Blocks while all Converters are in use. Returns nil once the pool is
// closed.
func (p *ConverterPool) Acquire() *Converter {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil
	}

	select {
	case c := <-p.sem:
		return c
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		c := p.newFn()

		p.mu.Lock()
		p.converters = append(p.converters, c)
		p.mu.Unlock()
		return c
	}
	p.mu.Unlock()

	return <-p.sem
}

// Release returns c to the pool. Releasing after Close is a no-op.
// The send happens under the lock so Close cannot close the channel in
// between; it never blocks since at most size Converters exist.
func (p *ConverterPool) Release(c *Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.sem <- c:
	default:
	}
}

// Close releases every browser. Errors from individual Converters are
// joined.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, c := range converters {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return max(MinPoolSize, min(MaxPoolSize, n))
}

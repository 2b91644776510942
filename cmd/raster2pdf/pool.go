package main

import raster2pdf "github.com/alnah/go-raster2pdf"

// poolAdapter exposes raster2pdf.ConverterPool through the Pool interface.
type poolAdapter struct {
	pool *raster2pdf.ConverterPool
}

// Compile-time check that poolAdapter implements closablePool.
var _ closablePool = (*poolAdapter)(nil)

// Acquire returns nil once the pool is closed.
func (a *poolAdapter) Acquire() CLIConverter {
	if conv := a.pool.Acquire(); conv != nil {
		return conv
	}
	return nil
}

// Release ignores converters the pool did not hand out.
func (a *poolAdapter) Release(c CLIConverter) {
	if conv, ok := c.(*raster2pdf.Converter); ok {
		a.pool.Release(conv)
	}
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	raster2pdf "github.com/alnah/go-raster2pdf"
)

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := DefaultEnv()
	env.Stdout = &stdout
	env.Stderr = &stderr
	env.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return env, &stdout, &stderr
}

// testImage returns a w x h image with a vertical gradient.
func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y % 256), G: uint8(x % 256), B: 128, A: 255})
		}
	}
	return img
}

// encodePNG encodes a w x h test image.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

// writePNG writes a w x h PNG under dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, encodePNG(t, w, h), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// mockConverter records inputs and builds real documents from rasters.
type mockConverter struct {
	mu     sync.Mutex
	inputs []raster2pdf.Input
	err    error
}

func (m *mockConverter) Convert(_ context.Context, in raster2pdf.Input) (*raster2pdf.Document, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	r := in.Raster
	if r == nil {
		var err error
		if r, err = raster2pdf.NewRaster(testImage(100, 100), 1); err != nil {
			return nil, err
		}
	}
	opts := *in.Options
	opts.Method = raster2pdf.MethodBuild
	return raster2pdf.NewConverter().Build(r, &opts)
}

func (m *mockConverter) Inputs() []raster2pdf.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]raster2pdf.Input(nil), m.inputs...)
}

// mockPool hands out a single shared converter.
type mockPool struct {
	conv     CLIConverter
	size     int
	acquired int
	released int
	closed   bool
	mu       sync.Mutex
}

func (p *mockPool) Acquire() CLIConverter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired++
	return p.conv
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// mockFactory returns a poolFactory that always yields pool.
func mockFactory(pool *mockPool) poolFactory {
	return func(size int, _ ...raster2pdf.Option) closablePool {
		pool.size = size
		return pool
	}
}

// pngHeader returns the signature and IHDR chunk of an 8-bit RGBA PNG
// claiming w x h pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

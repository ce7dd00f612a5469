package imgtex

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

const waitTimeout = 5 * time.Second

// encodePNG returns a solid w x h PNG.
func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// writePNG writes a solid PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, encodePNG(t, w, h, c), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// readyCounter counts ready callbacks and signals each one.
type readyCounter struct {
	n  atomic.Int32
	ch chan struct{}
}

func newReadyCounter() *readyCounter {
	return &readyCounter{ch: make(chan struct{}, 64)}
}

func (c *readyCounter) onReady() {
	c.n.Add(1)
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func (c *readyCounter) count() int {
	return int(c.n.Load())
}

func (c *readyCounter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for ready callback")
	}
}

// newTestRenderer creates a renderer with its own worker pool and frame
// cache, disposed when the test ends.
func newTestRenderer(t *testing.T, onReady func(), opts ...Option) *Renderer {
	t.Helper()
	pool := NewWorkerPool(2)
	t.Cleanup(pool.Close)

	opts = append([]Option{
		WithWorkerPool(pool),
		WithFrameCache(NewFrameCache(8)),
		WithPixelFormat(FormatRGBA8),
	}, opts...)
	r, err := New(onReady, 100, 200, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Dispose)
	return r
}

// await returns the single value of a Configure result channel and checks
// that the channel is closed afterwards.
func await(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		if _, open := <-result; open {
			t.Fatal("result channel delivered more than one value")
		}
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for configure result")
		return nil
	}
}

// eventually polls cond until it holds or the wait times out.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

// pixelAt returns the RGBA8 pixel of f at (x, y).
func pixelAt(t *testing.T, f *Frame, x, y int) color.NRGBA {
	t.Helper()
	if f.Format != FormatRGBA8 {
		t.Fatalf("pixelAt needs FormatRGBA8, got %v", f.Format)
	}
	off := y*f.Stride + x*4
	p := f.Pix()[off : off+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

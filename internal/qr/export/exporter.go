// Package export captures the live composition into a PNG asset.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/cristianadrielbraun/qrcompose/internal/logger"
)

// ErrCapture is returned when a capture cannot produce an image.
var ErrCapture = errors.New("export: capture failed")

// DefaultFilename is the suggested name of exported images.
const DefaultFilename = "download.png"

// State is the phase of the most recent capture.
type State int

const (
	Idle State = iota
	Capturing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ExportedImage is a captured PNG with its suggested filename.
type ExportedImage struct {
	Data     []byte
	Filename string
	Width    int
	Height   int
}

// DataURI returns the image as a data:image/png;base64 URI.
func (e *ExportedImage) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFilename overrides DefaultFilename. Empty names are ignored.
func WithFilename(name string) Option {
	return func(e *Exporter) {
		if name != "" {
			e.filename = name
		}
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// Exporter captures targets one at a time. A capture requested while
// another is running waits for it to finish.
type Exporter struct {
	capture  sync.Mutex
	mu       sync.RWMutex
	state    State
	filename string
	logger   *slog.Logger
	encoder  png.Encoder
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		filename: DefaultFilename,
		logger:   logger.Discard(),
		encoder:  png.Encoder{CompressionLevel: png.BestSpeed},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the phase of the latest capture.
func (e *Exporter) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Exporter) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Capture snapshots target and encodes it as PNG. Failures wrap
// ErrCapture and never yield an image.
func (e *Exporter) Capture(ctx context.Context, target Target) (*ExportedImage, error) {
	e.capture.Lock()
	defer e.capture.Unlock()

	start := time.Now()
	e.setState(Capturing)
	img, err := e.encodeSnapshot(ctx, target)
	if err != nil {
		e.setState(Failed)
		e.logger.ErrorContext(ctx, "capture failed", "error", err)
		return nil, err
	}
	e.setState(Ready)
	e.logger.DebugContext(ctx, "captured composition",
		"filename", img.Filename,
		"width", img.Width,
		"height", img.Height,
		"bytes", len(img.Data),
		"duration", time.Since(start),
	)
	return img, nil
}

func (e *Exporter) encodeSnapshot(ctx context.Context, target Target) (*ExportedImage, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: no target", ErrCapture)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	img, err := target.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, ErrCapture) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty snapshot", ErrCapture)
	}

	var buf bytes.Buffer
	if err := e.encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding png: %w", ErrCapture, err)
	}
	return &ExportedImage{
		Data:     buf.Bytes(),
		Filename: e.filename,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// CaptureAsync runs Capture in the background.
func (e *Exporter) CaptureAsync(ctx context.Context, target Target) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.img, f.err = e.Capture(ctx, target)
	}()
	return f
}

// Future is the pending result of CaptureAsync.
type Future struct {
	img  *ExportedImage
	err  error
	done chan struct{}
}

// Await blocks until the capture finishes.
func (f *Future) Await() (*ExportedImage, error) {
	<-f.done
	return f.img, f.err
}

// Done is closed when the capture finishes.
func (f *Future) Done() <-chan struct{} { return f.done }

// IsComplete reports whether the capture has finished, without blocking.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

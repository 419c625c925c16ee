package compose

import (
	"context"
	_ "embed"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/cristianadrielbraun/qrcompose/internal/logger"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/export"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/render"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

// DefaultLogo is the built-in centre logo.
//
//go:embed logo.svg
var DefaultLogo []byte

// Request is one preview or export. Payload, when set, is encoded as is;
// otherwise the Form's URL is.
type Request struct {
	Payload  string
	Form     Form
	Level    encoder.Level
	Style    style.Style
	Backdrop style.Background
}

// Result is a rendered request.
type Result struct {
	Payload string
	Level   encoder.Level
	Matrix  *encoder.Matrix
	Surface *render.Surface
}

// EffectiveLevel raises level so a logo stays recoverable: at least
// Quartile with any logo, High when it covers more than a fifth of the
// width.
func EffectiveLevel(level encoder.Level, logo *style.Logo) encoder.Level {
	if logo == nil {
		return level
	}
	floor := encoder.Quartile
	if logo.WidthFraction > 0.2 {
		floor = encoder.High
	}
	return max(level, floor)
}

// Themed builds the branded style for a colour and gradient option.
// A negative index keeps the default for that part.
func Themed(colorIndex, gradientIndex int) (style.Style, style.Background, error) {
	fg := color.RGBA{0, 0, 0, 255}
	if colorIndex >= 0 {
		c, err := style.ColorOption(colorIndex)
		if err != nil {
			return style.Style{}, style.Background{}, err
		}
		fg = c
	}
	backdrop := style.SolidBackground(color.RGBA{255, 255, 255, 255})
	if gradientIndex >= 0 {
		g, err := style.GradientOption(gradientIndex)
		if err != nil {
			return style.Style{}, style.Background{}, err
		}
		backdrop = style.GradientBackground(g)
	}
	return style.Themed(fg), backdrop, nil
}

// Pipeline runs Encoder, Renderer and Exporter for requests. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	cache    *encoder.Cache
	renderer *render.Renderer
	exporter *export.Exporter
	filename string
	baseURL  string
	logger   *slog.Logger
}

type Option func(*Pipeline)

func WithBaseURL(u string) Option {
	return func(p *Pipeline) {
		if u != "" {
			p.baseURL = u
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCacheSize sets the matrix memo capacity.
func WithCacheSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.cache = encoder.NewCache(n)
		}
	}
}

// WithExportFilename sets the suggested name of exported images.
func WithExportFilename(name string) Option {
	return func(p *Pipeline) {
		p.filename = name
	}
}

const defaultCacheSize = 256

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL: DefaultBaseURL,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = encoder.NewCache(defaultCacheSize)
	}
	p.exporter = export.New(export.WithFilename(p.filename), export.WithLogger(p.logger))
	p.renderer = render.New(p.logger)
	return p
}

// Payload is the text a request encodes.
func (p *Pipeline) Payload(req Request) string {
	if req.Payload != "" {
		return req.Payload
	}
	return req.Form.URL(p.baseURL)
}

// Preview encodes and renders req.
func (p *Pipeline) Preview(req Request) (*Result, error) {
	payload := p.Payload(req)
	level := EffectiveLevel(req.Level, req.Style.Logo)

	m, err := p.cache.Encode(payload, level)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	surface, err := p.renderer.Render(m, req.Style)
	if err != nil {
		return nil, fmt.Errorf("rendering matrix: %w", err)
	}
	if err := surface.LogoErr(); err != nil {
		p.logger.Warn("logo dropped from preview", "error", err)
	}
	return &Result{Payload: payload, Level: level, Matrix: m, Surface: surface}, nil
}

// Show renders req and puts it on stage with its caption.
func (p *Pipeline) Show(stage *export.Stage, req Request) (*Result, error) {
	res, err := p.Preview(req)
	if err != nil {
		return nil, err
	}
	var caption export.Caption
	if req.Payload == "" {
		caption = req.Form.Caption()
	}
	err = stage.Show(export.Composition{
		Surface:  res.Surface,
		Backdrop: req.Backdrop,
		Caption:  caption,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Capture exports whatever stage currently displays.
func (p *Pipeline) Capture(ctx context.Context, stage *export.Stage) (*export.ExportedImage, error) {
	return p.exporter.Capture(ctx, stage)
}

// Export renders req on a private stage and captures it.
func (p *Pipeline) Export(ctx context.Context, req Request) (*export.ExportedImage, error) {
	stage := export.NewStage()
	res, err := p.Show(stage, req)
	if err != nil {
		return nil, err
	}
	img, err := p.Capture(ctx, stage)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "exported composition",
		"version", res.Matrix.Version(),
		"level", res.Level.String(),
		"bytes", len(img.Data),
	)
	return img, nil
}

// CacheStats reports matrix memo hits and misses.
func (p *Pipeline) CacheStats() (hits, misses uint64) { return p.cache.Stats() }

package export_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/export"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/render"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

const payload = "https://mail.ylide.io/contacts?name=Alice&address=0xABC"

func composition(t *testing.T, caption export.Caption) export.Composition {
	t.Helper()
	m, err := encoder.Encode(payload, encoder.Quartile)
	require.NoError(t, err)
	surface, err := render.New(nil).Render(m, style.Default())
	require.NoError(t, err)
	g, err := style.GradientOption(0)
	require.NoError(t, err)
	return export.Composition{Surface: surface, Backdrop: style.GradientBackground(g), Caption: caption}
}

func TestCaptureBeforeRender(t *testing.T) {
	t.Parallel()

	e := export.New()
	assert.Equal(t, export.Idle, e.State())

	img, err := e.Capture(context.Background(), export.NewStage())
	assert.ErrorIs(t, err, export.ErrCapture)
	assert.Nil(t, img)
	assert.Equal(t, export.Failed, e.State())
}

func TestCaptureShownComposition(t *testing.T) {
	t.Parallel()

	stage := export.NewStage()
	c := composition(t, export.Caption{})
	require.NoError(t, stage.Show(c))

	e := export.New()
	img, err := e.Capture(context.Background(), stage)
	require.NoError(t, err)
	assert.Equal(t, export.Ready, e.State())
	assert.Equal(t, export.DefaultFilename, img.Filename)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, img.Width, decoded.Bounds().Dx())
	assert.Equal(t, img.Height, decoded.Bounds().Dy())
	assert.Greater(t, img.Width, c.Surface.Size())

	bmp, err := gozxing.NewBinaryBitmapFromImage(decoded)
	require.NoError(t, err)
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, result.GetText())

	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/png;base64,"))
}

func TestCaptionExtendsFrame(t *testing.T) {
	t.Parallel()

	plain, captioned := export.NewStage(), export.NewStage()
	require.NoError(t, plain.Show(composition(t, export.Caption{})))
	require.NoError(t, captioned.Show(composition(t, export.Caption{
		Name:    "Alice",
		Wallet:  "0x123456...abcdef12",
		Subject: "Invoice",
	})))

	a, err := plain.Snapshot(context.Background())
	require.NoError(t, err)
	b, err := captioned.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Bounds().Dx(), b.Bounds().Dx())
	assert.Greater(t, b.Bounds().Dy(), a.Bounds().Dy())
}

func TestStageLifecycle(t *testing.T) {
	t.Parallel()

	stage := export.NewStage()
	assert.False(t, stage.Attached())

	require.NoError(t, stage.Show(composition(t, export.Caption{Name: "Bob"})))
	assert.True(t, stage.Attached())

	// A failed show keeps the current frame.
	err := stage.Show(export.Composition{})
	assert.ErrorIs(t, err, export.ErrCapture)
	assert.True(t, stage.Attached())

	// A failed export leaves the stage alone.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = export.New().Capture(ctx, stage)
	assert.ErrorIs(t, err, export.ErrCapture)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, stage.Attached())

	stage.Clear()
	assert.False(t, stage.Attached())
	_, err = export.New().Capture(context.Background(), stage)
	assert.ErrorIs(t, err, export.ErrCapture)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	stage := export.NewStage()
	require.NoError(t, stage.Show(composition(t, export.Caption{})))

	a, err := stage.Snapshot(context.Background())
	require.NoError(t, err)
	rgba := a.(*image.RGBA)
	for i := range rgba.Pix {
		rgba.Pix[i] = 0
	}
	b, err := stage.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, rgba.Pix, b.(*image.RGBA).Pix)
}

func TestCaptureAsync(t *testing.T) {
	t.Parallel()

	stage := export.NewStage()
	require.NoError(t, stage.Show(composition(t, export.Caption{})))

	e := export.New(export.WithFilename("qr.png"))
	f := e.CaptureAsync(context.Background(), stage)
	img, err := f.Await()
	require.NoError(t, err)
	assert.True(t, f.IsComplete())
	assert.Equal(t, "qr.png", img.Filename)

	f = e.CaptureAsync(context.Background(), export.NewStage())
	<-f.Done()
	_, err = f.Await()
	assert.ErrorIs(t, err, export.ErrCapture)
}

// slowTarget records how many snapshots run at once.
type slowTarget struct {
	active, peak atomic.Int32
}

func (s *slowTarget) Snapshot(context.Context) (image.Image, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestCapturesDoNotInterleave(t *testing.T) {
	t.Parallel()

	target := &slowTarget{}
	e := export.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Capture(context.Background(), target)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), target.peak.Load())
	assert.Equal(t, export.Ready, e.State())
}

type failingTarget struct{}

func (failingTarget) Snapshot(context.Context) (image.Image, error) {
	return nil, errors.New("surface detached")
}

func TestCaptureWrapsTargetErrors(t *testing.T) {
	t.Parallel()

	_, err := export.New().Capture(context.Background(), failingTarget{})
	assert.ErrorIs(t, err, export.ErrCapture)
	assert.Contains(t, err.Error(), "surface detached")

	_, err = export.New().Capture(context.Background(), nil)
	assert.ErrorIs(t, err, export.ErrCapture)
}

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrcompose/internal/compose"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

var errBadRequest = errors.New("bad request")

const (
	maxModuleSize = 40
	maxQuietZone  = 16
	maxURLLength  = 4096
)

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme, a non-empty hostname, and returns a cleaned absolute URL.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL parameter is required")
	}
	// If missing scheme, default to https
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > maxURLLength {
		return "", fmt.Errorf("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}

// param reads a form field, falling back to the query string.
func param(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Query(key))
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

// intParam parses key as an integer in [lo, hi]; an absent key yields def.
func intParam(c *gin.Context, key string, def, lo, hi int) (int, error) {
	v := param(c, key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("%s must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

// parseRequest builds a pipeline request from query or form fields.
// An explicit url wins over the mail form fields.
func (h *Handler) parseRequest(c *gin.Context) (compose.Request, error) {
	var req compose.Request

	if raw := param(c, "url"); raw != "" {
		u, err := normalizeHTTPURL(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		req.Payload = u
	} else {
		mode, err := compose.ParseMode(param(c, "mode"))
		if err != nil {
			return req, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		req.Form = compose.Form{
			Mode:    mode,
			Name:    param(c, "name"),
			Wallet:  param(c, "wallet"),
			Subject: param(c, "subject"),
		}
		if req.Form.Wallet == "" {
			return req, badRequest("url or wallet parameter is required")
		}
	}

	req.Level = h.cfg.ECLevel
	if v := param(c, "ec"); v != "" {
		level, err := encoder.ParseLevel(v)
		if err != nil {
			return req, err
		}
		req.Level = level
	}

	s, backdrop, err := h.parseStyle(c)
	if err != nil {
		return req, err
	}
	req.Style, req.Backdrop = s, backdrop
	return req, nil
}

// parseStyle starts from the themed look when a colour or gradient
// option is picked, otherwise from the plain default, then applies
// explicit overrides.
func (h *Handler) parseStyle(c *gin.Context) (style.Style, style.Background, error) {
	colorIndex, err := intParam(c, "color", -1, 0, len(style.ColorOptions)-1)
	if err != nil {
		return style.Style{}, style.Background{}, err
	}
	gradientIndex, err := intParam(c, "gradient", -1, 0, len(style.GradientOptions)-1)
	if err != nil {
		return style.Style{}, style.Background{}, err
	}

	s := style.Default()
	backdrop := style.SolidBackground(color.RGBA{255, 255, 255, 255})
	if colorIndex >= 0 || gradientIndex >= 0 {
		if s, backdrop, err = compose.Themed(colorIndex, gradientIndex); err != nil {
			return style.Style{}, style.Background{}, err
		}
	}

	if s.ModuleSize, err = intParam(c, "moduleSize", h.cfg.ModuleSize, 1, maxModuleSize); err != nil {
		return style.Style{}, style.Background{}, err
	}
	if s.QuietZone, err = intParam(c, "quietZone", h.cfg.QuietZone, 0, maxQuietZone); err != nil {
		return style.Style{}, style.Background{}, err
	}
	if v := param(c, "fg"); v != "" {
		if s.Foreground, err = style.ParseColor(v); err != nil {
			return style.Style{}, style.Background{}, err
		}
	}
	if v := param(c, "bg"); v != "" {
		if s.Background, err = parseBackground(v); err != nil {
			return style.Style{}, style.Background{}, err
		}
	}
	if v := param(c, "backdrop"); v != "" {
		g, err := style.ParseLinearGradient(v)
		if err != nil {
			return style.Style{}, style.Background{}, err
		}
		backdrop = style.GradientBackground(g)
	}
	if v := param(c, "shape"); v != "" {
		if s.DotShape, err = style.ParseDotShape(v); err != nil {
			return style.Style{}, style.Background{}, err
		}
	}
	if param(c, "logo") == "default" {
		s.Logo, err = logoParam(c, compose.DefaultLogo)
		if err != nil {
			return style.Style{}, style.Background{}, err
		}
	}
	return s, backdrop, nil
}

// logoParam wraps data with the requested width fraction and clear-zone
// flag.
func logoParam(c *gin.Context, data []byte) (*style.Logo, error) {
	logo := &style.Logo{Data: data, WidthFraction: style.ThemedLogoFraction, ClearBehindLogo: true}
	if v := param(c, "logoWidth"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, badRequest("logoWidth must be a number")
		}
		logo.WidthFraction = f
	}
	if v := param(c, "clearLogo"); v != "" {
		clearZone, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badRequest("clearLogo must be a boolean")
		}
		logo.ClearBehindLogo = clearZone
	}
	return logo, nil
}

// readLogo returns the uploaded logo file, or nil when none was sent.
func (h *Handler) readLogo(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("reading logo: %v", err)
	}
	if fh.Size > h.cfg.MaxLogoBytes {
		return nil, badRequest("logo exceeds %d bytes", h.cfg.MaxLogoBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest("opening logo: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxLogoBytes+1))
	if err != nil {
		return nil, badRequest("reading logo: %v", err)
	}
	if int64(len(data)) > h.cfg.MaxLogoBytes {
		return nil, badRequest("logo exceeds %d bytes", h.cfg.MaxLogoBytes)
	}
	return data, nil
}

// QRCodeHandler renders a preview of the QR surface as PNG or JPEG.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Parse format parameter (default to PNG)
	format := strings.ToLower(c.DefaultQuery("format", "png"))
	if format == "jpeg" {
		format = "jpg"
	}
	if format != "png" && format != "jpg" {
		format = "png"
	}

	res, err := h.pipeline.Preview(req)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "jpg" {
		contentType = "image/jpeg"
		err = encodeJPEG(&buf, res.Surface.Image(), jpegMatte(req.Style.Background))
	} else {
		err = png.Encode(&buf, res.Surface.Image())
	}
	if err != nil {
		h.fail(c, fmt.Errorf("encoding %s: %w", format, err))
		return
	}

	h.logger.DebugContext(c.Request.Context(), "rendered preview",
		"format", format,
		"version", res.Matrix.Version(),
		"level", res.Level.String(),
		"side", res.Surface.Size(),
	)
	c.Header("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	c.Header("X-QR-Version", strconv.Itoa(res.Matrix.Version()))
	c.Header("X-QR-Level", res.Level.String())
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// parseBackground reads a QR background: a colour or a CSS linear-gradient.
func parseBackground(v string) (style.Background, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "linear-gradient") {
		g, err := style.ParseLinearGradient(v)
		if err != nil {
			return style.Background{}, err
		}
		return style.GradientBackground(g), nil
	}
	c, err := style.ParseColor(v)
	if err != nil {
		return style.Background{}, err
	}
	return style.SolidBackground(c), nil
}

// jpegMatte is the opaque colour JPEG output is flattened onto: the solid
// background, or the gradient's midpoint, falling back to white when that
// is fully transparent.
func jpegMatte(bg style.Background) color.RGBA {
	c := bg.Solid
	if bg.Gradient != nil {
		c = bg.Gradient.ColorAt(0.5)
	}
	if c.A == 0 {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{c.R, c.G, c.B, 255}
}

// encodeJPEG composites img onto an opaque background and encodes it.
func encodeJPEG(w io.Writer, img image.Image, bg color.RGBA) error {
	outBounds := img.Bounds()
	out := image.NewRGBA(outBounds)
	draw.Draw(out, outBounds, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, outBounds, img, outBounds.Min, draw.Over)
	return jpeg.Encode(w, out, &jpeg.Options{Quality: 92})
}

// ExportHandler composes the QR with its backdrop and caption and returns
// the captured PNG, as an attachment or as a data URI.
func (h *Handler) ExportHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxLogoBytes+1<<20)

	req, err := h.parseRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := h.readLogo(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if data != nil {
		if req.Style.Logo, err = logoParam(c, data); err != nil {
			h.fail(c, err)
			return
		}
	}

	img, err := h.pipeline.Export(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	if param(c, "as") == "datauri" {
		c.JSON(http.StatusOK, gin.H{
			"filename": img.Filename,
			"width":    img.Width,
			"height":   img.Height,
			"dataUri":  img.DataURI(),
		})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename))
	c.Data(http.StatusOK, "image/png", img.Data)
}

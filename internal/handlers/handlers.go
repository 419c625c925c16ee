package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrcompose/internal/compose"
	"github.com/cristianadrielbraun/qrcompose/internal/config"
	"github.com/cristianadrielbraun/qrcompose/internal/logger"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	pipeline *compose.Pipeline
	cfg      config.Config
	logger   *slog.Logger
}

// New returns a Handler serving requests through p.
func New(p *compose.Pipeline, cfg config.Config, l *slog.Logger) *Handler {
	if l == nil {
		l = logger.Discard()
	}
	return &Handler{pipeline: p, cfg: cfg, logger: l}
}

// ThemesHandler lists the selectable colours and gradients.
func (h *Handler) ThemesHandler(c *gin.Context) {
	colors := make([]string, len(style.ColorOptions))
	for i, col := range style.ColorOptions {
		colors[i] = style.Hex(col)
	}
	gradients := make([]gin.H, len(style.GradientOptions))
	for i, g := range style.GradientOptions {
		gradients[i] = gin.H{"index": i, "css": g.CSS(), "angle": g.AngleDeg}
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.JSON(http.StatusOK, gin.H{
		"colors":    colors,
		"gradients": gradients,
		"shapes":    []string{style.Square.String(), style.Rounded.String(), style.Dot.String()},
		"levels":    []string{"L", "M", "Q", "H"},
	})
}

// SitemapXML serves a minimal sitemap for the site.
func (h *Handler) SitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	scheme := "https"
	host := c.Request.Host
	if xf := c.Request.Header.Get("X-Forwarded-Proto"); xf != "" {
		scheme = xf
	} else if c.Request.TLS == nil && (host == "localhost"+h.cfg.Addr() || host == "127.0.0.1"+h.cfg.Addr()) {
		scheme = "http"
	}
	base := scheme + "://" + host
	xml := "" +
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n" +
		"  <url>\n" +
		"    <loc>" + base + "/" + "</loc>\n" +
		"    <changefreq>weekly</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n"
	c.String(http.StatusOK, xml)
}

// statusFor maps pipeline errors to HTTP status codes. Capture failures
// and anything unexpected are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, encoder.ErrPayloadTooLarge),
		errors.Is(err, encoder.ErrUnsupportedCharacter),
		errors.Is(err, encoder.ErrInvalidLevel),
		errors.Is(err, style.ErrInvalidStyle),
		errors.Is(err, style.ErrInvalidColor),
		errors.Is(err, style.ErrInvalidGradient),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

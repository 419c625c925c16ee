package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
	"github.com/cristianadrielbraun/qrcompose/web/components"
	"github.com/cristianadrielbraun/qrcompose/web/pages"
)

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(h.logger))
	r.Use(gin.Recovery())

	// API routes
	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/export", h.ExportHandler)
		api.GET("/themes", h.ThemesHandler)
	}

	// Pages
	r.GET("/", h.HomeHandler)
	r.GET("/sitemap.xml", h.SitemapXML)
	return r
}

// HomeHandler renders the composer page.
func (h *Handler) HomeHandler(c *gin.Context) {
	data := components.FormData{
		BaseURL: h.cfg.BaseURL,
		Compose: c.Query("mode") == "compose",
		Name:    c.Query("name"),
		Wallet:  c.Query("wallet"),
		Subject: c.Query("subject"),
	}
	for i, col := range style.ColorOptions {
		data.Colors = append(data.Colors, components.Swatch{Index: i, Background: style.Hex(col), Selected: i == 0})
	}
	for i, g := range style.GradientOptions {
		data.Gradients = append(data.Gradients, components.Swatch{Index: i, Background: g.CSS(), Selected: i == 0})
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(data).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "rendering home page", "error", err)
	}
}

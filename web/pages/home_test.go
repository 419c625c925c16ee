package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcompose/web/components"
)

func render(t *testing.T, data components.FormData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, HomePage(data).Render(context.Background(), &buf))
	return buf.String()
}

func TestHomePage(t *testing.T) {
	t.Parallel()

	data := components.FormData{
		BaseURL: "https://mail.ylide.io",
		Name:    `<b>"Al"</b>`,
		Wallet:  "0xABC",
		Colors:  []components.Swatch{{Index: 0, Background: "#302b63", Selected: true}},
	}
	html := render(t, data)

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, `data-base-url="https://mail.ylide.io"`)
	assert.Contains(t, html, `value="&lt;b&gt;&#34;Al&#34;&lt;/b&gt;"`)
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, `value="contact" checked>`)
	assert.Contains(t, html, `value="compose">`)
	assert.Contains(t, html, `name="color" value="0"`)
	assert.Contains(t, html, `src="/api/qr?color=0&amp;name=`)

	data.Compose = true
	html = render(t, data)
	assert.Contains(t, html, `value="contact">`)
	assert.Contains(t, html, `value="compose" checked>`)
}

func TestHomePageCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := HomePage(components.FormData{}).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestPreviewSrc(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/qr?url=https%3A%2F%2Fmail.ylide.io", PreviewSrc(components.FormData{BaseURL: "https://mail.ylide.io"}))
	assert.Equal(t, "/api/qr?mode=compose&name=Bob&subject=Hi&wallet=0x1",
		PreviewSrc(components.FormData{Compose: true, Name: "Bob", Wallet: "0x1", Subject: "Hi"}))
}

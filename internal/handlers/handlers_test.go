package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcompose/internal/compose"
	"github.com/cristianadrielbraun/qrcompose/internal/config"
	"github.com/cristianadrielbraun/qrcompose/internal/handlers"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	cfg := config.Config{
		Port:           "8080",
		LogFormat:      "text",
		BaseURL:        compose.DefaultBaseURL,
		ModuleSize:     8,
		QuietZone:      4,
		ECLevel:        encoder.Medium,
		MatrixCache:    16,
		MaxLogoBytes:   1 << 20,
		ExportFilename: "download.png",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p := compose.New(
		compose.WithBaseURL(cfg.BaseURL),
		compose.WithCacheSize(cfg.MatrixCache),
		compose.WithExportFilename(cfg.ExportFilename),
	)
	return handlers.NewRouter(handlers.New(p, cfg, nil))
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeQR(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestQRCodeHandler(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	t.Run("url", func(t *testing.T) {
		t.Parallel()
		w := get(t, r, "/api/qr?url=example.com/path")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "M", w.Header().Get("X-QR-Level"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/path", decodeQR(t, img))
	})

	t.Run("contact form themed", func(t *testing.T) {
		t.Parallel()
		w := get(t, r, "/api/qr?name=Alice&wallet=0xABC&color=0&ec=Q&shape=dot")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Q", w.Header().Get("X-QR-Level"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "https://mail.ylide.io/contacts?name=Alice&address=0xABC", decodeQR(t, img))
	})

	t.Run("default logo raises level", func(t *testing.T) {
		t.Parallel()
		w := get(t, r, "/api/qr?wallet=0xABC&logo=default&ec=L")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Q", w.Header().Get("X-QR-Level"))
	})

	t.Run("jpeg", func(t *testing.T) {
		t.Parallel()
		w := get(t, r, "/api/qr?url=https://example.com&format=jpeg&bg=transparent")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

		img, err := jpeg.Decode(w.Body)
		require.NoError(t, err)
		cr, cg, cb, _ := img.At(0, 0).RGBA()
		assert.Greater(t, cr>>8, uint32(240))
		assert.Greater(t, cg>>8, uint32(240))
		assert.Greater(t, cb>>8, uint32(240))
	})

	t.Run("jpeg over translucent gradient", func(t *testing.T) {
		t.Parallel()
		q := url.Values{}
		q.Set("url", "https://example.com")
		q.Set("format", "jpg")
		q.Set("bg", "linear-gradient(to right, #0000ff80, #0000ff80)")
		w := get(t, r, "/api/qr?"+q.Encode())
		require.Equal(t, http.StatusOK, w.Code)

		img, err := jpeg.Decode(w.Body)
		require.NoError(t, err)
		// Flattened onto the gradient's own colour, not onto white.
		cr, _, cb, _ := img.At(2, 2).RGBA()
		assert.Less(t, cr>>8, uint32(60))
		assert.Greater(t, cb>>8, uint32(150))
	})

	t.Run("gradient background", func(t *testing.T) {
		t.Parallel()
		q := url.Values{}
		q.Set("url", "https://example.com")
		q.Set("bg", "linear-gradient(to right, #ff0000, #0000ff)")
		w := get(t, r, "/api/qr?"+q.Encode())
		require.Equal(t, http.StatusOK, w.Code)

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		lr, _, lb, _ := img.At(1, 1).RGBA()
		rr, _, rb, _ := img.At(img.Bounds().Dx()-2, 1).RGBA()
		assert.Greater(t, lr, rr)
		assert.Less(t, lb, rb)
	})

	t.Run("module size", func(t *testing.T) {
		t.Parallel()
		w := get(t, r, "/api/qr?url=https://example.com&moduleSize=2&quietZone=0")
		require.Equal(t, http.StatusOK, w.Code)
		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		// 19 bytes at M needs version 2.
		assert.Equal(t, 2*25, img.Bounds().Dx())
	})
}

func TestQRCodeHandlerBadInput(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	cases := map[string]string{
		"missing payload":  "/api/qr",
		"bad scheme":       "/api/qr?url=" + url.QueryEscape("ftp://example.com"),
		"bad level":        "/api/qr?url=example.com&ec=Z",
		"bad colour index": "/api/qr?url=example.com&color=99",
		"bad fg":           "/api/qr?url=example.com&fg=" + url.QueryEscape("#12"),
		"bad shape":        "/api/qr?url=example.com&shape=star",
		"bad module size":  "/api/qr?url=example.com&moduleSize=0",
		"bad mode":         "/api/qr?wallet=0x1&mode=forward",
		"bad logo width":   "/api/qr?url=example.com&logo=default&logoWidth=0.9",
		"too large":        "/api/qr?url=" + url.QueryEscape("https://example.com/"+strings.Repeat("a", 3000)),
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := get(t, r, target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, errorBody(t, w))
		})
	}
}

func multipartExport(t *testing.T, fields map[string]string, logo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if logo != nil {
		fw, err := mw.CreateFormFile("logo", "logo.png")
		require.NoError(t, err)
		_, err = fw.Write(logo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/export", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []byte{0xff, 0xe4, 0xec, 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExportHandler(t *testing.T) {
	t.Parallel()
	r := newRouter(t, func(c *config.Config) { c.ExportFilename = "ylide.png" })

	t.Run("attachment", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartExport(t, map[string]string{
			"url":      "https://example.com/pay",
			"gradient": "1",
		}, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="ylide.png"`, w.Header().Get("Content-Disposition"))

		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/pay", decodeQR(t, img))
	})

	t.Run("data uri with logo", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartExport(t, map[string]string{
			"mode":      "compose",
			"name":      "Bob",
			"wallet":    "0x1234567890abcdef12",
			"subject":   "Hello",
			"color":     "2",
			"logoWidth": "0.2",
			"as":        "datauri",
		}, pngLogo(t)))
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Filename string `json:"filename"`
			Width    int    `json:"width"`
			Height   int    `json:"height"`
			DataURI  string `json:"dataUri"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ylide.png", body.Filename)
		assert.Greater(t, body.Height, body.Width)
		assert.True(t, strings.HasPrefix(body.DataURI, "data:image/png;base64,"))
	})

	t.Run("url-encoded form", func(t *testing.T) {
		t.Parallel()
		form := url.Values{"url": {"https://example.com"}, "as": {"datauri"}}
		req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestExportHandlerLogoTooLarge(t *testing.T) {
	t.Parallel()
	r := newRouter(t, func(c *config.Config) { c.MaxLogoBytes = 16 })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartExport(t, map[string]string{"url": "https://example.com"}, pngLogo(t)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "logo exceeds 16 bytes")
}

func TestThemesHandler(t *testing.T) {
	t.Parallel()

	w := get(t, newRouter(t, nil), "/api/themes")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Colors    []string `json:"colors"`
		Gradients []struct {
			Index int     `json:"index"`
			CSS   string  `json:"css"`
			Angle float64 `json:"angle"`
		} `json:"gradients"`
		Shapes []string `json:"shapes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Colors, 6)
	assert.Equal(t, "#302b63", body.Colors[0])
	require.Len(t, body.Gradients, 9)
	assert.Equal(t, 90.0, body.Gradients[0].Angle)
	assert.True(t, strings.HasPrefix(body.Gradients[0].CSS, "linear-gradient(90deg"))
	assert.Equal(t, []string{"square", "rounded", "dot"}, body.Shapes)
}

func TestHomeAndSitemap(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	w := get(t, r, "/?wallet=0xABC&name=%3Cb%3E")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `id="qr-form"`)
	assert.Contains(t, w.Body.String(), "&lt;b&gt;")
	assert.NotContains(t, w.Body.String(), "<b>")
	assert.Contains(t, w.Body.String(), `name="gradient" value="8"`)

	w = get(t, r, "/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<loc>https://example.com/</loc>")
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	w := get(t, r, "/api/themes")
	assert.Len(t, w.Header().Get(handlers.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/themes", nil)
	req.Header.Set(handlers.RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(handlers.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/themes", nil)
	req.Header.Set(handlers.RequestIDHeader, "bad id!")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "bad id!", w.Header().Get(handlers.RequestIDHeader))
}

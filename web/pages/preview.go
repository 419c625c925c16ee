// Package pages holds the server-rendered pages.
package pages

import (
	"fmt"
	"net/url"

	"github.com/cristianadrielbraun/qrcompose/web/components"
)

// PreviewSrc is the initial preview image URL for data.
func PreviewSrc(data components.FormData) string {
	q := url.Values{}
	if data.Wallet == "" {
		q.Set("url", data.BaseURL)
	} else {
		q.Set("wallet", data.Wallet)
		q.Set("name", data.Name)
		if data.Compose {
			q.Set("mode", "compose")
			q.Set("subject", data.Subject)
		}
	}
	for _, s := range data.Colors {
		if s.Selected {
			q.Set("color", fmt.Sprint(s.Index))
		}
	}
	return "/api/qr?" + q.Encode()
}

// Package compose turns form input and a theme choice into a payload and
// style, and drives the encode, render and export pipeline.
package compose

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cristianadrielbraun/qrcompose/internal/qr/export"
)

// DefaultBaseURL is the mail client the generated links open.
const DefaultBaseURL = "https://mail.ylide.io"

// Mode selects which link a form produces.
type Mode int

const (
	// ModeContact links to "add contact".
	ModeContact Mode = iota
	// ModeCompose links to a new message addressed to the wallet.
	ModeCompose
)

func (m Mode) String() string {
	if m == ModeCompose {
		return "compose"
	}
	return "contact"
}

// ParseMode accepts "compose" or "contact"/"contacts"; empty means contact.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contact", "contacts":
		return ModeContact, nil
	case "compose", "mail":
		return ModeCompose, nil
	}
	return 0, fmt.Errorf("compose: unknown mode %q", s)
}

// Form holds the user-supplied fields.
type Form struct {
	Mode    Mode
	Name    string
	Wallet  string
	Subject string
}

// Normalize trims every field and puts it in Unicode NFC form, so
// visually identical input always encodes to the same bytes.
func (f Form) Normalize() Form {
	clean := func(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }
	return Form{
		Mode:    f.Mode,
		Name:    clean(f.Name),
		Wallet:  clean(f.Wallet),
		Subject: clean(f.Subject),
	}
}

// URL builds the link for the form under base. Values are query-escaped
// and emitted in a fixed order.
func (f Form) URL(base string) string {
	base = strings.TrimRight(base, "/")
	f = f.Normalize()
	q := url.QueryEscape
	if f.Mode == ModeCompose {
		return base + "/compose?type=address&address=" + q(f.Wallet) +
			"&input=" + q(f.Name) + "&subject=" + q(f.Subject)
	}
	return base + "/contacts?name=" + q(f.Name) + "&address=" + q(f.Wallet)
}

// Caption is the info panel shown under the code.
func (f Form) Caption() export.Caption {
	f = f.Normalize()
	c := export.Caption{Name: f.Name, Wallet: EllipsisAddress(f.Wallet, 8)}
	if f.Mode == ModeCompose {
		c.Subject = f.Subject
	}
	return c
}

// EllipsisAddress keeps the first and last n characters of addr joined
// by "...". Short addresses are returned unchanged.
func EllipsisAddress(addr string, n int) string {
	r := []rune(addr)
	if n <= 0 || len(r) <= 2*n+3 {
		return addr
	}
	return string(r[:n]) + "..." + string(r[len(r)-n:])
}

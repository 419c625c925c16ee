package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrcompose/internal/compose"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/encoder"
	"github.com/cristianadrielbraun/qrcompose/internal/qr/style"
)

type renderFlags struct {
	payload   string
	form      compose.Form
	compose   bool
	ec        string
	shape     string
	color     int
	gradient  int
	logo      string
	logoWidth float64
	out       string
}

func newRenderCmd(e *env) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render and export a composition to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(e)
			if err != nil {
				return err
			}
			img, err := e.pipeline.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := f.out
			if out == "" {
				out = img.Filename
			}
			if err := os.WriteFile(out, img.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, img.Width, img.Height)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.payload, "payload", "", "text to encode; overrides the form flags")
	fl.StringVar(&f.form.Name, "name", "", "contact name")
	fl.StringVar(&f.form.Wallet, "wallet", "", "wallet address")
	fl.StringVar(&f.form.Subject, "subject", "", "mail subject (compose mode)")
	fl.BoolVar(&f.compose, "compose", false, "link to a new message instead of a contact")
	fl.StringVar(&f.ec, "ec", "", "error correction level L, M, Q or H (default $QR_EC_LEVEL)")
	fl.StringVar(&f.shape, "shape", "", "module shape: square, rounded or dot")
	fl.IntVar(&f.color, "color", 0, "foreground colour option, -1 for black")
	fl.IntVar(&f.gradient, "gradient", 0, "backdrop gradient option, -1 for white")
	fl.StringVar(&f.logo, "logo", "", `logo file (PNG, JPEG, GIF or SVG); "default" for the built-in logo`)
	fl.Float64Var(&f.logoWidth, "logo-width", style.ThemedLogoFraction, "logo width relative to the code")
	fl.StringVarP(&f.out, "out", "o", "", "output file (default $QR_EXPORT_FILENAME)")
	return cmd
}

func (f *renderFlags) request(e *env) (compose.Request, error) {
	req := compose.Request{Payload: f.payload, Form: f.form, Level: e.cfg.ECLevel}
	if f.compose {
		req.Form.Mode = compose.ModeCompose
	}
	if req.Payload == "" && req.Form.Wallet == "" {
		return req, fmt.Errorf("either --payload or --wallet is required")
	}
	if f.ec != "" {
		level, err := encoder.ParseLevel(f.ec)
		if err != nil {
			return req, err
		}
		req.Level = level
	}

	s, backdrop, err := compose.Themed(f.color, f.gradient)
	if err != nil {
		return req, err
	}
	s.ModuleSize, s.QuietZone = e.cfg.ModuleSize, e.cfg.QuietZone
	if f.shape != "" {
		if s.DotShape, err = style.ParseDotShape(f.shape); err != nil {
			return req, err
		}
	}
	switch f.logo {
	case "":
	case "default":
		s.Logo = &style.Logo{Data: compose.DefaultLogo, WidthFraction: f.logoWidth, ClearBehindLogo: true}
	default:
		data, err := os.ReadFile(f.logo)
		if err != nil {
			return req, fmt.Errorf("reading logo: %w", err)
		}
		s.Logo = &style.Logo{Data: data, WidthFraction: f.logoWidth, ClearBehindLogo: true}
	}
	req.Style, req.Backdrop = s, backdrop
	return req, nil
}

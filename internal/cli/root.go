// Package cli implements the qrcompose command line.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrcompose/internal/compose"
	"github.com/cristianadrielbraun/qrcompose/internal/config"
	"github.com/cristianadrielbraun/qrcompose/internal/handlers"
	"github.com/cristianadrielbraun/qrcompose/internal/logger"
)

// env is what every command needs, built once in the root's
// PersistentPreRunE.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *compose.Pipeline
}

// NewRootCmd returns the qrcompose command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:           "qrcompose",
		Short:         "Compose styled QR codes for mail links and export them as PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
	}
	cmd.AddCommand(newServeCmd(e))
	cmd.AddCommand(newRenderCmd(e))
	cmd.AddCommand(newMatrixCmd(e))
	return cmd
}

func (e *env) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithAttr(slog.String("service", "qrcompose")),
		logger.WithContextExtractors(handlers.RequestIDAttr),
	)
	e.pipeline = compose.New(
		compose.WithBaseURL(cfg.BaseURL),
		compose.WithLogger(e.logger),
		compose.WithCacheSize(cfg.MatrixCache),
		compose.WithExportFilename(cfg.ExportFilename),
	)
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// Package cli implementa el comando userdash (cobra).
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userdash/internal/app"
	"github.com/dropDatabas3/userdash/internal/config"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"

	// Config queda cargada después de PersistentPreRunE.
	Config *config.Config

	// Open construye el Container; nil = app.New.
	Open func(ctx context.Context, cfg *config.Config) (*app.Container, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the userdash CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "userdash",
		Short:         "userdash - gestión de usuarios",
		Long:          "Dashboard de usuarios: API REST, comandos CRUD y un shell interactivo sobre el mismo store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "config", err)
			}
			opts.Config = cfg
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "userdash"})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to userdash.yaml (optional)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// open arma el Container y carga el store.
func (o *RootOptions) open(ctx context.Context) (*app.Container, error) {
	openFn := o.Open
	if openFn == nil {
		openFn = defaultOpen
	}
	c, err := openFn(ctx, o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	if _, err := c.Users.Load(ctx); err != nil {
		_ = c.Close()
		return nil, WrapExitError(ExitCommandError, "load users", err)
	}
	return c, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
}

var defaultOpen = app.New

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userdash/internal/http/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr != "" {
				rootOpts.Config.Server.Addr = addr
			}

			openFn := rootOpts.Open
			if openFn == nil {
				openFn = defaultOpen
			}
			c, err := openFn(ctx, rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "open store", err)
			}
			defer c.Close()

			if err := server.Run(ctx, c); err != nil {
				return WrapExitError(ExitCommandError, "serve", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

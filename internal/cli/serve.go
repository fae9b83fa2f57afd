package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mro/pkg/server"
	"github.com/matzehuels/mro/pkg/session"
)

// serveCommand runs the HTTP session API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session API over HTTP",
		Long: `Serve hierarchies over HTTP. Each POST /sessions opens an independent
session whose linearizations are computed on demand and memoized until the
session is deleted or expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, store, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Options{
				Runner: runner,
				Store:  session.NewMemoryStore(),
				Logger: c.Logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

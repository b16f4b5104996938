package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsplit/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage viewer over HTTP",
		Long: `Serve static files (by default the ./widget lineage viewer) over HTTP until
interrupted.`,
		Example: `  sqlsplit serve
  sqlsplit serve --addr 127.0.0.1:9000 --root site`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Addr:   cc.Cfg.Serve.Addr,
				Root:   cc.Cfg.Serve.Root,
				Logger: cc.Logger,
			})
			cc.Renderer.Printf("Serving %s on %s (Ctrl+C to stop)\n", cc.Cfg.Serve.Root, cc.Cfg.Serve.Addr)
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", server.DefaultAddr, "Listen address")
	cmd.Flags().String("root", server.DefaultRoot, "Directory to serve")
	return cmd
}

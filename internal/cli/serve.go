package cli

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the release operations over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := cfg.NewServer(cmd.Context())
		if err != nil {
			return err
		}

		return srv.Run(cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

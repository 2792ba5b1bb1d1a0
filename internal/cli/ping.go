package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the GraphQL endpoint and API key",
		Long:  `Send a minimal GraphQL query to verify the endpoint is reachable and accepts the API key.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, false)
			if err != nil {
				return err
			}
			if s.cfg.APIKey == "" {
				s.out.warn("No API key configured")
			}

			s.out.info("Service          Status    Endpoint")
			s.out.info("────────────────────────────────────────")

			if err := s.client.Ping(cmd.Context()); err != nil {
				color.New().Fprintf(s.out.w, "%-16s %s    %s\n", "GraphQL API", color.RedString("✗ DOWN"), s.client.Endpoint())
				return s.classify("ping", err)
			}

			color.New().Fprintf(s.out.w, "%-16s %s      %s\n", "GraphQL API", color.GreenString("✓ UP"), s.client.Endpoint())
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/adapters/render/board"
	"github.com/bnema/boardroom/internal/application"
)

func newProbeCmd(withApp withApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe [service...]",
		Short: "Check connectivity to external integrations",
		Long:  "probe checks each named integration, or all of them when none is named. Known services: slack, notion, google, twilio, amqp.",
		RunE: withApp(func(cmd *cobra.Command, args []string, app *app) error {
			for _, service := range args {
				if !knownService(app.probes.Services(), service) {
					return fmt.Errorf("unknown service %q (known: %s)", service, strings.Join(app.probes.Services(), ", "))
				}
			}

			results := app.probes.Run(cmd.Context(), application.ProbeCommand{Services: args})
			if asJSON {
				return writeJSON(cmd, toProbesJSON(results))
			}

			rendered, err := board.Probes(results)
			return writeRendered(cmd, rendered, err)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

func knownService(services []string, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, service := range services {
		if service == name {
			return true
		}
	}

	return false
}

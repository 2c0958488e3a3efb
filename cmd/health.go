package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/adapters/render/board"
)

func newHealthCmd(withApp withApp) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show boardroom health and configured integrations",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, app *app) error {
			status := app.boardroom.Health()
			if asJSON {
				return writeJSON(cmd, toHealthJSON(status))
			}

			rendered, err := board.Health(status)
			return writeRendered(cmd, rendered, err)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

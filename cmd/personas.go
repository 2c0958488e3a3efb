package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/adapters/personas"
	"github.com/bnema/boardroom/internal/adapters/render/board"
	"github.com/bnema/boardroom/internal/domain"
)

func newPersonasCmd(withApp withApp) *cobra.Command {
	var (
		asJSON     bool
		department string
	)

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List the executive personas",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, app *app) error {
			listed := filterDepartment(app.boardroom.Personas(), department)
			if asJSON {
				return writeJSON(cmd, toPersonasJSON(listed))
			}

			rendered, err := board.Personas(listed)
			return writeRendered(cmd, rendered, err)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().StringVar(&department, "department", "", "Only list personas from this department")
	cmd.AddCommand(newPersonasExportCmd(withApp))

	return cmd
}

func newPersonasExportCmd(withApp withApp) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the loaded catalogue to a .toml or .yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *app) error {
			catalogue := app.boardroom.Personas()
			if err := personas.WriteFile(args[0], catalogue); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d personas to %s\n", len(catalogue), args[0])
			return nil
		}),
	}
}

func filterDepartment(catalogue []domain.Persona, department string) []domain.Persona {
	department = strings.TrimSpace(department)
	if department == "" {
		return catalogue
	}

	filtered := make([]domain.Persona, 0, len(catalogue))
	for _, persona := range catalogue {
		if strings.EqualFold(persona.Department, department) {
			filtered = append(filtered, persona)
		}
	}

	return filtered
}

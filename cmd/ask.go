package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/adapters/render/board"
	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/domain"
)

const askSpinnerLabel = "Consulting the boardroom..."

var errNoPersonasSelected = errors.New("select personas with --persona or use --all")

type personaSelection struct {
	ids []string
	all bool
}

func (s *personaSelection) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&s.ids, "persona", "p", nil, "Persona id to consult (repeatable or comma separated)")
	cmd.Flags().BoolVar(&s.all, "all", false, "Consult every persona in the catalogue")
}

func (s *personaSelection) resolve(catalogue []domain.Persona) ([]domain.PersonaID, error) {
	if s.all {
		ids := make([]domain.PersonaID, 0, len(catalogue))
		for _, persona := range catalogue {
			ids = append(ids, persona.ID)
		}
		return ids, nil
	}
	if len(s.ids) == 0 {
		return nil, errNoPersonasSelected
	}

	ids := make([]domain.PersonaID, 0, len(s.ids))
	for _, id := range s.ids {
		ids = append(ids, domain.PersonaID(id))
	}

	return ids, nil
}

func newAskCmd(withApp withApp) *cobra.Command {
	var (
		selection personaSelection
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ask [flags] <message>",
		Short: "Ask the selected personas one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *app) error {
			ids, err := selection.resolve(app.boardroom.Personas())
			if err != nil {
				return err
			}

			command := application.OrchestrateCommand{
				Message:    strings.Join(args, " "),
				PersonaIDs: ids,
			}

			var result application.OrchestrationResult
			orchestrate := func(ctx context.Context) error {
				var runErr error
				result, runErr = app.boardroom.Orchestrate(ctx, command)
				return runErr
			}

			if asJSON {
				if err := orchestrate(cmd.Context()); err != nil {
					return err
				}
				return writeJSON(cmd, toOrchestrationJSON(result))
			}

			if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), askSpinnerLabel, orchestrate); err != nil {
				return err
			}

			rendered, err := board.Responses(app.boardroom.Personas(), result)
			return writeRendered(cmd, rendered, err)
		}),
	}

	selection.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

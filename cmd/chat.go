package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/boardroom/internal/adapters/render/board"
	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/domain"
)

const (
	chatPrompt = "> "
	chatHelp   = "Commands: /history [n], /analytics, /personas, /help, /quit"
)

func newChatCmd(withApp withApp) *cobra.Command {
	var selection personaSelection

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold an interactive discussion with the selected personas",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, app *app) error {
			ids, err := selection.resolve(app.boardroom.Personas())
			if err != nil {
				return err
			}

			session := chatSession{
				cmd:       cmd,
				boardroom: app.boardroom,
				ids:       ids,
				out:       cmd.OutOrStdout(),
			}
			return session.run(cmd.InOrStdin())
		}),
	}

	selection.bind(cmd)

	return cmd
}

type chatSession struct {
	cmd       *cobra.Command
	boardroom *application.Boardroom
	ids       []domain.PersonaID
	out       io.Writer
}

func (s chatSession) run(in io.Reader) error {
	_, _ = fmt.Fprintln(s.out, chatHelp)
	_, _ = fmt.Fprint(s.out, chatPrompt)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "/"):
			quit, err := s.command(line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		default:
			if err := s.ask(line); err != nil {
				return err
			}
		}
		_, _ = fmt.Fprint(s.out, chatPrompt)
	}

	return scanner.Err()
}

func (s chatSession) ask(message string) error {
	var result application.OrchestrationResult
	err := runWithSpinner(s.cmd.Context(), s.cmd.ErrOrStderr(), askSpinnerLabel, func(ctx context.Context) error {
		var runErr error
		result, runErr = s.boardroom.Orchestrate(ctx, application.OrchestrateCommand{
			Message:    message,
			PersonaIDs: s.ids,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	rendered, err := board.Responses(s.boardroom.Personas(), result)
	return writeRendered(s.cmd, rendered, err)
}

// command handles one slash command and reports whether the session ends.
func (s chatSession) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		_, err := fmt.Fprintln(s.out, chatHelp)
		return false, err
	case "/history":
		limit := application.DefaultHistoryLimit
		if len(fields) > 1 {
			parsed, err := strconv.Atoi(fields[1])
			if err != nil || parsed <= 0 {
				_, err = fmt.Fprintf(s.out, "invalid history limit %q\n", fields[1])
				return false, err
			}
			limit = parsed
		}
		rendered, err := board.History(s.boardroom.Personas(), s.boardroom.History(limit))
		return false, writeRendered(s.cmd, rendered, err)
	case "/analytics":
		rendered, err := board.Analytics(s.boardroom.Personas(), s.boardroom.Analytics())
		return false, writeRendered(s.cmd, rendered, err)
	case "/personas":
		rendered, err := board.Personas(s.boardroom.Personas())
		return false, writeRendered(s.cmd, rendered, err)
	default:
		_, err := fmt.Fprintf(s.out, "unknown command %s\n%s\n", fields[0], chatHelp)
		return false, err
	}
}

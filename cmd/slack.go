package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSlackCmd(withApp withApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slack",
		Short: "Send messages through the Slack webhook",
	}

	cmd.AddCommand(newSlackSendCmd(withApp))

	return cmd
}

func newSlackSendCmd(withApp withApp) *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "send [flags] <text>",
		Short: "Post a message to Slack",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *app) error {
			if err := app.slack.Send(cmd.Context(), strings.Join(args, " "), channel); err != nil {
				return fmt.Errorf("send slack message: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Message sent to Slack")
			return nil
		}),
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Channel override (defaults to slack.channel)")

	return cmd
}

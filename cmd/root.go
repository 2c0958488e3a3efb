package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type appRunE func(cmd *cobra.Command, args []string, app *app) error

// withApp wires the application for one command run and tears it down after,
// so pending notifications are delivered before the process exits.
type withApp func(run appRunE) func(cmd *cobra.Command, args []string) error

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "boardroom",
		Short:         "Virtual C-Suite Boardroom: consult a panel of executive personas",
		Long:          "boardroom sends one message to a panel of executive personas, gathers their answers concurrently, and keeps the conversation history and usage analytics for the session.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	wrap := func(run appRunE) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			app, err := wireApp(cmd.Context(), wireOptions{Verbose: verbose, LogOut: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := app.close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			return run(cmd, args, app)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newPersonasCmd(wrap),
		newAskCmd(wrap),
		newChatCmd(wrap),
		newHealthCmd(wrap),
		newProbeCmd(wrap),
		newSlackCmd(wrap),
	)

	return rootCmd
}

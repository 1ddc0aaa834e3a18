package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "onboard",
		Short:         "Coordinate member onboarding sessions",
		Long:          "onboard drives a member's onboarding session: it waits for linked accounts, finds each account's historical-update webhook, imports the data and triggers scoring once every import settles.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newSimulateCmd(app),
		newWebhookCmd(app),
		newAccountCmd(app),
		newClientCmd(app),
		newSecretCmd(app),
		newReportsCmd(app),
		newSnapshotCmd(app),
	)

	return rootCmd
}

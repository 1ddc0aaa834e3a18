package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
)

func newWebhookCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the aggregator webhook queue",
	}
	cmd.AddCommand(newWebhookAddCmd(app))
	return cmd
}

func newWebhookAddCmd(app *app) *cobra.Command {
	var (
		accountID   string
		webhookType string
		code        string
		payload     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Queue a webhook for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			saved, err := store.SaveWebhook(cmd.Context(), domain.Webhook{
				AccountID: domain.AccountID(accountID),
				Type:      strings.ToUpper(webhookType),
				Code:      strings.ToUpper(code),
				Payload:   payload,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "queued webhook %s for %s (%s/%s)\n", saved.ID, saved.AccountID, saved.Type, saved.Code)
			return err
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account id")
	cmd.Flags().StringVar(&webhookType, "type", domain.WebhookTypeTransactions, "Webhook type")
	cmd.Flags().StringVar(&code, "code", domain.WebhookCodeHistoricalUpdate, "Webhook code")
	cmd.Flags().StringVar(&payload, "payload", "", "Raw webhook payload")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

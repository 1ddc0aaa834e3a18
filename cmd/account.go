package cmd

import (
	"fmt"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage linked accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var (
		memberID    string
		accountID   string
		institution string
		linkError   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a linked account for a member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			member, err := domain.ParseMemberID(memberID)
			if err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := domain.LinkedAccount{
				ID:            domain.AccountID(accountID),
				OwnerID:       member,
				InstitutionID: institution,
				LinkError:     linkError,
			}
			if err := store.AddAccount(cmd.Context(), account); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "linked %s to %s\n", account.ID, member)
			return err
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "Member id (auth0|xxxxxxxx)")
	cmd.Flags().StringVar(&accountID, "account", "", "Account id")
	cmd.Flags().StringVar(&institution, "institution", "", "Institution id")
	cmd.Flags().StringVar(&linkError, "error", "", "Link error; marks the account as failed")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	var memberID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a member's linked accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			member, err := domain.ParseMemberID(memberID)
			if err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListByOwner(cmd.Context(), member)
			if err != nil {
				return err
			}
			for _, account := range accounts {
				state := "ok"
				if !account.Healthy() {
					state = "failed: " + account.LinkError
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", account.ID, account.InstitutionID, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "Member id (auth0|xxxxxxxx)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

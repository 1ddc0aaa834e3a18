package cmd

import (
	"fmt"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
)

const secretRefHelp = "Secret ref, identity/<name> or mail/<name>"

func newSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage identity client secrets and the mail API key",
	}

	cmd.AddCommand(
		newSecretSetCmd(app),
		newSecretDeleteCmd(app),
		newSecretListCmd(app),
	)

	return cmd
}

func newSecretSetCmd(app *app) *cobra.Command {
	var key, value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a secret under a ref",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := domain.ParseSecretRef(key)
			if err != nil {
				return err
			}
			if err := app.secrets.Put(cmd.Context(), ref, value); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s secret %s\n", ref.Kind(), ref)
			return err
		},
	}

	cmd.Flags().StringVar(&key, "key", "", secretRefHelp)
	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newSecretDeleteCmd(app *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a stored secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := domain.ParseSecretRef(key)
			if err != nil {
				return err
			}
			return app.secrets.Delete(cmd.Context(), ref)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", secretRefHelp)
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newSecretListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored secret refs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs, err := app.secrets.Refs(cmd.Context())
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No stored secrets.")
				return err
			}
			for _, ref := range refs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ref.Kind(), ref)
			}
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
)

func newClientCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage tenant client configurations",
	}

	cmd.AddCommand(
		newClientAddCmd(app),
		newClientListCmd(app),
	)

	return cmd
}

func newClientAddCmd(app *app) *cobra.Command {
	var client domain.ClientConfig
	var rawID, rawSecretRef string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register or update a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := domain.ParseClientID(rawID)
			if err != nil {
				return err
			}
			client.ClientID = id
			if rawSecretRef != "" {
				ref, err := domain.ParseSecretRef(rawSecretRef)
				if err != nil {
					return err
				}
				client.IdentitySecretRef = ref
			}

			if err := app.clients.Save(cmd.Context(), client); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved client %s (%s)\n", client.ClientID, client.PartnerName)
			return err
		},
	}

	cmd.Flags().StringVar(&rawID, "client", "", "Client GUID")
	cmd.Flags().StringVar(&client.PartnerName, "name", "", "Partner name")
	cmd.Flags().StringVar(&client.PartnerBrand, "brand", "", "Partner brand")
	cmd.Flags().StringVar(&client.TenantDomain, "tenant", "", "Identity tenant domain")
	cmd.Flags().StringVar(&client.TokenAudience, "audience", "", "Identity API token audience")
	cmd.Flags().StringVar(&client.Status, "status", domain.ClientStatusActive, "Client status")
	cmd.Flags().StringVar(&client.IdentityClientID, "identity-client", "", "Machine-to-machine client id")
	cmd.Flags().StringVar(&rawSecretRef, "identity-secret-ref", "", "Secret ref of the machine-to-machine client secret (identity/<name>, default identity/<client>)")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func newClientListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			clients, err := app.clients.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, client := range clients {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", client.ClientID, client.PartnerName, client.TenantDomain, client.Status)
			}
			return nil
		},
	}
}

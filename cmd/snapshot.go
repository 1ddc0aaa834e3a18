package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *app) *cobra.Command {
	var (
		addr   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the live state of a running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := strings.TrimRight(addr, "/")
			if !strings.Contains(base, "://") {
				base = "http://" + base
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, base+"/snapshot", nil)
			if err != nil {
				return fmt.Errorf("create snapshot request: %w", err)
			}
			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("fetch snapshot: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch snapshot: status %d", resp.StatusCode)
			}

			var snapshot domain.Snapshot
			if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&snapshot); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(snapshot)
			}

			rendered, err := app.renderSnapshot(snapshot)
			if err != nil {
				return fmt.Errorf("render snapshot: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.cfg.HTTPListen, "Address of the session's event ingress")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")

	return cmd
}

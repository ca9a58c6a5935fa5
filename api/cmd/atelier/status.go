package atelier

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelierhq/atelier/api/pkg/config"
	"github.com/atelierhq/atelier/api/pkg/system"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the health of a running Atelier server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}

			serverURL := cfg.WebServer.URL
			if serverURL == "" {
				serverURL = fmt.Sprintf("http://localhost:%d", cfg.WebServer.Port)
			}

			// healthz returns 503 while subsystems are coming up, the retry
			// client keeps polling so this doubles as a wait-for-ready
			client := system.NewRetryClient(3, false)
			url := serverURL + system.GetAPIPath("/healthz")
			resp, err := client.Get(url)
			if err != nil {
				return fmt.Errorf("failed to reach %s: %w", url, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server reported status %d", resp.StatusCode)
			}
			return nil
		},
	}
}

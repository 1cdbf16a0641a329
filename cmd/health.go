package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running saju-admin server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}

		client := &http.Client{Timeout: 5 * time.Second}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, addr+"/health", nil)
		if err != nil {
			return eris.Wrap(err, "build health request")
		}

		resp, err := client.Do(req)
		if err != nil {
			return eris.Wrapf(err, "reach %s", addr)
		}
		defer resp.Body.Close() //nolint:errcheck

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("server unhealthy: %d %s", resp.StatusCode, string(body))
		}

		fmt.Printf("OK %s\n", string(body))
		return nil
	},
}

func init() {
	healthCmd.Flags().String("addr", "", "server base URL (default http://localhost:<port>)")
	rootCmd.AddCommand(healthCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillgrid/tillgrid/internal/presentation/tui"
)

// sessionsResponse mirrors the admin API's /sessions payload.
type sessionsResponse struct {
	Count    int `json:"count"`
	Sessions []struct {
		ApplicationID string `json:"application_id"`
		NodeID        string `json:"node_id"`
		ScreenID      string `json:"screen_id"`
		DeviceID      string `json:"device_id"`
	} `json:"sessions"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live sessions of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s/sessions", addr))
		if err != nil {
			return fmt.Errorf("query %s: %w", addr, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("query %s: unexpected status %s", addr, resp.Status)
		}

		var body sessionsResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode sessions: %w", err)
		}

		rows := make([]tui.FleetSession, 0, len(body.Sessions))
		for _, s := range body.Sessions {
			rows = append(rows, tui.FleetSession{
				ApplicationID: s.ApplicationID,
				NodeID:        s.NodeID,
				ScreenID:      s.ScreenID,
				DeviceID:      s.DeviceID,
			})
		}
		fmt.Print(tui.RenderFleetReport(rows))
		return nil
	},
}

func init() {
	statusCmd.Flags().String("addr", "localhost:8087", "Admin API address of the running server")
	rootCmd.AddCommand(statusCmd)
}

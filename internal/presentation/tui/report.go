package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// FleetSession is one row of the fleet report.
type FleetSession struct {
	ApplicationID string
	NodeID        string
	ScreenID      string
	DeviceID      string
}

// RenderFleetReport renders the live-session overview as styled markdown for
// the status command. Falls back to the raw markdown if the terminal
// renderer cannot be built.
func RenderFleetReport(sessions []FleetSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fleet status\n\n%d live session(s)\n\n", len(sessions))
	if len(sessions) > 0 {
		b.WriteString("| Application | Node | Screen | Device |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, s := range sessions {
			screen := s.ScreenID
			if screen == "" {
				screen = "(uninitialized)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", s.ApplicationID, s.NodeID, screen, s.DeviceID)
		}
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return b.String()
	}
	out, err := renderer.Render(b.String())
	if err != nil {
		return b.String()
	}
	return out
}

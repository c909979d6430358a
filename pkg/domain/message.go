package domain

import "time"

// Message is the tagged union of UI payloads a terminal can receive.
// Exactly one concrete variant exists per delivery: a full Screen, a
// transient Toast, or an opaque Generic payload. Dispatch points switch
// exhaustively over the three variants; the unexported marker keeps the
// set closed.
type Message interface {
	isMessage()
}

// Screen is a full-screen UI message: an identifier plus the property graph
// the terminal renders. Screens replace whatever the terminal currently shows
// and become the session's "current screen".
type Screen struct {
	ID     string            `json:"id"`
	Title  string            `json:"title,omitempty"`
	Items  []*ActionItem     `json:"items,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (*Screen) isMessage() {}

// Clone returns a deep copy of the screen. The transformation pipeline
// mutates its input, and the session keeps the untransformed original so a
// refresh can re-run the pipeline against clean values.
func (s *Screen) Clone() *Screen {
	if s == nil {
		return nil
	}
	out := &Screen{ID: s.ID, Title: s.Title}
	if s.Items != nil {
		out.Items = make([]*ActionItem, len(s.Items))
		for i, it := range s.Items {
			c := *it
			out.Items[i] = &c
		}
	}
	if s.Fields != nil {
		out.Fields = make(map[string]string, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// ToastSeverity classifies a toast for terminal-side styling.
type ToastSeverity string

const (
	ToastInfo    ToastSeverity = "info"
	ToastWarning ToastSeverity = "warning"
	ToastError   ToastSeverity = "error"
)

// Toast is a transient overlay message. Delivering a toast never alters the
// session's current screen.
type Toast struct {
	DeviceID string        `json:"device_id"`
	Text     string        `json:"text"`
	Severity ToastSeverity `json:"severity,omitempty"`
	TTL      time.Duration `json:"ttl,omitempty"`
}

func (*Toast) isMessage() {}

// Generic is an opaque payload routed to a device-addressed channel outside
// the screen pipeline.
type Generic struct {
	DeviceID string `json:"device_id"`
	Payload  any    `json:"payload"`
}

func (*Generic) isMessage() {}

// ActionItem is a triggerable control inside a screen's property graph.
// The transformation pipeline mutates items in place (keybinding assignment,
// label localization).
type ActionItem struct {
	Action        string `json:"action"`
	Label         string `json:"label,omitempty"`
	KeyBind       string `json:"keybind,omitempty"`
	KeyBindLabel  string `json:"keybind_label,omitempty"`
	AutoAssignKey bool   `json:"auto_assign_key,omitempty"`
}

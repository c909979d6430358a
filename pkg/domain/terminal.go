package domain

import "fmt"

// TerminalID identifies one terminal's session: the tenant/application it
// belongs to plus the physical node within that application.
// Immutable once assigned; used as the registry key.
type TerminalID struct {
	ApplicationID string
	NodeID        string
}

// NewTerminalID builds an identity from its two components.
func NewTerminalID(applicationID, nodeID string) TerminalID {
	return TerminalID{ApplicationID: applicationID, NodeID: nodeID}
}

// String renders the identity as "app/node" for logs and map keys.
func (t TerminalID) String() string {
	return fmt.Sprintf("%s/%s", t.ApplicationID, t.NodeID)
}

// DeviceDescriptor is the full device record resolved by the inventory
// collaborator. Read-only for this core.
type DeviceDescriptor struct {
	DeviceID              string `json:"device_id" mapstructure:"device_id"`
	ApplicationID         string `json:"application_id" mapstructure:"application_id"`
	TimezoneOffsetMinutes int    `json:"timezone_offset_minutes" mapstructure:"timezone_offset_minutes"`
	BusinessUnitID        string `json:"business_unit_id" mapstructure:"business_unit_id"`
	Description           string `json:"description,omitempty" mapstructure:"description"`

	// Parameters holds free-form per-device settings (locale, error sounds, ...).
	// Decoded into typed settings by the config layer.
	Parameters map[string]string `json:"parameters,omitempty" mapstructure:"parameters"`
}

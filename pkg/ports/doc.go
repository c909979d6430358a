/*
Package ports defines the driven ports (interfaces) of the fleet server core.

These interfaces decouple the session, transform, status and incident
components from external collaborators: the pub/sub transport, the device
inventory, the incident service, the keymap and audio providers, and the
process-wide event bus.

# Key Interfaces

  - Transport: subscribe-notification feed plus per-terminal message delivery.
  - Inventory: resolves a terminal identity to its full device descriptor.
  - IncidentService: renders a caught failure into one UI message variant.
  - Keymap / AudioPlayer: optional presentation collaborators.
  - StatusStore: optional write-through persistence for latest status reports.
*/
package ports

/*
Package tillgrid operates fleets of retail terminals over a publish/subscribe
transport.

The server keeps one authoritative live session per terminal (keyed by
application and node identity), reconciles transport subscribe events with
the session registry, transforms outgoing UI messages through pluggable
strategies before delivery, and converts failures and status updates into
addressed, channel-appropriate messages.

[Server] wires the components together; the sub-packages are usable on their
own:

  - pkg/session: scoped state store, session state machine, sharded registry
  - pkg/bridge: topic parsing and subscribe reconciliation
  - pkg/transform: outbound transformation pipeline and strategies
  - pkg/incident: error-to-UI translation
  - pkg/status: status cache & live publisher
  - pkg/adapters: mqtt transport, redis status store, chi admin API, memory doubles
*/
package tillgrid

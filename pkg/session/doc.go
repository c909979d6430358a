/*
Package session implements the per-terminal session core.

It provides the scoped state store living for a session's duration, the
session state machine (current screen, screen transitions, delivery), and the
process-wide registry mapping terminal identities to live sessions.

The registry guarantees at most one live session per terminal identity under
concurrent first-contact races, using sharded locks so unrelated terminals
never contend.
*/
package session

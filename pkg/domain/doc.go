/*
Package domain contains the core entities of the terminal fleet server.

It defines the terminal identity used to key sessions, the tagged UI message
variants delivered to terminals, the status report and incident records, and
the sentinel errors shared across components. Everything here is plain data;
adapters and transports depend on this package, never the other way around.
*/
package domain

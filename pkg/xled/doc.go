// Package xled implements the authenticated HTTP+JSON control surface of a
// device and the high-level realtime effects driven over it. A
// ControlInterface is one authenticated session: it owns the bearer token,
// the device's self-description, and (once realtime streaming starts) a
// single UDP socket reused for the session's lifetime.
package xled

// Package discovery finds devices on the local network. A scan broadcasts a
// single probe datagram, collects replies until a fixed wall-clock deadline,
// deduplicates retransmissions, and authenticates each genuinely new device
// to build a complete identity record including a reusable session token.
package discovery

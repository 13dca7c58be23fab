// Package rt implements the realtime frame-streaming protocol: versioned
// datagram encoding of raw RGB frames and a UDP sender owning one socket per
// session. There is no application-level acknowledgement; a lost chunk
// degrades only the frame it belonged to and self-heals on the next tick.
package rt

// Package auth implements the device's proprietary challenge-response
// handshake: a MAC-derived RC4 key encrypts a random challenge, its SHA-1
// digest is presented to the device's verify endpoint, and the device's
// authentication token becomes the session's bearer credential.
package auth

package auth

import (
	"crypto/rand"
	"crypto/rc4"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// sharedSecret is the fixed 16-byte secret the device firmware XORs with the
// MAC address to derive the challenge encryption key.
const sharedSecret = "evenmoresecret!!"

// ChallengeSize is the length of the random challenge in bytes.
const ChallengeSize = 32

// ErrBadMAC indicates a MAC address that is not six colon-separated hex
// octets.
var ErrBadMAC = errors.New("malformed MAC address")

// GenerateChallenge returns a cryptographically random challenge.
func GenerateChallenge() ([]byte, error) {
	challenge := make([]byte, ChallengeSize)
	if _, err := rand.Read(challenge); err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}
	return challenge, nil
}

// MACBytes parses a MAC address of the form "aa:bb:cc:dd:ee:ff" into its six
// octets.
func MACBytes(mac string) ([]byte, error) {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrBadMAC, mac)
	}
	out := make([]byte, len(parts))
	for i, part := range parts {
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadMAC, mac)
		}
		out[i] = byte(b)
	}
	return out, nil
}

// DeriveKey XORs secret with the MAC octets, repeated cyclically to the
// secret's length. XORing the result with the repeated MAC bytes reproduces
// the secret.
func DeriveKey(secret []byte, mac string) ([]byte, error) {
	macBytes, err := MACBytes(mac)
	if err != nil {
		return nil, err
	}
	key := make([]byte, len(secret))
	for i, b := range secret {
		key[i] = b ^ macBytes[i%len(macBytes)]
	}
	return key, nil
}

// MakeChallengeResponse encrypts the challenge with RC4 under the MAC-derived
// key and returns the hex-encoded SHA-1 digest of the ciphertext. It is a
// pure function of (challenge, mac).
func MakeChallengeResponse(challenge []byte, mac string) (string, error) {
	key, err := DeriveKey([]byte(sharedSecret), mac)
	if err != nil {
		return "", err
	}

	cipher, err := rc4.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}
	encrypted := make([]byte, len(challenge))
	cipher.XORKeyStream(encrypted, challenge)

	digest := sha1.Sum(encrypted)
	return hex.EncodeToString(digest[:]), nil
}

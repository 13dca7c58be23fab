package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTP surface of the handshake.
const (
	// TokenHeader carries the bearer token on authenticated requests.
	TokenHeader = "X-Auth-Token"

	loginPath  = "/xled/v1/login"
	verifyPath = "/xled/v1/verify"

	// codeOK is the only device response code that counts as handshake
	// success. The firmware also emits 1107/1108 in some flows with
	// undocumented meaning; those are treated as failures.
	codeOK = 1000
)

// ErrVerifyRejected indicates the device rejected the challenge response.
var ErrVerifyRejected = errors.New("device rejected challenge response")

type loginRequest struct {
	Challenge string `json:"challenge"`
}

type loginResponse struct {
	AuthenticationToken string `json:"authentication_token"`
	ChallengeResponse   string `json:"challenge-response"`
	Code                int    `json:"code"`
}

type verifyRequest struct {
	ChallengeResponse string `json:"challenge-response"`
}

type verifyResponse struct {
	Code int `json:"code"`
}

// Handshake runs the full challenge-response login against the device at
// host and returns the session token. Any non-2xx status, undecodable body
// or non-success verify code aborts the handshake.
func Handshake(ctx context.Context, client *http.Client, host, mac string) (string, error) {
	challenge, err := GenerateChallenge()
	if err != nil {
		return "", err
	}

	login, err := sendLogin(ctx, client, host, challenge)
	if err != nil {
		return "", err
	}

	response, err := MakeChallengeResponse(challenge, mac)
	if err != nil {
		return "", err
	}

	if err := sendVerify(ctx, client, host, login.AuthenticationToken, response); err != nil {
		return "", err
	}
	return login.AuthenticationToken, nil
}

func sendLogin(ctx context.Context, client *http.Client, host string, challenge []byte) (*loginResponse, error) {
	body, err := json.Marshal(loginRequest{
		Challenge: base64.StdEncoding.EncodeToString(challenge),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	url := fmt.Sprintf("http://%s%s", host, loginPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send login challenge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed with status %s", resp.Status)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &login, nil
}

func sendVerify(ctx context.Context, client *http.Client, host, token, challengeResponse string) error {
	body, err := json.Marshal(verifyRequest{ChallengeResponse: challengeResponse})
	if err != nil {
		return fmt.Errorf("failed to encode verify request: %w", err)
	}

	url := fmt.Sprintf("http://%s%s", host, verifyPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TokenHeader, token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send verification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verification failed with status %s", resp.Status)
	}

	var verify verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verify); err != nil {
		return fmt.Errorf("failed to decode verify response: %w", err)
	}
	if verify.Code != codeOK {
		return fmt.Errorf("%w: code %d", ErrVerifyRejected, verify.Code)
	}
	return nil
}

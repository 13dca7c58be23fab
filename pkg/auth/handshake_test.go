package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMAC = "aa:bb:cc:dd:ee:ff"

// fakeDevice implements the login/verify endpoints the way the firmware
// does: it computes the expected challenge response itself and rejects a
// verify that does not match.
type fakeDevice struct {
	t          *testing.T
	token      string
	verifyCode int

	expectedResponse string
}

func (d *fakeDevice) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(d.t, json.NewDecoder(r.Body).Decode(&req))

		challenge, err := base64.StdEncoding.DecodeString(req.Challenge)
		require.NoError(d.t, err)
		require.Len(d.t, challenge, ChallengeSize)

		d.expectedResponse, err = MakeChallengeResponse(challenge, testMAC)
		require.NoError(d.t, err)

		json.NewEncoder(w).Encode(loginResponse{
			AuthenticationToken: d.token,
			ChallengeResponse:   d.expectedResponse,
			Code:                codeOK,
		})
	})
	mux.HandleFunc(verifyPath, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(d.t, d.token, r.Header.Get(TokenHeader))

		var req verifyRequest
		require.NoError(d.t, json.NewDecoder(r.Body).Decode(&req))

		code := d.verifyCode
		if req.ChallengeResponse != d.expectedResponse {
			code = 1104
		}
		json.NewEncoder(w).Encode(verifyResponse{Code: code})
	})
	return mux
}

func TestHandshake(t *testing.T) {
	device := &fakeDevice{t: t, token: "c2Vzc2lvbg==", verifyCode: codeOK}
	srv := httptest.NewServer(device.handler())
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	token, err := Handshake(context.Background(), srv.Client(), host, testMAC)
	require.NoError(t, err)
	assert.Equal(t, "c2Vzc2lvbg==", token)
}

func TestHandshakeWrongMAC(t *testing.T) {
	// The client signs with a different MAC than the device, so the
	// device's own computation cannot match and verify must fail.
	device := &fakeDevice{t: t, token: "tok", verifyCode: codeOK}
	srv := httptest.NewServer(device.handler())
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	_, err := Handshake(context.Background(), srv.Client(), host, "aa:bb:cc:dd:ee:00")
	assert.ErrorIs(t, err, ErrVerifyRejected)
}

func TestHandshakeNonSuccessCode(t *testing.T) {
	// 1107 and 1108 show up in some firmware flows; only 1000 is success.
	for _, code := range []int{1107, 1108} {
		device := &fakeDevice{t: t, token: "tok", verifyCode: code}
		srv := httptest.NewServer(device.handler())

		host := strings.TrimPrefix(srv.URL, "http://")
		_, err := Handshake(context.Background(), srv.Client(), host, testMAC)
		assert.ErrorIs(t, err, ErrVerifyRejected, "code %d", code)
		srv.Close()
	}
}

func TestHandshakeLoginHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	_, err := Handshake(context.Background(), srv.Client(), host, testMAC)
	assert.Error(t, err)
}

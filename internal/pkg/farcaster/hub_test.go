package farcaster

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T, handler http.HandlerFunc) *HubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHubClient(srv.URL, time.Second)
}

func TestVerifySignedInteraction_Valid(t *testing.T) {
	address := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	hub := newHub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/validateMessage", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{0x0a, 0x0b}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"valid": true,
			"message": {
				"data": {
					"type": "MESSAGE_TYPE_FRAME_ACTION",
					"fid": 977233,
					"timestamp": 110000000,
					"frameActionBody": {
						"url": "` + base64.StdEncoding.EncodeToString([]byte("https://frame.example.com")) + `",
						"buttonIndex": 1,
						"inputText": "` + base64.StdEncoding.EncodeToString([]byte(address)) + `",
						"castId": {"fid": 226, "hash": "0xa48dd46161d8e57725f5e26e34ec19c13ff7f3b9"}
					}
				}
			}
		}`))
	})

	got, err := hub.VerifySignedInteraction(context.Background(), "0a0b")
	require.NoError(t, err)
	assert.Equal(t, int64(977233), got.FID)
	assert.Equal(t, 1, got.ButtonIndex)
	assert.Equal(t, address, got.InputText)
	assert.Equal(t, "https://frame.example.com", got.URL)
	assert.Equal(t, int64(226), got.CastFID)
}

func TestVerifySignedInteraction_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		wantErr error
	}{
		{"hub says invalid", http.StatusOK, `{"valid":false}`, "0a0b", ErrInvalidSignature},
		{"hub rejects message", http.StatusBadRequest, `{"errCode":"bad_request.validation_failure"}`, "0a0b", ErrInvalidSignature},
		{"hub down", http.StatusBadGateway, ``, "0a0b", ErrHubUnavailable},
		{"garbage response", http.StatusOK, `not json`, "0a0b", ErrHubUnavailable},
		{"valid but no fid", http.StatusOK, `{"valid":true,"message":{"data":{}}}`, "0a0b", ErrInvalidSignature},
		{"not a frame action", http.StatusOK, `{"valid":true,"message":{"data":{"type":"MESSAGE_TYPE_CAST_ADD","fid":3}}}`, "0a0b", ErrForeignFrame},
		{"not hex", http.StatusOK, `{"valid":true}`, "zz-not-hex", ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newHub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := hub.VerifySignedInteraction(context.Background(), tt.message)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifySignedInteraction_Unreachable(t *testing.T) {
	hub := NewHubClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := hub.VerifySignedInteraction(context.Background(), "0a0b")
	assert.ErrorIs(t, err, ErrHubUnavailable)
}

func TestDecodeBytesField(t *testing.T) {
	assert.Equal(t, "", decodeBytesField(""))
	assert.Equal(t, "hello", decodeBytesField(base64.StdEncoding.EncodeToString([]byte("hello"))))
	assert.Equal(t, "0x123", decodeBytesField("0x123"))
}

func frameActionResponse(fid int64, frameURL string) string {
	return fmt.Sprintf(`{"valid":true,"message":{"data":{"type":"MESSAGE_TYPE_FRAME_ACTION","fid":%d,"frameActionBody":{"url":%q,"buttonIndex":1}}}}`,
		fid, base64.StdEncoding.EncodeToString([]byte(frameURL)))
}

func TestVerifySignedInteraction_FrameURL(t *testing.T) {
	tests := []struct {
		name      string
		signedFor string
		wantErr   error
	}{
		{"exact url", "https://vibes.example.com", nil},
		{"trailing slash", "https://vibes.example.com/", nil},
		{"page below the frame", "https://vibes.example.com/api/frame", nil},
		{"host case differs", "https://VIBES.example.com/", nil},
		{"other frame", "https://other.example.com/", ErrForeignFrame},
		{"lookalike host", "https://vibes.example.com.evil.io/", ErrForeignFrame},
		{"no url", "", ErrForeignFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newHub(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(frameActionResponse(12, tt.signedFor)))
			})
			hub.FrameURL = "https://vibes.example.com"

			got, err := hub.VerifySignedInteraction(context.Background(), "0a0b")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(12), got.FID)
		})
	}
}

func TestSameFrame_SubPath(t *testing.T) {
	assert.True(t, sameFrame("https://example.com/vibes/", "https://example.com/vibes"))
	assert.False(t, sameFrame("https://example.com/vibes-fake", "https://example.com/vibes"))
}

package farcaster

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultHubTimeout = 10 * time.Second
	frameActionType   = "MESSAGE_TYPE_FRAME_ACTION"
)

var (
	// ErrInvalidSignature means the hub looked at the message and rejected it.
	ErrInvalidSignature = errors.New("farcaster: invalid message signature")
	// ErrHubUnavailable means we could not get an answer from the hub.
	ErrHubUnavailable = errors.New("farcaster: hub unavailable")
	// ErrForeignFrame means the signature is fine but the message is not a
	// press on this frame.
	ErrForeignFrame = errors.New("farcaster: message is not an action on this frame")
)

// Interaction is the signed content of a frame action, as decoded by the hub.
type Interaction struct {
	FID         int64
	ButtonIndex int
	InputText   string
	URL         string
	CastFID     int64
	CastHash    string
	Timestamp   int64
}

// Verifier validates signed frame messages.
type Verifier interface {
	VerifySignedInteraction(ctx context.Context, messageBytesHex string) (*Interaction, error)
}

// HubClient talks to the HTTP API of a Farcaster hub.
type HubClient struct {
	BaseURL    string
	HTTPClient *http.Client
	// FrameURL is the public URL of this frame. When set, actions signed for
	// any other URL are rejected.
	FrameURL string
}

// NewHubClient creates a client for the hub at baseURL.
func NewHubClient(baseURL string, timeout time.Duration) *HubClient {
	if timeout <= 0 {
		timeout = defaultHubTimeout
	}
	return &HubClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type validateMessageResponse struct {
	Valid   bool `json:"valid"`
	Message struct {
		Data struct {
			Type            string `json:"type"`
			FID             int64  `json:"fid"`
			Timestamp       int64  `json:"timestamp"`
			FrameActionBody struct {
				URL         string `json:"url"`
				ButtonIndex int    `json:"buttonIndex"`
				InputText   string `json:"inputText"`
				CastID      struct {
					FID  int64  `json:"fid"`
					Hash string `json:"hash"`
				} `json:"castId"`
			} `json:"frameActionBody"`
		} `json:"data"`
	} `json:"message"`
}

// VerifySignedInteraction sends the hex encoded message bytes to
// /v1/validateMessage. Errors are ErrInvalidSignature or ErrHubUnavailable
// (wrapped), so callers can log them apart while showing one screen.
func (c *HubClient) VerifySignedInteraction(ctx context.Context, messageBytesHex string) (*Interaction, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(messageBytesHex), "0x"))
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: message bytes are not hex", ErrInvalidSignature)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/validateMessage", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHubUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHubUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusBadRequest {
		// hubs answer 400 for messages they cannot parse or that fail validation
		return nil, fmt.Errorf("%w: hub status=400 body=%s", ErrInvalidSignature, string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: hub status=%d", ErrHubUnavailable, resp.StatusCode)
	}

	var out validateMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: undecodable hub response: %v", ErrHubUnavailable, err)
	}
	if !out.Valid {
		return nil, ErrInvalidSignature
	}

	data := out.Message.Data
	if data.FID <= 0 {
		return nil, fmt.Errorf("%w: message has no fid", ErrInvalidSignature)
	}
	if data.Type != frameActionType {
		return nil, fmt.Errorf("%w: message type %q", ErrForeignFrame, data.Type)
	}
	action := data.FrameActionBody
	actionURL := decodeBytesField(action.URL)
	if c.FrameURL != "" && !sameFrame(actionURL, c.FrameURL) {
		return nil, fmt.Errorf("%w: signed for %q", ErrForeignFrame, actionURL)
	}
	return &Interaction{
		FID:         data.FID,
		ButtonIndex: action.ButtonIndex,
		InputText:   decodeBytesField(action.InputText),
		URL:         actionURL,
		CastFID:     action.CastID.FID,
		CastHash:    action.CastID.Hash,
		Timestamp:   data.Timestamp,
	}, nil
}

// sameFrame reports whether actionURL is frameURL or a page below it.
// The scheme is not compared.
func sameFrame(actionURL, frameURL string) bool {
	a, err := url.Parse(actionURL)
	if err != nil || a.Host == "" {
		return false
	}
	f, err := url.Parse(frameURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(a.Host, f.Host) {
		return false
	}
	base := strings.TrimRight(f.Path, "/")
	return base == "" || a.Path == base || strings.HasPrefix(a.Path, base+"/")
}

// decodeBytesField decodes a protobuf bytes field, which the hub HTTP API
// renders as base64. Values that are not base64 are returned unchanged.
func decodeBytesField(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(decoded) {
		return s
	}
	return string(decoded)
}

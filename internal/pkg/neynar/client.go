package neynar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/time/rate"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

const (
	defaultTimeout     = 10 * time.Second
	notifyTimeout      = 10 * time.Second
	maxResponseBytes   = 2 << 20
	apiKeyHeader       = "api_key"
	optInEventType     = "opt_in"
	defaultRatePerSec  = 5
	defaultRateBurst   = 10
	defaultChannelName = "vibes"
)

// ErrUnavailable wraps every transport or non-2xx failure.
var ErrUnavailable = errors.New("neynar: api unavailable")

// Config holds everything the client needs. Zero values get defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Channel    string
	EventURL   string
	RatePerSec int
	Timeout    time.Duration
	// MembershipFallback enables the even-fid rule when the API cannot be
	// reached. Off unless explicitly configured.
	MembershipFallback bool
}

// Client is a small Neynar v2 REST client.
type Client struct {
	cfg        Config
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client; outbound calls share one token bucket.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultChannelName
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	burst := cfg.RatePerSec * 2
	if burst < defaultRateBurst {
		burst = defaultRateBurst
	}
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
	}
}

// Channel is the channel used for membership checks.
func (c *Client) Channel() string {
	return c.cfg.Channel
}

type followersResponse struct {
	Followers []struct {
		FID  int64 `json:"fid"`
		User *struct {
			FID int64 `json:"fid"`
		} `json:"user,omitempty"`
	} `json:"followers"`
}

// IsChannelMember checks whether fid follows the configured channel. When
// the API fails and the fallback is enabled the even-fid rule decides;
// otherwise the error is returned.
func (c *Client) IsChannelMember(ctx context.Context, fid int64) (bool, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/channel/%s/followers?with_fid=%d",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Channel), fid)

	var out followersResponse
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		if c.cfg.MembershipFallback {
			log.Warnf("[Neynar] Could not verify channel membership for fid %d, using fallback logic: %v", fid, err)
			return fid%2 == 0, nil
		}
		return false, err
	}

	for _, follower := range out.Followers {
		if follower.FID == fid || (follower.User != nil && follower.User.FID == fid) {
			return true, nil
		}
	}
	return false, nil
}

type userResponse struct {
	User struct {
		FID         int64  `json:"fid"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		PfpURL      string `json:"pfp_url"`
		Pfp         *struct {
			URL string `json:"url"`
		} `json:"pfp,omitempty"`
	} `json:"user"`
}

// GetUserProfile never fails; nil means the profile is unknown.
func (c *Client) GetUserProfile(ctx context.Context, fid int64) *models.Profile {
	endpoint := c.cfg.BaseURL + "/v2/farcaster/user?fid=" + strconv.FormatInt(fid, 10)

	var out userResponse
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		log.Warnf("[Neynar] Error getting user info for fid %d: %v", fid, err)
		return nil
	}

	pfp := out.User.PfpURL
	if pfp == "" && out.User.Pfp != nil {
		pfp = out.User.Pfp.URL
	}
	return &models.Profile{
		FID:         fid,
		Username:    out.User.Username,
		DisplayName: out.User.DisplayName,
		PfpURL:      pfp,
	}
}

type optInEvent struct {
	EventType string `json:"event_type"`
	FID       int64  `json:"fid"`
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyOptInEvent posts the opt-in to the configured event URL. Failures
// are logged and swallowed.
func (c *Client) NotifyOptInEvent(ctx context.Context, fid int64, address string, timestampMs int64) {
	if c.cfg.EventURL == "" {
		return
	}
	payload, err := json.Marshal(optInEvent{
		EventType: optInEventType,
		FID:       fid,
		Address:   address,
		Timestamp: timestampMs,
	})
	if err != nil {
		log.Errorf("[Neynar] Error encoding opt-in event: %v", err)
		return
	}

	if err := c.do(ctx, http.MethodPost, c.cfg.EventURL, bytes.NewReader(payload), nil); err != nil {
		log.Errorf("[Neynar] Error sending webhook notification for fid %d: %v", fid, err)
		return
	}
	log.Infof("[Neynar] Sent opt-in notification for fid %d", fid)
}

// NotifyOptInEventAsync runs NotifyOptInEvent in the background with its
// own deadline so the caller's request is never held up.
func (c *Client) NotifyOptInEventAsync(o models.OptIn) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		c.NotifyOptInEvent(ctx, o.FID, o.Address, o.Timestamp)
	}()
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, truncate(string(data), 256))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: undecodable response: %v", ErrUnavailable, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package neynar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Channel:    "vibes",
		EventURL:   srv.URL + "/f/app/test/event",
		RatePerSec: 100,
		Timeout:    time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestIsChannelMember(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/farcaster/channel/vibes/followers", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("api_key"))
		if r.URL.Query().Get("with_fid") == "10" {
			_, _ = w.Write([]byte(`{"followers":[{"fid":3},{"fid":10}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"followers":[{"fid":3}]}`))
	}, nil)

	member, err := client.IsChannelMember(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = client.IsChannelMember(context.Background(), 11)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestIsChannelMember_NestedUserShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"followers":[{"object":"follower","user":{"fid":21}}]}`))
	}, nil)

	member, err := client.IsChannelMember(context.Background(), 21)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestIsChannelMember_APIFailure(t *testing.T) {
	failing := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	t.Run("fallback disabled surfaces the error", func(t *testing.T) {
		client := newTestClient(t, failing, nil)
		member, err := client.IsChannelMember(context.Background(), 4)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, member)
	})

	t.Run("fallback enabled uses parity", func(t *testing.T) {
		client := newTestClient(t, failing, func(c *Config) { c.MembershipFallback = true })

		even, err := client.IsChannelMember(context.Background(), 4)
		require.NoError(t, err)
		assert.True(t, even)

		odd, err := client.IsChannelMember(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, odd)
	})
}

func TestGetUserProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("fid") {
		case "3":
			_, _ = w.Write([]byte(`{"user":{"fid":3,"username":"dwr","display_name":"Dan Romero","pfp_url":"https://img/3"}}`))
		case "4":
			_, _ = w.Write([]byte(`{"user":{"fid":4,"username":"v","display_name":"V","pfp":{"url":"https://img/4"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, nil)

	p := client.GetUserProfile(context.Background(), 3)
	require.NotNil(t, p)
	assert.Equal(t, "dwr", p.Username)
	assert.Equal(t, "Dan Romero", p.DisplayName)
	assert.Equal(t, "https://img/3", p.PfpURL)

	p = client.GetUserProfile(context.Background(), 4)
	require.NotNil(t, p)
	assert.Equal(t, "https://img/4", p.PfpURL)

	assert.Nil(t, client.GetUserProfile(context.Background(), 5))
}

func TestNotifyOptInEvent(t *testing.T) {
	var received atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/f/app/test/event", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received.Store(body)
		w.WriteHeader(http.StatusOK)
	}, nil)

	client.NotifyOptInEvent(context.Background(), 9, "0xabc", 1700000000000)

	body, ok := received.Load().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "opt_in", body["event_type"])
	assert.Equal(t, float64(9), body["fid"])
	assert.Equal(t, "0xabc", body["address"])
	assert.Equal(t, float64(1700000000000), body["timestamp"])
}

func TestNotifyOptInEvent_FailureIsSwallowed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	assert.NotPanics(t, func() {
		client.NotifyOptInEvent(context.Background(), 9, "", 1)
	})
}

func TestNotifyOptInEvent_DisabledWithoutURL(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, func(c *Config) { c.EventURL = "" })

	client.NotifyOptInEvent(context.Background(), 1, "", 1)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/farcaster"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

const testAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func newTestStore(t *testing.T) (*kv.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := kv.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// fakeVerifier maps hex message bytes to canned interactions.
type fakeVerifier struct {
	interactions map[string]*farcaster.Interaction
	err          error
	panicOn      string
}

func (f *fakeVerifier) VerifySignedInteraction(ctx context.Context, hex string) (*farcaster.Interaction, error) {
	if hex == f.panicOn {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	if i, ok := f.interactions[hex]; ok {
		return i, nil
	}
	return nil, farcaster.ErrInvalidSignature
}

type fakeMembers struct {
	mu      sync.Mutex
	members map[int64]bool
	err     error
	calls   int
}

func (f *fakeMembers) IsChannelMember(ctx context.Context, fid int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.members[fid], nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[int64]*models.Profile
	inFlight int
	maxSeen  int
}

func (f *fakeProfiles) GetUserProfile(ctx context.Context, fid int64) *models.Profile {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	p := f.profiles[fid]
	f.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return p
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

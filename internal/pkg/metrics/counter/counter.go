package counter

import (
	"context"
	"sort"
	"strconv"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

// ScreenViewsKey is the Redis hash of frame screen impressions. Unlike the
// Prometheus counters these survive restarts and are shared by all replicas.
const ScreenViewsKey = "frame:counters:screens"

// ScreenCount is one row of the impressions table.
type ScreenCount struct {
	Screen string
	Count  int64
}

// Counter keeps persistent impression counts.
type Counter struct {
	store *kv.Store
}

func New(store *kv.Store) *Counter {
	return &Counter{store: store}
}

// AddScreenView increments the impression counter for a screen.
func (c *Counter) AddScreenView(ctx context.Context, screen string) error {
	return c.store.HashIncrBy(ctx, ScreenViewsKey, screen, 1)
}

// ScreenViews returns all counters, highest first.
func (c *Counter) ScreenViews(ctx context.Context) ([]ScreenCount, error) {
	data, err := c.store.HashGetAll(ctx, ScreenViewsKey)
	if err != nil {
		return nil, err
	}

	out := make([]ScreenCount, 0, len(data))
	for screen, raw := range data {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, ScreenCount{Screen: screen, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Screen < out[j].Screen
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

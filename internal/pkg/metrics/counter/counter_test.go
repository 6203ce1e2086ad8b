package counter

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

func TestScreenViews(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()
	c := New(store)
	ctx := context.Background()

	empty, err := c.ScreenViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, c.AddScreenView(ctx, "entry"))
	require.NoError(t, c.AddScreenView(ctx, "entry"))
	require.NoError(t, c.AddScreenView(ctx, "success"))
	mr.HSet(ScreenViewsKey, "garbage", "x")

	views, err := c.ScreenViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ScreenCount{
		{Screen: "entry", Count: 2},
		{Screen: "success", Count: 1},
	}, views)
}

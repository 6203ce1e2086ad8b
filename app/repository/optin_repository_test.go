package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

const testAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

// steppingClock returns a clock that advances 1s on every call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func TestRecordThenHasOptedIn(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewOptInRepository(store)
	ctx := context.Background()

	for _, fid := range []int64{1, 2, 977233} {
		assert.False(t, repo.HasOptedIn(ctx, fid))
		require.True(t, repo.RecordOptIn(ctx, fid, testAddress))
		assert.True(t, repo.HasOptedIn(ctx, fid))
	}
	assert.Equal(t, int64(3), repo.CountOptIns(ctx))
}

func TestRecordOptIn_StoresHashAndIndex(t *testing.T) {
	store, mr := newTestStore(t)
	now := time.UnixMilli(1700000000000)
	repo := NewOptInRepository(store, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.True(t, repo.RecordOptIn(ctx, 42, testAddress))

	assert.Equal(t, "42", mr.HGet("optins:42", "fid"))
	assert.Equal(t, testAddress, mr.HGet("optins:42", "address"))
	assert.Equal(t, "1700000000000", mr.HGet("optins:42", "timestamp"))

	score, err := mr.ZScore(models.OptInIndexKey, "42")
	require.NoError(t, err)
	assert.Equal(t, float64(1700000000000), score)

	got, ok := repo.Get(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, models.OptIn{FID: 42, Address: testAddress, Timestamp: 1700000000000}, *got)
}

func TestRecordOptIn_FirstWriteWins(t *testing.T) {
	store, mr := newTestStore(t)
	var hooked []models.OptIn
	repo := NewOptInRepository(store,
		WithClock(steppingClock(time.UnixMilli(1700000000000))),
		WithRecordedHook(func(_ context.Context, o models.OptIn) { hooked = append(hooked, o) }),
	)
	ctx := context.Background()

	require.True(t, repo.RecordOptIn(ctx, 5, testAddress))
	require.True(t, repo.RecordOptIn(ctx, 5, "0x0000000000000000000000000000000000000000"))

	assert.Equal(t, testAddress, mr.HGet("optins:5", "address"))
	members, err := mr.ZMembers(models.OptInIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, members)
	require.Len(t, hooked, 1)
	assert.Equal(t, testAddress, hooked[0].Address)
}

func TestRecordOptIn_ConcurrentSameUserSingleIndexEntry(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewOptInRepository(store, WithClock(steppingClock(time.UnixMilli(1700000000000))))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, repo.RecordOptIn(ctx, 77, testAddress))
		}()
	}
	wg.Wait()

	members, err := mr.ZMembers(models.OptInIndexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"77"}, members)
}

func TestRecordOptIn_StoreDownReturnsFalse(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewOptInRepository(store)
	mr.Close()

	assert.False(t, repo.RecordOptIn(context.Background(), 1, testAddress))
	assert.False(t, repo.HasOptedIn(context.Background(), 1))
	assert.Empty(t, repo.ListOptIns(context.Background(), 10, 0))
}

func TestRecordOptIn_FailedWriteLeavesNoRecord(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewOptInRepository(store)
	ctx := context.Background()

	// an index key of the wrong type makes the index write fail
	require.NoError(t, mr.Set(models.OptInIndexKey, "not-a-zset"))

	assert.False(t, repo.RecordOptIn(ctx, 6, testAddress))
	assert.False(t, mr.Exists(models.OptInKey(6)))
	assert.False(t, repo.HasOptedIn(ctx, 6))

	mr.Del(models.OptInIndexKey)
	require.True(t, repo.RecordOptIn(ctx, 6, testAddress))
	got, ok := repo.Get(ctx, 6)
	require.True(t, ok)
	assert.Equal(t, testAddress, got.Address)
	assert.Equal(t, int64(1), repo.CountOptIns(ctx))
}

func TestRecordOptIn_ExistingRecordIsNotReindexed(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewOptInRepository(store)
	ctx := context.Background()

	mr.HSet(models.OptInKey(8), "fid", "8", "address", testAddress, "timestamp", "1")

	assert.True(t, repo.RecordOptIn(ctx, 8, "0x0000000000000000000000000000000000000000"))
	assert.Equal(t, testAddress, mr.HGet(models.OptInKey(8), "address"))
	assert.False(t, mr.Exists(models.OptInIndexKey))
}

func TestListOptIns_Pagination(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewOptInRepository(store, WithClock(steppingClock(time.UnixMilli(1700000000000))))
	ctx := context.Background()

	for fid := int64(1); fid <= 5; fid++ {
		require.True(t, repo.RecordOptIn(ctx, fid, testAddress))
	}

	first := repo.ListOptIns(ctx, 2, 0)
	second := repo.ListOptIns(ctx, 2, 2)
	require.Len(t, first, 2)
	require.Len(t, second, 2)

	all := append(append([]models.OptIn{}, first...), second...)
	seen := make(map[int64]struct{})
	for i, o := range all {
		_, dup := seen[o.FID]
		assert.False(t, dup, "fid %d returned twice", o.FID)
		seen[o.FID] = struct{}{}
		if i > 0 {
			assert.Greater(t, all[i-1].Timestamp, o.Timestamp)
		}
	}
	assert.Equal(t, []int64{5, 4, 3, 2}, []int64{all[0].FID, all[1].FID, all[2].FID, all[3].FID})
}

func TestListOptIns_SkipsIndexEntriesWithoutRecord(t *testing.T) {
	store, mr := newTestStore(t)
	repo := NewOptInRepository(store, WithClock(steppingClock(time.UnixMilli(1700000000000))))
	ctx := context.Background()

	require.True(t, repo.RecordOptIn(ctx, 1, ""))
	_, err := mr.ZAdd(models.OptInIndexKey, 1800000000000, "999")
	require.NoError(t, err)

	list := repo.ListOptIns(ctx, 10, 0)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].FID)
	assert.False(t, list[0].HasAddress())
}

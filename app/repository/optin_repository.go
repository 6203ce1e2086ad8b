package repository

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

// OptInOption customizes an opt-in repository.
type OptInOption func(*optInRepository)

// WithRecordedHook registers fn to run after an opt-in was newly written.
// It is not called for duplicates.
func WithRecordedHook(fn func(ctx context.Context, o models.OptIn)) OptInOption {
	return func(r *optInRepository) {
		r.onRecorded = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) OptInOption {
	return func(r *optInRepository) {
		r.now = now
	}
}

type optInRepository struct {
	store      *kv.Store
	now        func() time.Time
	onRecorded func(ctx context.Context, o models.OptIn)
}

// NewOptInRepository creates the ledger on store.
func NewOptInRepository(store *kv.Store, opts ...OptInOption) OptInRepository {
	r := &optInRepository{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *optInRepository) HasOptedIn(ctx context.Context, fid int64) bool {
	data, err := r.store.HashGetAll(ctx, models.OptInKey(fid))
	if err != nil {
		log.Errorf("[OptIn] Error checking opt-in status for fid %d: %v", fid, err)
		return false
	}
	return len(data) > 0
}

// recordOptInScript writes the index entry and the record together, or
// nothing when the fid already has a record. The index is written first so
// a failing ZADD leaves no record behind.
// KEYS[1] record hash, KEYS[2] index; ARGV fid, address, timestamp.
var recordOptInScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[1])
redis.call("HSET", KEYS[1], "fid", ARGV[1], "address", ARGV[2], "timestamp", ARGV[3])
return 1
`)

// RecordOptIn keeps the first write for a fid. Concurrent or repeated
// submissions are treated as success without touching the stored record.
func (r *optInRepository) RecordOptIn(ctx context.Context, fid int64, address string) bool {
	optIn := models.OptIn{
		FID:       fid,
		Address:   address,
		Timestamp: r.now().UnixMilli(),
	}
	fields := optIn.ToHash()

	res, err := r.store.RunScript(ctx, recordOptInScript,
		[]string{models.OptInKey(fid), models.OptInIndexKey},
		fields["fid"], fields["address"], fields["timestamp"])
	if err != nil {
		log.Errorf("[OptIn] Error storing opt-in for fid %d: %v", fid, err)
		return false
	}
	if created, _ := res.(int64); created == 0 {
		log.Infof("[OptIn] fid %d already recorded, keeping first write", fid)
		return true
	}

	log.Infof("[OptIn] Recorded fid %d (address set: %t)", fid, optIn.HasAddress())
	if r.onRecorded != nil {
		r.onRecorded(ctx, optIn)
	}
	return true
}

func (r *optInRepository) Get(ctx context.Context, fid int64) (*models.OptIn, bool) {
	data, err := r.store.HashGetAll(ctx, models.OptInKey(fid))
	if err != nil {
		log.Errorf("[OptIn] Error loading opt-in for fid %d: %v", fid, err)
		return nil, false
	}
	optIn, ok := models.OptInFromHash(data)
	if !ok {
		return nil, false
	}
	return &optIn, true
}

// ListOptIns returns newest first. Index entries without a record are
// skipped, not repaired.
func (r *optInRepository) ListOptIns(ctx context.Context, limit, offset int) []models.OptIn {
	fids, err := r.store.SortedSetRangeByScoreDesc(ctx, models.OptInIndexKey, int64(offset), int64(limit))
	if err != nil {
		log.Errorf("[OptIn] Error getting all opt-ins: %v", err)
		return []models.OptIn{}
	}
	if len(fids) == 0 {
		return []models.OptIn{}
	}

	cmds := make([]*redis.MapStringStringCmd, len(fids))
	err = r.store.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, fid := range fids {
			cmds[i] = pipe.HGetAll(ctx, models.OptInKeyPrefix+fid)
		}
		return nil
	})
	if err != nil {
		log.Errorf("[OptIn] Error resolving opt-in records: %v", err)
		return []models.OptIn{}
	}

	optIns := make([]models.OptIn, 0, len(fids))
	for i, cmd := range cmds {
		optIn, ok := models.OptInFromHash(cmd.Val())
		if !ok {
			log.Warnf("[OptIn] Index entry %s has no record, skipping", fids[i])
			continue
		}
		optIns = append(optIns, optIn)
	}
	return optIns
}

func (r *optInRepository) CountOptIns(ctx context.Context) int64 {
	n, err := r.store.SortedSetCard(ctx, models.OptInIndexKey)
	if err != nil {
		log.Errorf("[OptIn] Error counting opt-ins: %v", err)
		return 0
	}
	return n
}

package repository

import (
	"context"
	"encoding/json"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

// OptInRepository is the opt-in ledger. Read methods swallow store errors
// (logged) and return zero values; RecordOptIn reports failure as false.
type OptInRepository interface {
	HasOptedIn(ctx context.Context, fid int64) bool
	RecordOptIn(ctx context.Context, fid int64, address string) bool
	Get(ctx context.Context, fid int64) (*models.OptIn, bool)
	ListOptIns(ctx context.Context, limit, offset int) []models.OptIn
	CountOptIns(ctx context.Context) int64
}

// WebhookRepository is the bounded log of inbound webhook notifications.
type WebhookRepository interface {
	Append(ctx context.Context, payload json.RawMessage) (*models.WebhookEvent, error)
	Recent(ctx context.Context, limit int) []models.WebhookEvent
	Count(ctx context.Context) int64
}

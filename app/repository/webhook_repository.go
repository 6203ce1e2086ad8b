package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

type webhookRepository struct {
	store *kv.Store
	now   func() time.Time
}

// NewWebhookRepository creates the webhook event log on store.
func NewWebhookRepository(store *kv.Store) WebhookRepository {
	return &webhookRepository{
		store: store,
		now:   time.Now,
	}
}

// Append pushes the event to the head of the log and trims the tail so at
// most models.WebhookEventsMax entries remain.
func (r *webhookRepository) Append(ctx context.Context, payload json.RawMessage) (*models.WebhookEvent, error) {
	event := &models.WebhookEvent{
		ID:         uuid.New().String(),
		ReceivedAt: r.now().UnixMilli(),
		Payload:    payload,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	err = r.store.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, models.WebhookEventsKey, data)
		pipe.LTrim(ctx, models.WebhookEventsKey, 0, models.WebhookEventsMax-1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log webhook event: %w", err)
	}
	return event, nil
}

// Recent returns up to limit events, newest first.
func (r *webhookRepository) Recent(ctx context.Context, limit int) []models.WebhookEvent {
	if limit <= 0 {
		return []models.WebhookEvent{}
	}
	items, err := r.store.ListRange(ctx, models.WebhookEventsKey, 0, int64(limit-1))
	if err != nil {
		log.Errorf("[Webhook] Error fetching webhook events: %v", err)
		return []models.WebhookEvent{}
	}

	events := make([]models.WebhookEvent, 0, len(items))
	for _, item := range items {
		var ev models.WebhookEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			log.Warnf("[Webhook] Skipping undecodable event: %v", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

func (r *webhookRepository) Count(ctx context.Context) int64 {
	n, err := r.store.ListLen(ctx, models.WebhookEventsKey)
	if err != nil {
		log.Errorf("[Webhook] Error counting webhook events: %v", err)
		return 0
	}
	return n
}

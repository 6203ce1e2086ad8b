package repository

import (
	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

// Repositories groups every repository so controllers get one dependency.
type Repositories struct {
	OptIn   OptInRepository
	Webhook WebhookRepository
}

// NewRepositories builds all repositories on top of one store connection.
func NewRepositories(store *kv.Store, opts ...OptInOption) *Repositories {
	return &Repositories{
		OptIn:   NewOptInRepository(store, opts...),
		Webhook: NewWebhookRepository(store),
	}
}

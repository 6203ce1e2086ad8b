package models

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

const (
	WebhookEventsKey = "webhook:events"
	// WebhookEventsMax is the number of events kept in the log.
	WebhookEventsMax = 1000
)

// WebhookEvent is one notification received from Neynar. Payload is kept
// verbatim; ReceivedAt and ID are added by us.
type WebhookEvent struct {
	ID         string          `json:"id"`
	ReceivedAt int64           `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (e WebhookEvent) ReceivedTime() time.Time {
	return time.UnixMilli(e.ReceivedAt)
}

// EventType looks for the event name in the shapes Neynar uses.
func (e WebhookEvent) EventType() string {
	for _, path := range []string{"event_type", "type"} {
		if v := gjson.GetBytes(e.Payload, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// FID returns the user fid mentioned by the payload, or 0.
func (e WebhookEvent) FID() int64 {
	for _, path := range []string{"fid", "data.fid", "data.author.fid", "data.user.fid"} {
		if v := gjson.GetBytes(e.Payload, path); v.Exists() && v.Int() != 0 {
			return v.Int()
		}
	}
	return 0
}

// PrettyPayload is the indented raw payload for display.
func (e WebhookEvent) PrettyPayload() string {
	return gjson.GetBytes(e.Payload, "@pretty").Raw
}

package views

import (
	"strconv"

	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics/counter"
)

// DashboardTemplate and DashboardLayout are the names passed to c.Render.
const (
	DashboardTemplate = "admin/dashboard"
	DashboardLayout   = "layouts/main"
)

// EventRow is one webhook event prepared for the dashboard.
type EventRow struct {
	ID         string
	EventType  string
	FID        string
	ReceivedAt int64
	Pretty     string
}

// DashboardData is everything the dashboard template renders.
type DashboardData struct {
	Title          string
	Channel        string
	Stats          models.OptInStats
	StoredOptIns   int64
	StoredEvents   int64
	Events         []EventRow
	OptIns         []models.OptInWithProfile
	ScreenViews    []counter.ScreenCount
	S3ExportActive bool
}

// NewEventRows converts stored events for display.
func NewEventRows(events []models.WebhookEvent) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		fid := "N/A"
		if v := e.FID(); v != 0 {
			fid = strconv.FormatInt(v, 10)
		}
		rows = append(rows, EventRow{
			ID:         e.ID,
			EventType:  orDefault(e.EventType(), "Unknown"),
			FID:        fid,
			ReceivedAt: e.ReceivedAt,
			Pretty:     e.PrettyPayload(),
		})
	}
	return rows
}

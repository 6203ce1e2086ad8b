package statistics

import (
	"time"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

// RecentWindow is the span counted as "last 24 hours".
const RecentWindow = 24 * time.Hour

// Summarize computes the dashboard numbers over the given opt-ins.
func Summarize(optIns []models.OptIn, now time.Time) models.OptInStats {
	stats := models.OptInStats{Total: len(optIns)}
	cutoff := now.Add(-RecentWindow).UnixMilli()
	for _, o := range optIns {
		if o.HasAddress() {
			stats.WithAddress++
		}
		if o.Timestamp > cutoff {
			stats.Last24Hours++
		}
	}
	return stats
}

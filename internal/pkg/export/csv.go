package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

// FileName is the download name of the opt-in export.
const FileName = "vibes-airdrop-optins.csv"

// Header is the first CSV row.
var Header = []string{"FID", "Username", "Display Name", "Wallet Address", "Timestamp"}

// WriteOptInsCSV writes one row per opt-in. Timestamps are RFC 3339 in UTC.
func WriteOptInsCSV(w io.Writer, rows []models.OptInWithProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.FID, 10),
			r.Username,
			r.DisplayName,
			r.Address,
			r.Time().UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

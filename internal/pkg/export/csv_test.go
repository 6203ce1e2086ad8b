package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/VibesDrop/app/models"
)

func TestWriteOptInsCSV(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rows := []models.OptInWithProfile{
		models.EnrichOptIn(models.OptIn{FID: 3, Address: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", Timestamp: ts.UnixMilli()},
			&models.Profile{Username: "dwr", DisplayName: "Dan, Romero"}),
		models.EnrichOptIn(models.OptIn{FID: 9, Timestamp: ts.UnixMilli()}, nil),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOptInsCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"3", "dwr", "Dan, Romero", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", "2026-03-01T12:30:00Z"}, records[1])
	assert.Equal(t, []string{"9", "Unknown", "Unknown User", "", "2026-03-01T12:30:00Z"}, records[2])
}

func TestWriteOptInsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOptInsCSV(&buf, nil))
	assert.Equal(t, "FID,Username,Display Name,Wallet Address,Timestamp\n", buf.String())
}

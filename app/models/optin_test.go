package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptInHashRoundTrip(t *testing.T) {
	in := OptIn{FID: 42, Address: "0x1111111111111111111111111111111111111111", Timestamp: 1700000000000}

	out, ok := OptInFromHash(in.ToHash())
	assert.True(t, ok)
	assert.Equal(t, in, out)
	assert.True(t, out.HasAddress())
	assert.Equal(t, "optins:42", OptInKey(42))
}

func TestOptInFromHash_Invalid(t *testing.T) {
	_, ok := OptInFromHash(nil)
	assert.False(t, ok)

	_, ok = OptInFromHash(map[string]string{"fid": "abc"})
	assert.False(t, ok)
}

func TestEnrichOptIn(t *testing.T) {
	o := OptIn{FID: 7}

	row := EnrichOptIn(o, nil)
	assert.Equal(t, "Unknown", row.Username)
	assert.Equal(t, "Unknown User", row.DisplayName)

	row = EnrichOptIn(o, &Profile{FID: 7, Username: "dwr", DisplayName: "Dan", PfpURL: "https://img"})
	assert.Equal(t, "dwr", row.Username)
	assert.Equal(t, "Dan", row.DisplayName)
	assert.Equal(t, "https://img", row.PfpURL)
	assert.Equal(t, int64(7), row.FID)
}

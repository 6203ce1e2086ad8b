package models

import (
	"strconv"
	"strings"
	"time"
)

// Redis keys for the opt-in ledger.
const (
	OptInKeyPrefix = "optins:"
	OptInIndexKey  = "optins:all"
)

// OptIn is one user's airdrop opt-in. It is written once and never changed.
type OptIn struct {
	FID       int64  `json:"fid"`
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"` // ms since epoch
}

// OptInKey returns the hash key holding the record for fid.
func OptInKey(fid int64) string {
	return OptInKeyPrefix + strconv.FormatInt(fid, 10)
}

// HasAddress reports whether a wallet address was supplied.
func (o OptIn) HasAddress() bool {
	return strings.HasPrefix(o.Address, "0x")
}

func (o OptIn) Time() time.Time {
	return time.UnixMilli(o.Timestamp)
}

// ToHash is the field map stored in Redis.
func (o OptIn) ToHash() map[string]string {
	return map[string]string{
		"fid":       strconv.FormatInt(o.FID, 10),
		"address":   o.Address,
		"timestamp": strconv.FormatInt(o.Timestamp, 10),
	}
}

// OptInFromHash decodes a stored record. ok is false for an empty or
// malformed hash.
func OptInFromHash(data map[string]string) (OptIn, bool) {
	if len(data) == 0 {
		return OptIn{}, false
	}
	fid, err := strconv.ParseInt(data["fid"], 10, 64)
	if err != nil {
		return OptIn{}, false
	}
	ts, _ := strconv.ParseInt(data["timestamp"], 10, 64)
	return OptIn{
		FID:       fid,
		Address:   data["address"],
		Timestamp: ts,
	}, true
}

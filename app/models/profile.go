package models

// Profile is the subset of a Farcaster user we show on the dashboard.
type Profile struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
}

// OptInWithProfile is an opt-in row enriched for the admin dashboard.
type OptInWithProfile struct {
	OptIn
	Username    string
	DisplayName string
	PfpURL      string
}

// EnrichOptIn merges a profile (which may be nil) into the row.
func EnrichOptIn(o OptIn, p *Profile) OptInWithProfile {
	row := OptInWithProfile{
		OptIn:       o,
		Username:    "Unknown",
		DisplayName: "Unknown User",
	}
	if p == nil {
		return row
	}
	if p.Username != "" {
		row.Username = p.Username
	}
	if p.DisplayName != "" {
		row.DisplayName = p.DisplayName
	}
	row.PfpURL = p.PfpURL
	return row
}

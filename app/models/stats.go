package models

// OptInStats are the headline numbers on the admin dashboard.
type OptInStats struct {
	Total       int `json:"total"`
	WithAddress int `json:"with_address"`
	Last24Hours int `json:"last_24_hours"`
}

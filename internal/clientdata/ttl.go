package clientdata

import "time"

// TTLs added to now when storing to calculate expires_at.
const (
	// Company profiles change rarely (shares outstanding, market cap basis)
	TTLProfile = 7 * 24 * time.Hour

	// Guidance is reissued at most a few times a quarter
	TTLGuidance = 24 * time.Hour

	// Calendar rows gain actuals on report day
	TTLCalendar = 30 * time.Minute

	// Prices
	TTLPrevClose = 12 * time.Hour
	TTLSnapshot  = 5 * time.Minute
)

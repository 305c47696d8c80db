package models

// LeaderboardEntry is one row of the public ranking. TotalFootprint is the
// user's lifetime sum in kg CO2e, rounded to two decimals for presentation.
type LeaderboardEntry struct {
	Username       string  `json:"username"`
	TotalFootprint float64 `json:"totalFootprint"`
}

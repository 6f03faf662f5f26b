package entities

import "time"

// ScoreLedgerEntry is the cumulative per-user, per-chat score row. Totals
// only ever grow; every finished game adds its points and bumps the games
// counter.
type ScoreLedgerEntry struct {
	UserID      int64
	ChatID      int64
	Username    string
	TotalPoints int
	GamesPlayed int
	LastPlayed  time.Time
}

// AveragePoints returns the mean points per game, guarding against a zero
// games counter.
func (e ScoreLedgerEntry) AveragePoints() float64 {
	if e.GamesPlayed == 0 {
		return 0
	}
	return float64(e.TotalPoints) / float64(e.GamesPlayed)
}

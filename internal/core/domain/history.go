package domain

import "time"

// RouteHistoryEntry is one recorded route computation. Kept for operational
// auditing only; route results themselves are never replayed from history.
type RouteHistoryEntry struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	Start       Point         `json:"start"`
	End         Point         `json:"end"`
	Travel      TravelType    `json:"travel"`
	Succeeded   bool          `json:"succeeded"`
	Features    int           `json:"features"`
	Duration    time.Duration `json:"duration"`
	RequestedAt time.Time     `json:"requested_at"`
}

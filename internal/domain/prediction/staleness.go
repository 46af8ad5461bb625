package prediction

import "time"

// DefaultStalenessWindow is the freshness threshold for cached prediction
// records.
const DefaultStalenessWindow = 24 * time.Hour

// IsFresh decides whether a stored record may be reused. It returns false
// unconditionally when a refresh is forced, and true only while the record's
// age is strictly inside the window. Pure function; callers inject now.
func IsFresh(createdAt time.Time, forceRefresh bool, now time.Time, window time.Duration) bool {
	if forceRefresh {
		return false
	}
	if createdAt.IsZero() {
		return false
	}
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return now.Sub(createdAt) < window
}

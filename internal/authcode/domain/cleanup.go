package domain

import "time"

// CleanupResult summarises one cleanup run.
type CleanupResult struct {
	ExpiredDeleted int64
	UsedDeleted    int64
	StartedAt      time.Time
	Elapsed        time.Duration
}

// Count is the total number of records removed.
func (r CleanupResult) Count() int64 {
	return r.ExpiredDeleted + r.UsedDeleted
}

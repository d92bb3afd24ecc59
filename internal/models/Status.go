package models

import "time"

// Status is the read-only view served by the health query.
type Status struct {
	ServerTime       time.Time
	Snapshot         *TimerSnapshot
	LastNotifiedDate string
	PendingDate      string
}

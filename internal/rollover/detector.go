// Package rollover decides, from two consecutive observations of the client's
// timer, whether a day ended and whether its summary is still owed.
//
// Rollover is detected by comparing snapshot dates, never by reading a clock:
// the client's local date is authoritative.
package rollover

import "studymail/internal/models"

// Observe folds the current snapshot into the detector state.
//
// The returned request, if any, must be dispatched by the caller. Only after a
// confirmed dispatch should the caller call MarkNotified on the returned state;
// otherwise the same request is returned again on the next observation.
func Observe(current models.TimerSnapshot, state models.DetectorState) (models.DetectorState, *models.NotificationRequest) {
	next := state.Clone()

	if state.LastSnapshot == nil {
		next.LastSnapshot = &current
		return next, nil
	}

	last := *state.LastSnapshot
	switch {
	case current.Date != last.Date:
		if state.LastNotifiedDate != last.Date {
			closing := last.Closing()
			next.Pending = &closing
		}
		next.LastSnapshot = &current
	case current != last:
		next.LastSnapshot = &current
	}

	return next, owed(&next)
}

// owed returns the pending request unless it was already delivered, in which
// case the stale entry is dropped from the state.
func owed(state *models.DetectorState) *models.NotificationRequest {
	if state.Pending == nil {
		return nil
	}
	if state.Pending.Date == state.LastNotifiedDate {
		state.Pending = nil
		return nil
	}
	req := *state.Pending
	return &req
}

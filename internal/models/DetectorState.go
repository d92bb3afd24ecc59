package models

// DetectorState is the rollover detector's bookkeeping between poll cycles.
//
// LastNotifiedDate is empty until the first confirmed dispatch. Pending holds
// the closing values of a day whose notification is owed but not confirmed yet,
// so a failed dispatch is retried after LastSnapshot has moved on.
type DetectorState struct {
	LastSnapshot     *TimerSnapshot       `json:"last_snapshot"`
	LastNotifiedDate string               `json:"last_sent_for_date,omitempty"`
	Pending          *NotificationRequest `json:"pending,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s DetectorState) Clone() DetectorState {
	out := DetectorState{LastNotifiedDate: s.LastNotifiedDate}
	if s.LastSnapshot != nil {
		snap := *s.LastSnapshot
		out.LastSnapshot = &snap
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return out
}

func (s DetectorState) Equal(o DetectorState) bool {
	if s.LastNotifiedDate != o.LastNotifiedDate {
		return false
	}
	if (s.LastSnapshot == nil) != (o.LastSnapshot == nil) {
		return false
	}
	if s.LastSnapshot != nil && *s.LastSnapshot != *o.LastSnapshot {
		return false
	}
	if (s.Pending == nil) != (o.Pending == nil) {
		return false
	}
	return s.Pending == nil || *s.Pending == *o.Pending
}

// MarkNotified records a confirmed dispatch for date and clears a matching pending entry.
func (s *DetectorState) MarkNotified(date string) {
	s.LastNotifiedDate = date
	if s.Pending != nil && s.Pending.Date == date {
		s.Pending = nil
	}
}

// PendingDate returns the date of the owed notification, or "" if none.
func (s DetectorState) PendingDate() string {
	if s.Pending == nil {
		return ""
	}
	return s.Pending.Date
}

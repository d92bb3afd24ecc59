package models

// TimerSnapshot is the latest state uploaded by the study timer client.
// Date is client-assigned and names the day the counters belong to.
type TimerSnapshot struct {
	Date           string `json:"date" validate:"required"`
	ElapsedSeconds int64  `json:"today_on_seconds" validate:"min:0"`
	RewardUnits    int64  `json:"coins" validate:"min:0"`
}

// NotificationRequest carries the closing values of a finished day.
type NotificationRequest struct {
	Date  string `json:"date"`
	Secs  int64  `json:"secs"`
	Coins int64  `json:"coins"`
}

func (s TimerSnapshot) Closing() NotificationRequest {
	return NotificationRequest{
		Date:  s.Date,
		Secs:  s.ElapsedSeconds,
		Coins: s.RewardUnits,
	}
}

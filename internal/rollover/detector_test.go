package rollover

import (
	"studymail/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(date string, secs, coins int64) models.TimerSnapshot {
	return models.TimerSnapshot{Date: date, ElapsedSeconds: secs, RewardUnits: coins}
}

func stateWith(s models.TimerSnapshot, notified string) models.DetectorState {
	return models.DetectorState{LastSnapshot: &s, LastNotifiedDate: notified}
}

func TestObserve_FirstRunSeedsWithoutNotification(t *testing.T) {
	current := snap("2024-01-01", 100, 2)

	next, req := Observe(current, models.DetectorState{})

	assert.Nil(t, req)
	require.NotNil(t, next.LastSnapshot)
	assert.Equal(t, current, *next.LastSnapshot)
	assert.Empty(t, next.LastNotifiedDate)
	assert.Nil(t, next.Pending)
}

func TestObserve_FirstRunWithNewDateStillSilent(t *testing.T) {
	_, req := Observe(snap("2024-03-09", 0, 0), models.DetectorState{LastNotifiedDate: "2024-03-08"})
	assert.Nil(t, req)
}

func TestObserve_SameDayUpdatesCounters(t *testing.T) {
	state := stateWith(snap("2024-01-01", 100, 2), "")

	next, req := Observe(snap("2024-01-01", 150, 3), state)

	assert.Nil(t, req)
	require.NotNil(t, next.LastSnapshot)
	assert.Equal(t, int64(150), next.LastSnapshot.ElapsedSeconds)
	assert.Equal(t, int64(3), next.LastSnapshot.RewardUnits)
}

func TestObserve_SameDayUnchangedIsNoop(t *testing.T) {
	state := stateWith(snap("2024-01-01", 100, 2), "2023-12-31")

	next, req := Observe(snap("2024-01-01", 100, 2), state)

	assert.Nil(t, req)
	assert.True(t, next.Equal(state))
}

func TestObserve_SameDayDoesNotAliasInput(t *testing.T) {
	original := snap("2024-01-01", 100, 2)
	state := stateWith(original, "")

	next, _ := Observe(snap("2024-01-01", 200, 4), state)
	next.LastSnapshot.ElapsedSeconds = 999

	assert.Equal(t, int64(100), state.LastSnapshot.ElapsedSeconds)
}

func TestObserve_Idempotent(t *testing.T) {
	state := stateWith(snap("2024-01-01", 100, 2), "")
	current := snap("2024-01-01", 120, 2)

	first, req1 := Observe(current, state)
	second, req2 := Observe(current, first)

	assert.Nil(t, req1)
	assert.Nil(t, req2)
	assert.True(t, first.Equal(second))
}

func TestObserve_RolloverEmitsClosingValues(t *testing.T) {
	state := stateWith(snap("2024-01-01", 3600, 5), "")
	current := snap("2024-01-02", 0, 0)

	next, req := Observe(current, state)

	require.NotNil(t, req)
	assert.Equal(t, models.NotificationRequest{Date: "2024-01-01", Secs: 3600, Coins: 5}, *req)
	require.NotNil(t, next.LastSnapshot)
	assert.Equal(t, current, *next.LastSnapshot)
	assert.Empty(t, next.LastNotifiedDate, "detector never marks success itself")
}

func TestObserve_SuppressedDuplicate(t *testing.T) {
	state := stateWith(snap("2024-01-01", 3600, 5), "2024-01-01")

	next, req := Observe(snap("2024-01-02", 10, 0), state)

	assert.Nil(t, req)
	assert.Nil(t, next.Pending)
	assert.Equal(t, "2024-01-02", next.LastSnapshot.Date)
}

func TestObserve_RetryAfterFailedDispatch(t *testing.T) {
	state := stateWith(snap("2024-01-01", 3600, 5), "")
	current := snap("2024-01-02", 0, 0)

	afterFailure, req := Observe(current, state)
	require.NotNil(t, req)

	// dispatch failed: state is kept as returned
	retried, req2 := Observe(current, afterFailure)
	require.NotNil(t, req2)
	assert.Equal(t, "2024-01-01", req2.Date)
	assert.Equal(t, int64(3600), req2.Secs)

	// progress on the new day still flows while the retry is owed
	progressed, req3 := Observe(snap("2024-01-02", 60, 1), retried)
	require.NotNil(t, req3)
	assert.Equal(t, int64(60), progressed.LastSnapshot.ElapsedSeconds)
}

func TestObserve_AtMostOncePerDate(t *testing.T) {
	state := stateWith(snap("2024-01-01", 3600, 5), "")
	current := snap("2024-01-02", 0, 0)

	emitted := 0
	failures := 2
	for i := 0; i < 6; i++ {
		next, req := Observe(current, state)
		if req != nil {
			assert.Equal(t, "2024-01-01", req.Date)
			emitted++
			if failures > 0 {
				failures--
			} else {
				next.MarkNotified(req.Date)
			}
		}
		state = next
	}

	assert.Equal(t, 3, emitted)
	assert.Equal(t, "2024-01-01", state.LastNotifiedDate)
	assert.Nil(t, state.Pending)
}

func TestObserve_NewerRolloverReplacesUnconfirmedDay(t *testing.T) {
	state := stateWith(snap("2024-01-01", 3600, 5), "")

	next, req := Observe(snap("2024-01-02", 1200, 2), state)
	require.NotNil(t, req)

	next, req = Observe(snap("2024-01-03", 0, 0), next)
	require.NotNil(t, req)
	assert.Equal(t, models.NotificationRequest{Date: "2024-01-02", Secs: 1200, Coins: 2}, *req)
	assert.Equal(t, "2024-01-02", next.PendingDate())
}

func TestObserve_StalePendingDropped(t *testing.T) {
	s := snap("2024-01-02", 10, 0)
	state := models.DetectorState{
		LastSnapshot:     &s,
		LastNotifiedDate: "2024-01-01",
		Pending:          &models.NotificationRequest{Date: "2024-01-01", Secs: 1, Coins: 1},
	}

	next, req := Observe(s, state)

	assert.Nil(t, req)
	assert.Nil(t, next.Pending)
}

func TestObserve_ReplayOfHandledTransition(t *testing.T) {
	// restart replays the pre-rollover state after success was recorded
	state := stateWith(snap("2024-01-01", 3600, 5), "")
	next, req := Observe(snap("2024-01-02", 0, 0), state)
	require.NotNil(t, req)
	next.MarkNotified(req.Date)

	replayed := stateWith(snap("2024-01-01", 3600, 5), next.LastNotifiedDate)
	_, req = Observe(snap("2024-01-02", 0, 0), replayed)
	assert.Nil(t, req)
}

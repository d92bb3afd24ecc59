package services

import (
	"context"
	"errors"
	"fmt"
	"studymail/internal/models"
	"studymail/internal/notifier"
	"studymail/internal/providers"
	"studymail/internal/rollover"
	"studymail/internal/tracker/interfaces"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type WatcherServiceInterface interface {
	RunCycle(ctx context.Context) error
	Upload(snapshot models.TimerSnapshot) error
	Status() models.Status
	ForceSend(ctx context.Context, now time.Time) (string, error)
}

// WatcherService owns the store and the notifier and runs the rollover
// detector over them.
type WatcherService struct {
	store    interfaces.StoreInterface
	notifier notifier.NotifierInterface
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	now      func() time.Time
}

// RunCycle performs one poll: read the snapshot, observe it, dispatch what is
// owed and persist the detector state if it changed. Errors are returned for
// the caller to log; none of them leaves the state inconsistent.
func (ws *WatcherService) RunCycle(ctx context.Context) error {
	current, ok := ws.store.LoadSnapshot()
	if !ok {
		ws.metrics.IncPollCycles(providers.OutcomeIdle)
		return nil
	}

	prev, ok := ws.store.LoadState()
	if !ok {
		prev = &models.DetectorState{}
	}

	next, req := rollover.Observe(*current, *prev)
	if prev.Pending != nil && next.Pending != nil && prev.Pending.Date != next.Pending.Date && prev.Pending.Date != next.LastNotifiedDate {
		ws.logger.Warnf(providers.TypeWatcher, "Summary for %s was never delivered and is superseded by %s", prev.Pending.Date, next.Pending.Date)
	}

	var dispatchErr error
	if req != nil {
		dispatchErr = ws.dispatch(ctx, *req)
		if dispatchErr == nil {
			next.MarkNotified(req.Date)
		}
	}

	var saveErr error
	if !next.Equal(*prev) {
		saveErr = ws.store.SaveState(next)
		if saveErr != nil {
			ws.logger.Errorf(providers.TypeWatcher, "Unable to persist detector state: %s", saveErr)
		}
	}

	switch {
	case dispatchErr != nil || saveErr != nil:
		ws.metrics.IncPollCycles(providers.OutcomeError)
	case req != nil:
		ws.metrics.IncPollCycles(providers.OutcomeNotified)
	default:
		ws.metrics.IncPollCycles(providers.OutcomeOK)
	}

	return errors.Join(dispatchErr, saveErr)
}

func (ws *WatcherService) dispatch(ctx context.Context, req models.NotificationRequest) error {
	id := uuid.NewString()
	ws.logger.Infof(providers.TypeWatcher, "Day %s closed (%d sec, %d coins), dispatching summary %s", req.Date, req.Secs, req.Coins, id)

	err := ws.notifier.Send(notifier.WithDispatchID(ctx, id), req)
	if err != nil {
		ws.metrics.IncDispatches(providers.OutcomeFailed)
		ws.logger.Errorf(providers.TypeWatcher, "Summary %s for %s failed, will retry next cycle: %s", id, req.Date, err)
		if !errors.Is(err, models.ErrDelivery) {
			err = fmt.Errorf("%w: %w", models.ErrDelivery, err)
		}
		return err
	}

	ws.metrics.IncDispatches(providers.OutcomeOK)
	ws.logger.Infof(providers.TypeWatcher, "Summary %s for %s delivered", id, req.Date)
	return nil
}

func (ws *WatcherService) Upload(snapshot models.TimerSnapshot) error {
	return ws.store.SaveSnapshot(snapshot)
}

func (ws *WatcherService) Status() models.Status {
	status := models.Status{ServerTime: ws.now()}
	if snap, ok := ws.store.LoadSnapshot(); ok {
		status.Snapshot = snap
	}
	if state, ok := ws.store.LoadState(); ok {
		status.LastNotifiedDate = state.LastNotifiedDate
		status.PendingDate = state.PendingDate()
	}
	return status
}

// ForceSend mails the current counters as if the server's current day had
// ended. It bypasses the detector and does not record the date as notified.
func (ws *WatcherService) ForceSend(ctx context.Context, now time.Time) (string, error) {
	snap, ok := ws.store.LoadSnapshot()
	if !ok {
		return "", fmt.Errorf("%w: no timer snapshot uploaded yet", models.ErrValidation)
	}

	today := now.Format(DateLayout)
	req := models.NotificationRequest{Date: today, Secs: snap.ElapsedSeconds, Coins: snap.RewardUnits}
	ws.logger.Infof(providers.TypeWatcher, "Force sending summary for %s", today)

	if err := ws.notifier.Send(notifier.WithDispatchID(ctx, uuid.NewString()), req); err != nil {
		ws.metrics.IncDispatches(providers.OutcomeFailed)
		return today, err
	}
	ws.metrics.IncDispatches(providers.OutcomeOK)
	return today, nil
}

func NewWatcherService(store interfaces.StoreInterface, n notifier.NotifierInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) WatcherServiceInterface {
	return &WatcherService{
		store:    store,
		notifier: n,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

package tracker

import (
	"context"
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"studymail/internal/providers"
	"studymail/internal/services"
	"studymail/internal/structures"
	"studymail/internal/tracker/interfaces"
	"time"
)

// cronLogger routes cron's own messages (skipped runs, recovered panics)
// into the watcher log.
type cronLogger struct {
	logger providers.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf(providers.TypeWatcher, "cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf(providers.TypeWatcher, "cron: %s %v: %s", msg, keysAndValues, err)
}

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.WatcherServiceInterface
	cron    *cron.Cron
	catchUp conc.WaitGroup
}

// Init starts the poll loop and returns at once. The first cycle runs right
// away in the background so a rollover missed while the process was down is
// not held back by a full interval. A cycle that outlasts the interval makes
// the next tick a no-op instead of overlapping it, and a panic inside a cycle
// is recovered so the loop keeps running.
func (s *Scheduler) Init() {
	cl := cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithLogger(cl))

	cycle := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		_ = s.RunOnce(context.Background())
	}))

	interval := s.config.Watcher.Interval
	s.cron.Schedule(cron.Every(interval), cycle)

	s.logger.Infof(providers.TypeWatcher, "Watching for day rollover every %s", interval)
	s.catchUp.Go(cycle.Run)
	s.cron.Start()
}

// Stop halts the schedule and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.catchUp.Wait()
}

// RunOnce runs a single poll cycle and logs its failure.
func (s *Scheduler) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
			s.logger.Errorf(providers.TypeWatcher, "%s", err)
		}
	}()

	start := time.Now()
	err = s.service.RunCycle(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeWatcher, "Poll cycle failed after %s: %s", time.Since(start), err)
		return err
	}
	s.logger.Debugf(providers.TypeWatcher, "Poll cycle done in %s", time.Since(start))
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.WatcherServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
	}
}

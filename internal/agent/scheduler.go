package agent

import (
	"context"
	"fmt"

	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/view"
	"github.com/robfig/cron/v3"
)

// cronLogger bridges cron's logger into the LoggerService.
type cronLogger struct {
	log log.LoggerService
}

func (cl cronLogger) Info(msg string, keysAndValues ...any) {
	cl.log.Debug("%s %v", msg, keysAndValues)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...any) {
	cl.log.Error("%s %v: %v", msg, keysAndValues, err)
}

// newScheduler runs job on spec, skipping a run while the previous one is
// still going.
func newScheduler(spec string, logger log.LoggerService, job func()) (*cron.Cron, error) {
	cl := cronLogger{log: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("invalid sync schedule '%s': %w", spec, err)
	}
	return c, nil
}

func (msa *MyStravaAgent) startScheduler(ctx context.Context) error {
	if msa.cfg.Sync.Schedule == "" {
		msa.log.Info("No sync schedule configured")
		return nil
	}

	logger := msa.log.Named("cron")
	c, err := newScheduler(msa.cfg.Sync.Schedule, logger, func() {
		msa.resync(ctx)
	})
	if err != nil {
		return err
	}

	msa.cron = c
	msa.cron.Start()
	logger.Info("Scheduled sync '%s'", msa.cfg.Sync.Schedule)
	return nil
}

func (msa *MyStravaAgent) resync(ctx context.Context) {
	if err := Resync(ctx, msa.view); err != nil {
		msa.log.Error("Scheduled sync failed: %v", err)
		return
	}
	msa.log.Info("Scheduled sync completed: %s", msa.view.Status().Message)
}

// Resync brings the controller up to date with upstream. An empty view gets
// the first sync; otherwise gear is refreshed before the new activities.
func Resync(ctx context.Context, ctrl *view.Controller) error {
	if ctrl.Len() == 0 {
		return ctrl.FirstSync(ctx)
	}
	if err := ctrl.SyncGears(ctx); err != nil {
		return err
	}
	return ctrl.SyncActivities(ctx)
}

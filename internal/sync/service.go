// Package sync keeps the local store in step with Strava and serves the
// stored records to the view controller.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/strava"
	"golang.org/x/sync/errgroup"
)

// Upstream is the part of the Strava client the service relies on.
type Upstream interface {
	Athlete(ctx context.Context) (strava.Athlete, error)
	Gear(ctx context.Context, id string) (strava.Gear, error)
	AllActivities(ctx context.Context, after time.Time) ([]strava.Activity, error)
	Activity(ctx context.Context, id int64) (strava.Activity, error)
}

type Config struct {
	// WithDescription fetches the detail of every synchronised activity to get
	// its description and calories. It costs one request per activity.
	WithDescription bool
	Concurrency     int
}

// Result summarises one synchronisation. Errors holds the failures that did
// not stop it.
type Result struct {
	Kind    string
	Fetched int
	Stored  int
	Removed int
	Errors  []error

	records []activity.Activity
}

// Records returns the stored records, in upstream order.
func (r Result) Records() []activity.Activity {
	return r.records
}

type Service struct {
	store    store.MetadataStore
	upstream Upstream
	log      log.LoggerService
	cfg      Config
	now      func() time.Time
}

func NewService(st store.MetadataStore, upstream Upstream, logger log.LoggerService, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		store:    st,
		upstream: upstream,
		log:      logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) Activities(ctx context.Context) ([]activity.Activity, error) {
	activities, err := s.store.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return models.Records(activities), nil
}

func (s *Service) Gears(ctx context.Context) ([]activity.Gear, error) {
	gears, err := s.store.ListGears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gears: %w", err)
	}
	return models.GearRecords(gears), nil
}

// RefreshActivity fetches the detail of one activity and stores it. An
// activity deleted upstream is reported as not found, without error.
func (s *Service) RefreshActivity(ctx context.Context, id int64) (activity.Activity, bool, error) {
	started := s.now()

	detail, err := s.upstream.Activity(ctx, id)
	if errors.Is(err, strava.ErrNotFound) {
		s.log.Warn("Activity %d no longer exists upstream", id)
		return activity.Activity{}, false, nil
	}
	if err != nil {
		return activity.Activity{}, false, err
	}

	model := toModel(detail)
	if err := s.store.UpsertActivities(ctx, []models.Activity{model}); err != nil {
		return activity.Activity{}, false, fmt.Errorf("failed to store activity %d: %w", id, err)
	}

	s.record(ctx, started, Result{Kind: models.SyncKindActivity, Fetched: 1, Stored: 1}, nil)
	return model.ToRecord(), true, nil
}

func (s *Service) DeleteActivity(ctx context.Context, id int64) error {
	if err := s.store.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}
	s.log.Info("Deleted activity %d", id)
	return nil
}

// SyncActivities pulls the activities started since the newest stored one.
func (s *Service) SyncActivities(ctx context.Context) ([]activity.Activity, error) {
	result, err := s.PullActivities(ctx)
	if err != nil {
		return nil, err
	}
	return result.Records(), nil
}

// PullActivities is SyncActivities with its full result.
func (s *Service) PullActivities(ctx context.Context) (Result, error) {
	started := s.now()
	result := Result{Kind: models.SyncKindActivities}

	after, ok, err := s.store.LatestActivityStart(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get latest activity: %w", err)
	}
	if ok {
		s.log.Debug("Fetching activities started after %s", after.Format(time.RFC3339))
	}

	result, err = s.pull(ctx, result, after)
	s.record(ctx, started, result, err)
	return result, err
}

// Rebuild pulls the whole history again, updates every stored activity and
// removes the ones deleted upstream.
func (s *Service) Rebuild(ctx context.Context) error {
	_, err := s.RebuildActivities(ctx)
	return err
}

// RebuildActivities is Rebuild with its full result.
func (s *Service) RebuildActivities(ctx context.Context) (Result, error) {
	started := s.now()

	result, err := s.pull(ctx, Result{Kind: models.SyncKindRebuild}, time.Time{})
	if err == nil {
		result.Removed, err = s.prune(ctx, result.records)
	}

	s.record(ctx, started, result, err)
	return result, err
}

func (s *Service) SyncGears(ctx context.Context) ([]activity.Gear, error) {
	_, gears, err := s.PullGears(ctx)
	if err != nil {
		return nil, err
	}
	return gears, nil
}

// PullGears replaces the stored gear with the athlete's current bikes and
// shoes.
func (s *Service) PullGears(ctx context.Context) (Result, []activity.Gear, error) {
	started := s.now()
	result := Result{Kind: models.SyncKindGears}

	gears, err := s.fetchGears(ctx)
	if err == nil {
		result.Fetched = len(gears)
		err = s.store.ReplaceGears(ctx, gears)
		if err != nil {
			err = fmt.Errorf("failed to store gears: %w", err)
		} else {
			result.Stored = len(gears)
		}
	}

	s.record(ctx, started, result, err)
	if err != nil {
		return result, nil, err
	}
	return result, models.GearRecords(gears), nil
}

// ProfileImage returns the URL of the athlete's profile picture.
func (s *Service) ProfileImage(ctx context.Context) (string, error) {
	athlete, err := s.upstream.Athlete(ctx)
	if err != nil {
		return "", err
	}
	return athlete.Profile, nil
}

// SyncRuns returns the most recent synchronisations.
func (s *Service) SyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	return s.store.ListSyncRuns(ctx, limit)
}

func (s *Service) pull(ctx context.Context, result Result, after time.Time) (Result, error) {
	summaries, err := s.upstream.AllActivities(ctx, after)
	if err != nil {
		return result, err
	}
	result.Fetched = len(summaries)

	if s.cfg.WithDescription {
		result.Errors = s.detail(ctx, summaries)
	}

	batch := make([]models.Activity, 0, len(summaries))
	for _, summary := range summaries {
		batch = append(batch, toModel(summary))
	}
	if err := s.store.UpsertActivities(ctx, batch); err != nil {
		return result, fmt.Errorf("failed to store activities: %w", err)
	}

	result.Stored = len(batch)
	result.records = models.Records(batch)
	s.log.Info("Stored %d activities (%d detail failures)", result.Stored, len(result.Errors))
	return result, nil
}

// detail replaces summaries by their detailed representation in place. An
// activity whose detail cannot be fetched keeps its summary.
func (s *Service) detail(ctx context.Context, summaries []strava.Activity) []error {
	errs := make([]error, len(summaries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range summaries {
		g.Go(func() error {
			detail, err := s.upstream.Activity(gctx, summaries[i].ID)
			if err != nil {
				s.log.Warn("Unable to fetch detail of activity %d: %v", summaries[i].ID, err)
				errs[i] = fmt.Errorf("activity %d: %w", summaries[i].ID, err)
				return nil
			}
			summaries[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}

func (s *Service) fetchGears(ctx context.Context) ([]models.Gear, error) {
	athlete, err := s.upstream.Athlete(ctx)
	if err != nil {
		return nil, err
	}

	ids := append(append([]string{}, athlete.Bikes...), athlete.Shoes...)
	gears := make([]models.Gear, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			gear, err := s.upstream.Gear(gctx, id)
			if err != nil {
				return err
			}
			gears[i] = toGearModel(gear)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return gears, nil
}

// prune deletes the stored activities missing from records.
func (s *Service) prune(ctx context.Context, records []activity.Activity) (int, error) {
	stored, err := s.store.ListActivities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list activities: %w", err)
	}

	if len(records) == 0 {
		if err := s.store.DeleteAllActivities(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear activities: %w", err)
		}
		return len(stored), nil
	}

	keep := make(map[int64]bool, len(records))
	for _, r := range records {
		keep[r.ID] = true
	}

	removed := 0
	for _, a := range stored {
		if keep[a.ID] {
			continue
		}
		if err := s.store.DeleteActivity(ctx, a.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return removed, fmt.Errorf("failed to delete activity %d: %w", a.ID, err)
		}
		removed++
	}
	return removed, nil
}

// record stores a sync run. Failing to do so is only logged.
func (s *Service) record(ctx context.Context, started time.Time, result Result, err error) {
	run := &models.SyncRun{
		Kind:       result.Kind,
		StartedAt:  started.UTC(),
		FinishedAt: s.now().UTC(),
		Fetched:    result.Fetched,
		Stored:     result.Stored,
		Failed:     len(result.Errors),
	}
	if err != nil {
		run.Error = err.Error()
	}

	if rerr := s.store.CreateSyncRun(ctx, run); rerr != nil {
		s.log.Warn("Unable to record %s sync: %v", result.Kind, rerr)
	}
}

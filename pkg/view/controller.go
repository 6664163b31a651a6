// Package view owns the state of the activity browser: the loaded records, the
// user's facet selections and everything derived from them.
package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/aggregate"
	"github.com/mwantia/mystrava/pkg/facet"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/query"
	"github.com/mwantia/mystrava/pkg/sortkey"
	"golang.org/x/sync/errgroup"
)

// Controller applies named operations to a State and recomputes the visible
// list, its ordering and its totals after each of them. Readers may run
// concurrently; mutations are applied one at a time.
type Controller struct {
	mutex sync.RWMutex

	source Source
	agg    *aggregate.Aggregator
	log    log.LoggerService
	now    func() time.Time

	state State
}

type Option func(*Controller)

func WithLogger(logger log.LoggerService) Option {
	return func(c *Controller) {
		c.log = logger
	}
}

// WithClock replaces the clock used as the default end of date ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func NewController(source Source, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		agg:    aggregate.New(),
		log:    log.NewNopLogger(),
		now:    time.Now,
		state:  newState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches activities and gear together, then seeds the gear totals. The
// profile picture is fetched alongside; failing to get it is not an error.
func (c *Controller) Load(ctx context.Context) error {
	c.begin()

	var (
		records []activity.Activity
		gears   []activity.Gear
		profile string
	)

	var pg errgroup.Group
	pg.Go(func() error {
		p, err := c.source.ProfileImage(ctx)
		if err != nil {
			c.log.Warn("Unable to fetch profile image: %v", err)
			return nil
		}
		profile = p
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = c.source.Activities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		gears, err = c.source.Gears(gctx)
		return err
	})

	err := g.Wait()
	_ = pg.Wait()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if profile != "" {
		c.state.profile = profile
	}
	if err != nil {
		return c.fail("load", err)
	}

	aggregate.DerivePace(records)
	c.reseed(gears, records)
	c.state.records = records
	c.state.loaded = true
	c.finish(StatusLoaded)

	c.log.Debug("Loaded %d activities and %d gears", len(records), len(gears))
	return nil
}

// FirstSync pulls gear and activities from upstream together and replaces the
// loaded records with the result. It is meant for an empty store.
func (c *Controller) FirstSync(ctx context.Context) error {
	c.begin()

	var (
		records []activity.Activity
		gears   []activity.Gear
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gears, err = c.source.SyncGears(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = c.source.SyncActivities(gctx)
		return err
	})
	err := g.Wait()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err != nil {
		return c.fail("first sync", err)
	}

	aggregate.DerivePace(records)
	c.reseed(gears, records)
	c.state.records = records
	c.state.loaded = true
	c.finish(StatusFirstSync)
	return nil
}

// SyncActivities pulls new activities from upstream and adds them to the list.
// Records that are already loaded are replaced.
func (c *Controller) SyncActivities(ctx context.Context) error {
	c.begin()

	records, err := c.source.SyncActivities(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err != nil {
		return c.fail("activity sync", err)
	}

	aggregate.DerivePace(records)
	c.agg.Annotate(records)
	for _, r := range records {
		c.upsert(r)
	}
	c.finish(StatusActivitiesUpdated)

	c.log.Debug("Synchronised %d activities", len(records))
	return nil
}

// SyncGears pulls the gear list from upstream and rebuilds the gear totals from
// the loaded activities.
func (c *Controller) SyncGears(ctx context.Context) error {
	c.begin()

	gears, err := c.source.SyncGears(ctx)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err != nil {
		return c.fail("gear sync", err)
	}

	c.reseed(gears, c.state.records)
	c.finish(StatusGearsUpdated)
	return nil
}

// RefreshActivity fetches one activity again. An activity that disappeared
// upstream leaves the list unchanged; one that was not loaded yet is added.
func (c *Controller) RefreshActivity(ctx context.Context, id int64) error {
	c.begin()

	record, found, err := c.source.RefreshActivity(ctx, id)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err != nil {
		return c.fail("activity refresh", err)
	}

	if found {
		records := []activity.Activity{record}
		aggregate.DerivePace(records)
		c.agg.Annotate(records)
		c.upsert(records[0])
	}
	c.finish(StatusActivityUpdated)
	return nil
}

// DeleteActivity deletes one activity and removes it from the list once the
// deletion is confirmed.
func (c *Controller) DeleteActivity(ctx context.Context, id int64) error {
	c.begin()

	err := c.source.DeleteActivity(ctx, id)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err != nil {
		return c.fail("activity deletion", err)
	}

	if i := c.state.indexOf(id); i >= 0 {
		c.agg.ApplyDelta(nil, []activity.Activity{c.state.records[i]})
		c.state.records = append(c.state.records[:i:i], c.state.records[i+1:]...)
	}
	c.finish(StatusActivityDeleted)
	return nil
}

// Rebuild pulls every activity again upstream, then reloads the list.
func (c *Controller) Rebuild(ctx context.Context) error {
	c.begin()

	err := c.source.Rebuild(ctx)
	if err != nil {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		return c.fail("rebuild", err)
	}

	c.done()
	if err := c.Load(ctx); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.state.message = StatusRebuilt
	return nil
}

// SetActivityType selects the sport type facet.
func (c *Controller) SetActivityType(tag activity.Tag) {
	c.update(func(s *Selection) { s.ActivityType = tag })
}

// SetCommutes includes or excludes commutes.
func (c *Controller) SetCommutes(with bool) {
	c.update(func(s *Selection) { s.WithCommutes = with })
}

// SetRetired includes or excludes retired gear from the gear rows.
func (c *Controller) SetRetired(with bool) {
	c.update(func(s *Selection) { s.WithRetired = with })
}

// SetDateRange selects the date facet from two raw user inputs.
func (c *Controller) SetDateRange(start, end string) {
	c.update(func(s *Selection) {
		s.StartDate = start
		s.EndDate = end
	})
}

// SetQuery compiles raw into the search predicate.
func (c *Controller) SetQuery(raw string) {
	c.update(func(s *Selection) { s.Query = raw })
}

// SetSort selects the sort column. Selecting the current column again flips
// the direction; a new column starts descending. Unknown columns are ignored.
func (c *Controller) SetSort(column string) {
	col, ok := sortkey.Parse(column)
	if !ok {
		return
	}
	c.update(func(s *Selection) {
		if s.SortColumn == col {
			s.Descending = !s.Descending
			return
		}
		s.SortColumn = col
		s.Descending = true
	})
}

// Select replaces the whole selection at once.
func (c *Controller) Select(sel Selection) {
	if _, ok := sortkey.Parse(string(sel.SortColumn)); !ok {
		sel.SortColumn = sortkey.DefaultColumn
	}
	if sel.ActivityType == "" {
		sel.ActivityType = activity.TagAll
	}
	c.update(func(s *Selection) { *s = sel })
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state.selection
}

// Visible returns a copy of the filtered and sorted activities.
func (c *Controller) Visible() []activity.Activity {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]activity.Activity{}, c.state.visible...)
}

// Gears returns the gear rows, without retired gear unless selected.
func (c *Controller) Gears() []aggregate.GearRow {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]aggregate.GearRow{}, facet.ByRetired(c.state.gears, c.state.selection.WithRetired)...)
}

// Totals returns the totals of the visible activities.
func (c *Controller) Totals() aggregate.Totals {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state.totals
}

func (c *Controller) Status() Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return Status{
		Message:    c.state.message,
		InProgress: c.state.pending > 0,
		Loaded:     c.state.loaded,
	}
}

// Profile returns the profile picture URL fetched by Load, if any.
func (c *Controller) Profile() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state.profile
}

// Len returns the number of loaded activities.
func (c *Controller) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.state.records)
}

// SpeedOrPace names the speed column: "Pace" when a paced sport is selected.
func (c *Controller) SpeedOrPace() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.state.selection.ActivityType.Paced() {
		return labelPace
	}
	return labelSpeed
}

func (c *Controller) update(fn func(*Selection)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	previous := c.state.selection.Query
	fn(&c.state.selection)
	if c.state.selection.Query != previous {
		c.state.predicate = query.Compile(c.state.selection.Query)
	}
	c.recompute()
}

// recompute derives the visible list, its order and its totals. The caller
// holds the write lock.
func (c *Controller) recompute() {
	sel := c.state.selection

	visible := facet.BySearch(c.state.records, c.state.predicate)
	visible = facet.ByActivityType(visible, sel.ActivityType, sel.WithCommutes)
	visible = facet.ByDateRange(visible, facet.ParseDateRange(sel.StartDate, sel.EndDate, c.now()))

	// Filters may return the records slice itself.
	visible = append(make([]activity.Activity, 0, len(visible)), visible...)
	sortkey.Sort(visible, sel.SortColumn, sel.Descending)

	c.state.visible = visible
	c.state.totals = aggregate.ComputeTotals(visible)
	c.state.gears = c.agg.Materialize()
}

// reseed replaces the known gear and accumulates records over it. The caller
// holds the write lock.
func (c *Controller) reseed(gears []activity.Gear, records []activity.Activity) {
	c.agg.Seed(gears)
	c.agg.ApplyDelta(records, nil)
	c.agg.Annotate(records)
}

func (c *Controller) upsert(record activity.Activity) {
	if i := c.state.indexOf(record.ID); i >= 0 {
		c.agg.ApplyDelta([]activity.Activity{record}, []activity.Activity{c.state.records[i]})
		c.state.records[i] = record
		return
	}
	c.agg.ApplyDelta([]activity.Activity{record}, nil)
	c.state.records = append(c.state.records, record)
}

func (c *Controller) begin() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.state.pending++
	c.state.message = StatusInProgress
}

func (c *Controller) done() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.state.pending > 0 {
		c.state.pending--
	}
}

// finish and fail end a remote operation. The caller holds the write lock.
func (c *Controller) finish(message string) {
	if c.state.pending > 0 {
		c.state.pending--
	}
	c.state.message = message
	c.recompute()
}

func (c *Controller) fail(operation string, err error) error {
	if c.state.pending > 0 {
		c.state.pending--
	}
	c.state.message = fmt.Sprintf("Update failed: %v", err)
	c.log.Error("Failed to complete %s: %v", operation, err)
	return fmt.Errorf("failed to complete %s: %w", operation, err)
}

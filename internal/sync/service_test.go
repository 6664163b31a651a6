package sync

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/db/store"
	"github.com/mwantia/mystrava/pkg/strava"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream only reads its maps, so concurrent detail calls are safe.
type fakeUpstream struct {
	athlete    strava.Athlete
	gears      map[string]strava.Gear
	activities []strava.Activity
	details    map[int64]strava.Activity
	failing    map[int64]bool

	after        time.Time
	detailCalls  atomic.Int32
	activitiesFn func(after time.Time) ([]strava.Activity, error)
}

func (f *fakeUpstream) Athlete(context.Context) (strava.Athlete, error) {
	return f.athlete, nil
}

func (f *fakeUpstream) Gear(_ context.Context, id string) (strava.Gear, error) {
	g, ok := f.gears[id]
	if !ok {
		return strava.Gear{}, strava.ErrNotFound
	}
	return g, nil
}

func (f *fakeUpstream) AllActivities(_ context.Context, after time.Time) ([]strava.Activity, error) {
	f.after = after
	if f.activitiesFn != nil {
		return f.activitiesFn(after)
	}
	out := make([]strava.Activity, len(f.activities))
	copy(out, f.activities)
	return out, nil
}

func (f *fakeUpstream) Activity(_ context.Context, id int64) (strava.Activity, error) {
	f.detailCalls.Add(1)
	if f.failing[id] {
		return strava.Activity{}, errors.New("boom")
	}
	a, ok := f.details[id]
	if !ok {
		return strava.Activity{}, strava.ErrNotFound
	}
	return a, nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "mystrava.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ride(id int64, name, start string) strava.Activity {
	return strava.Activity{
		ID:                 id,
		Name:               name,
		SportType:          "Ride",
		StartDate:          at(start),
		StartDateLocal:     at(start).Add(2 * time.Hour),
		GearID:             "b1",
		Distance:           42230,
		TotalElevationGain: 312.6,
		MovingTime:         5400,
		ElapsedTime:        6000,
		AverageSpeed:       7.8,
	}
}

func TestToModelConvertsUnits(t *testing.T) {
	a := ride(1, "Morning Ride", "2024-03-09T23:30:00Z")
	a.LocationCity = "Berlin"
	a.MaxHeartrate = 171.6
	a.AverageHeartrate = 140.4

	m := toModel(a)
	assert.Equal(t, 42.23, m.Distance)
	assert.Equal(t, 313.0, m.Elevation)
	assert.Equal(t, 28.1, m.AverageSpeed)
	assert.Equal(t, 5400, m.MovingTime)
	assert.Equal(t, 172, m.MaxHeartrate)
	assert.Equal(t, 140.0, m.AverageHeartrate)
	assert.Equal(t, "Berlin", m.Location)
	// The local start is already on the next day.
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), m.Date)

	rec := m.ToRecord()
	assert.Equal(t, "01:30", rec.MovingTime)
	assert.Equal(t, activity.SportType("Ride"), rec.SportType)
}

func TestPullActivities(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	up := &fakeUpstream{activities: []strava.Activity{
		ride(2, "Evening Ride", "2024-03-02T17:00:00Z"),
		ride(1, "Morning Ride", "2024-03-01T07:00:00Z"),
	}}
	svc := NewService(st, up, nil, Config{})

	result, err := svc.PullActivities(ctx)
	require.NoError(t, err)
	assert.True(t, up.after.IsZero())
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Stored)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Records(), 2)
	assert.Zero(t, up.detailCalls.Load())

	records, err := svc.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)

	up.activities = nil
	_, err = svc.SyncActivities(ctx)
	require.NoError(t, err)
	assert.True(t, up.after.Equal(at("2024-03-02T17:00:00Z")))

	runs, err := svc.SyncRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, models.SyncKindActivities, runs[0].Kind)
	assert.Empty(t, runs[0].Error)
}

func TestPullActivitiesWithDescription(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	detailed := ride(1, "Morning Ride", "2024-03-01T07:00:00Z")
	detailed.Description = "Windy"
	detailed.Calories = 950

	up := &fakeUpstream{
		activities: []strava.Activity{
			ride(1, "Morning Ride", "2024-03-01T07:00:00Z"),
			ride(2, "Evening Ride", "2024-03-02T17:00:00Z"),
		},
		details: map[int64]strava.Activity{1: detailed},
		failing: map[int64]bool{2: true},
	}
	svc := NewService(st, up, nil, Config{WithDescription: true, Concurrency: 2})

	result, err := svc.PullActivities(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), up.detailCalls.Load())
	assert.Equal(t, 2, result.Stored)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "activity 2")

	got, err := st.GetActivity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Windy", got.Description)
	assert.Equal(t, 950.0, got.Calories)

	runs, err := svc.SyncRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Failed)
}

func TestPullActivitiesUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	up := &fakeUpstream{activitiesFn: func(time.Time) ([]strava.Activity, error) {
		return nil, strava.ErrUnauthorized
	}}
	svc := NewService(st, up, nil, Config{})

	_, err := svc.SyncActivities(ctx)
	assert.ErrorIs(t, err, strava.ErrUnauthorized)

	runs, err := svc.SyncRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].Error)
}

func TestRefreshActivity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	renamed := ride(1, "Renamed", "2024-03-01T07:00:00Z")
	renamed.GearID = "b2"
	up := &fakeUpstream{details: map[int64]strava.Activity{1: renamed}}
	svc := NewService(st, up, nil, Config{})

	rec, ok, err := svc.RefreshActivity(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Renamed", rec.Name)
	assert.Equal(t, "b2", rec.GearID)

	stored, err := st.GetActivity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)

	_, ok, err = svc.RefreshActivity(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteActivity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.UpsertActivities(ctx, []models.Activity{toModel(ride(1, "Ride", "2024-03-01T07:00:00Z"))}))
	svc := NewService(st, &fakeUpstream{}, nil, Config{})

	require.NoError(t, svc.DeleteActivity(ctx, 1))
	_, err := st.GetActivity(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteActivity(ctx, 1), store.ErrNotFound)
}

func TestRebuildRemovesDeletedActivities(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.UpsertActivities(ctx, []models.Activity{
		toModel(ride(1, "Old", "2024-03-01T07:00:00Z")),
		toModel(ride(2, "Gone", "2024-03-02T07:00:00Z")),
	}))

	up := &fakeUpstream{activities: []strava.Activity{ride(1, "Renamed", "2024-03-01T07:00:00Z")}}
	svc := NewService(st, up, nil, Config{})

	result, err := svc.RebuildActivities(ctx)
	require.NoError(t, err)
	assert.True(t, up.after.IsZero())
	assert.Equal(t, 1, result.Removed)

	records, err := svc.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Renamed", records[0].Name)

	up.activities = nil
	result, err = svc.RebuildActivities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	records, err = svc.Activities(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, svc.Rebuild(ctx))
}

func TestPullGears(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	up := &fakeUpstream{
		athlete: strava.Athlete{Bikes: []string{"b1", "b2"}, Shoes: []string{"g1"}, Profile: "https://example.org/me.jpg"},
		gears: map[string]strava.Gear{
			"b1": {ID: "b1", Name: "Canyon", FrameType: 3},
			"b2": {ID: "b2", Name: "Old MTB", FrameType: 1, Retired: true},
			"g1": {ID: "g1", Name: "Pegasus", Shoe: true},
		},
	}
	svc := NewService(st, up, nil, Config{})

	gears, err := svc.SyncGears(ctx)
	require.NoError(t, err)
	require.Len(t, gears, 3)

	stored, err := svc.Gears(ctx)
	require.NoError(t, err)
	byID := map[string]activity.Gear{}
	for _, g := range stored {
		byID[g.ID] = g
	}
	assert.Equal(t, "Road", byID["b1"].Type)
	assert.Equal(t, "MTB", byID["b2"].Type)
	assert.True(t, byID["b2"].Retired)
	assert.Equal(t, "Run", byID["g1"].Type)

	profile, err := svc.ProfileImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/me.jpg", profile)
}

func TestPullGearsKeepsStoredGearOnFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.ReplaceGears(ctx, []models.Gear{{ID: "b1", Name: "Canyon", Kind: models.GearKindBike}}))

	up := &fakeUpstream{athlete: strava.Athlete{Bikes: []string{"missing"}}}
	svc := NewService(st, up, nil, Config{})

	_, err := svc.SyncGears(ctx)
	assert.ErrorIs(t, err, strava.ErrNotFound)

	stored, err := svc.Gears(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Canyon", stored[0].Name)
}

func TestTokenPersistence(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	configured := strava.Token{AccessToken: "a", RefreshToken: "r"}

	token, err := LoadToken(ctx, st, configured)
	require.NoError(t, err)
	assert.Equal(t, configured, token)

	refreshed := strava.Token{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: 1700000000}
	require.NoError(t, PersistToken(st)(ctx, refreshed))

	token, err = LoadToken(ctx, st, configured)
	require.NoError(t, err)
	assert.Equal(t, refreshed, token)
}

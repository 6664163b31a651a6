package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "mystrava.db")})
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
	return t.UTC()
}

func activity(id int64, name, start string, distance float64) models.Activity {
	startDate := at(start)
	return models.Activity{
		ID:        id,
		Name:      name,
		StartDate: startDate,
		Date:      time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC),
		SportType: "Ride",
		GearID:    "b1",
		Distance:  distance,
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteConfig{})
	assert.Error(t, err)
}

func TestActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestActivityStart(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpsertActivities(ctx, []models.Activity{
		activity(1, "Old", "2023-05-01T08:00:00Z", 20),
		activity(3, "Newest", "2024-02-01T17:30:00Z", 12.5),
		activity(2, "Middle", "2023-11-11T09:15:00Z", 42),
	}))
	require.NoError(t, s.UpsertActivities(ctx, nil))

	list, err := s.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].ID, list[1].ID, list[2].ID})

	latest, ok, err := s.LatestActivityStart(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, latest.Equal(at("2024-02-01T17:30:00Z")))

	updated := activity(2, "Middle renamed", "2023-11-11T09:15:00Z", 43)
	require.NoError(t, s.UpsertActivities(ctx, []models.Activity{updated}))

	got, err := s.GetActivity(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Middle renamed", got.Name)
	assert.Equal(t, 43.0, got.Distance)

	require.NoError(t, s.DeleteActivity(ctx, 2))
	_, err = s.GetActivity(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteActivity(ctx, 2), ErrNotFound)

	require.NoError(t, s.DeleteAllActivities(ctx))
	list, err = s.ListActivities(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplaceGears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceGears(ctx, []models.Gear{
		{ID: "g1", Name: "Pegasus", Kind: models.GearKindShoe, Type: "Run"},
		{ID: "b2", Name: "Trek", Kind: models.GearKindBike, Type: "Road"},
		{ID: "b1", Name: "Canyon", Kind: models.GearKindBike, Type: "Gravel", Retired: true},
	}))

	gears, err := s.ListGears(ctx)
	require.NoError(t, err)
	require.Len(t, gears, 3)
	assert.Equal(t, []string{"b1", "b2", "g1"}, []string{gears[0].ID, gears[1].ID, gears[2].ID})
	assert.True(t, gears[0].Retired)

	require.NoError(t, s.ReplaceGears(ctx, []models.Gear{{ID: "b2", Name: "Trek", Kind: models.GearKindBike}}))
	gears, err = s.ListGears(ctx)
	require.NoError(t, err)
	assert.Len(t, gears, 1)

	require.NoError(t, s.ReplaceGears(ctx, nil))
	gears, err = s.ListGears(ctx)
	require.NoError(t, err)
	assert.Empty(t, gears)
}

func TestToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetToken(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveToken(ctx, &models.Token{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: 100}))
	require.NoError(t, s.SaveToken(ctx, &models.Token{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: 200}))

	token, err := s.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", token.AccessToken)
	assert.Equal(t, int64(200), token.ExpiresAt)
}

func TestSyncRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, kind := range []string{models.SyncKindGears, models.SyncKindActivities, models.SyncKindRebuild} {
		run := &models.SyncRun{Kind: kind, StartedAt: at("2024-01-01T00:00:00Z").Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateSyncRun(ctx, run))
	}

	runs, err := s.ListSyncRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, models.SyncKindRebuild, runs[0].Kind)
	assert.Equal(t, models.SyncKindActivities, runs[1].Kind)
}

func TestMigrationStatusAndRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	statuses, err := s.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.True(t, statuses[1].Applied)

	require.NoError(t, s.Rollback(ctx))
	assert.False(t, s.DB().Migrator().HasTable(&models.SyncRun{}))
	assert.True(t, s.DB().Migrator().HasTable(&models.Activity{}))

	statuses, err = s.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.False(t, statuses[1].Applied)

	// Migrating twice only applies what is pending.
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
	assert.True(t, s.DB().Migrator().HasTable(&models.SyncRun{}))
}

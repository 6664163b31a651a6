package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mwantia/mystrava/pkg/activity"
	"github.com/mwantia/mystrava/pkg/db/models"
	"github.com/mwantia/mystrava/pkg/log"
	"github.com/mwantia/mystrava/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mutex sync.Mutex

	records []activity.Activity
	gears   []activity.Gear
	synced  []activity.Activity
	err     error

	calls []string
}

func (f *fakeSource) call(name string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeSource) Activities(context.Context) ([]activity.Activity, error) {
	f.call("activities")
	return append([]activity.Activity{}, f.records...), nil
}

func (f *fakeSource) Gears(context.Context) ([]activity.Gear, error) {
	f.call("gears")
	return append([]activity.Gear{}, f.gears...), nil
}

func (f *fakeSource) RefreshActivity(_ context.Context, id int64) (activity.Activity, bool, error) {
	f.call("refresh")
	for _, r := range f.records {
		if r.ID == id {
			r.Name = "Refreshed"
			return r, true, nil
		}
	}
	return activity.Activity{}, false, nil
}

func (f *fakeSource) DeleteActivity(context.Context, int64) error {
	f.call("delete")
	return f.err
}

func (f *fakeSource) SyncActivities(context.Context) ([]activity.Activity, error) {
	f.call("sync-activities")
	if f.err != nil {
		return nil, f.err
	}
	return append([]activity.Activity{}, f.synced...), nil
}

func (f *fakeSource) SyncGears(context.Context) ([]activity.Gear, error) {
	f.call("sync-gears")
	if f.err != nil {
		return nil, f.err
	}
	return append([]activity.Gear{}, f.gears...), nil
}

func (f *fakeSource) Rebuild(context.Context) error {
	f.call("rebuild")
	return f.err
}

func (f *fakeSource) ProfileImage(context.Context) (string, error) {
	return "https://example.org/me.jpg", nil
}

type fakeRuns struct {
	limit int
}

func (f *fakeRuns) SyncRuns(_ context.Context, limit int) ([]models.SyncRun, error) {
	f.limit = limit
	return []models.SyncRun{{ID: 1, Kind: models.SyncKindActivities, Stored: 3}}, nil
}

func record(id int64, name string, sport activity.SportType, gear string, date string) activity.Activity {
	d, _ := time.Parse(time.DateOnly, date)
	return activity.Activity{
		ID:          id,
		Name:        name,
		SportType:   sport,
		GearID:      gear,
		Date:        d,
		Distance:    10,
		MovingTime:  "01:00",
		ElapsedTime: "01:10",
	}
}

func newFixture() *fakeSource {
	return &fakeSource{
		records: []activity.Activity{
			record(1, "Morning Ride", activity.Ride, "b1", "2024-03-01"),
			record(2, "Lunch Run", activity.Run, "g1", "2024-03-02"),
		},
		gears: []activity.Gear{
			{ID: "b1", Name: "Canyon", Type: "Road"},
			{ID: "g1", Name: "Pegasus", Type: "Run", Retired: true},
		},
	}
}

func newServer(t *testing.T, src *fakeSource) (*httptest.Server, *view.Controller, *fakeRuns) {
	t.Helper()

	ctrl := view.NewController(src)
	require.NoError(t, ctrl.Load(context.Background()))

	runs := &fakeRuns{}
	srv := httptest.NewServer(NewAPI(ctrl, runs, log.NewNopLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv, ctrl, runs
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPIActivities(t *testing.T) {
	srv, _, _ := newServer(t, newFixture())

	var resp activitiesResponse
	code := do(t, http.MethodGet, srv.URL+"/api/activities", "", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Speed", resp.SpeedOrPace)
	// Newest first by default.
	assert.Equal(t, int64(2), resp.Activities[0].ID)
	assert.Equal(t, "20.00", resp.Totals.Distance)
}

func TestAPISelection(t *testing.T) {
	srv, ctrl, _ := newServer(t, newFixture())

	var sel view.Selection
	code := do(t, http.MethodPut, srv.URL+"/api/selection", `{"activity_type":"Run"}`, &sel)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, activity.Tag("Run"), sel.ActivityType)
	// Fields missing from the body keep their value.
	assert.True(t, sel.WithCommutes)

	var resp activitiesResponse
	do(t, http.MethodGet, srv.URL+"/api/activities", "", &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Lunch Run", resp.Activities[0].Name)
	assert.Equal(t, "Pace", resp.SpeedOrPace)

	code = do(t, http.MethodPut, srv.URL+"/api/selection", `{"activity_type":`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, activity.Tag("Run"), ctrl.Selection().ActivityType)
}

func TestAPISort(t *testing.T) {
	srv, _, _ := newServer(t, newFixture())

	var sel view.Selection
	do(t, http.MethodPost, srv.URL+"/api/selection/sort/date", "", &sel)
	assert.False(t, sel.Descending)

	do(t, http.MethodPost, srv.URL+"/api/selection/sort/name", "", &sel)
	assert.Equal(t, "name", string(sel.SortColumn))
	assert.True(t, sel.Descending)

	do(t, http.MethodPost, srv.URL+"/api/selection/sort/unknown", "", &sel)
	assert.Equal(t, "name", string(sel.SortColumn))
}

func TestAPIGearsAndProfile(t *testing.T) {
	srv, ctrl, _ := newServer(t, newFixture())

	var rows []map[string]any
	do(t, http.MethodGet, srv.URL+"/api/gears", "", &rows)
	assert.Len(t, rows, 2)

	ctrl.SetRetired(false)
	do(t, http.MethodGet, srv.URL+"/api/gears", "", &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Canyon", rows[0]["name"])

	var profile map[string]string
	do(t, http.MethodGet, srv.URL+"/api/profile", "", &profile)
	assert.Equal(t, "https://example.org/me.jpg", profile["profile"])
}

func TestAPIMutations(t *testing.T) {
	src := newFixture()
	srv, ctrl, _ := newServer(t, src)

	var status statusResponse
	code := do(t, http.MethodPost, srv.URL+"/api/activities/1/refresh", "", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, view.StatusActivityUpdated, status.Message)
	assert.False(t, status.InProgress)

	code = do(t, http.MethodDelete, srv.URL+"/api/activities/2", "", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, view.StatusActivityDeleted, status.Message)
	assert.Equal(t, 1, ctrl.Len())

	code = do(t, http.MethodDelete, srv.URL+"/api/activities/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = do(t, http.MethodPost, srv.URL+"/api/sync/gears", "", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, view.StatusGearsUpdated, status.Message)

	src.synced = []activity.Activity{record(3, "Evening Ride", activity.Ride, "b1", "2024-03-03")}
	code = do(t, http.MethodPost, srv.URL+"/api/sync", "", &status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, view.StatusActivitiesUpdated, status.Message)
	assert.Equal(t, 2, ctrl.Len())
}

func TestAPIMutationFailure(t *testing.T) {
	src := newFixture()
	srv, _, _ := newServer(t, src)
	src.err = errors.New("upstream unavailable")

	var status statusResponse
	code := do(t, http.MethodPost, srv.URL+"/api/rebuild", "", &status)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, status.Error, "upstream unavailable")
	assert.Equal(t, "Update failed: upstream unavailable", status.Message)
	assert.False(t, status.InProgress)
}

func TestAPISyncRuns(t *testing.T) {
	srv, _, runs := newServer(t, newFixture())

	var out []models.SyncRun
	code := do(t, http.MethodGet, srv.URL+"/api/syncs?limit=5", "", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, runs.limit)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Stored)

	code = do(t, http.MethodGet, srv.URL+"/api/syncs?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestResync(t *testing.T) {
	ctx := context.Background()

	t.Run("empty view gets the first sync", func(t *testing.T) {
		src := newFixture()
		src.synced = src.records
		ctrl := view.NewController(src)

		require.NoError(t, Resync(ctx, ctrl))
		assert.Equal(t, 2, ctrl.Len())
		assert.Equal(t, view.StatusFirstSync, ctrl.Status().Message)
	})

	t.Run("loaded view syncs incrementally", func(t *testing.T) {
		src := newFixture()
		ctrl := view.NewController(src)
		require.NoError(t, ctrl.Load(ctx))

		src.synced = []activity.Activity{record(3, "Evening Ride", activity.Ride, "b1", "2024-03-03")}
		require.NoError(t, Resync(ctx, ctrl))
		assert.Equal(t, 3, ctrl.Len())
		assert.Equal(t, []string{"sync-gears", "sync-activities"}, src.calls[len(src.calls)-2:])
	})

	t.Run("failure stops before activities", func(t *testing.T) {
		src := newFixture()
		ctrl := view.NewController(src)
		require.NoError(t, ctrl.Load(ctx))

		src.err = errors.New("boom")
		assert.Error(t, Resync(ctx, ctrl))
		assert.Equal(t, "sync-gears", src.calls[len(src.calls)-1])
	})
}

func TestNewScheduler(t *testing.T) {
	_, err := newScheduler("not a schedule", log.NewNopLogger(), func() {})
	assert.Error(t, err)

	c, err := newScheduler("@every 1h", log.NewNopLogger(), func() {})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}

package gatekeep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const testTimeISO = "2024-01-01T00:00:00Z"

func newTestTracker(grid *fakeGrid) *Tracker {
	config := &Config{SheetID: "sheet", Range: DEFAULT_RANGE}
	var api GridAPI
	if grid != nil {
		api = grid
	}
	tracker := NewTracker(api, NewAttendanceCache(), config)
	tracker.now = func() time.Time { return testTime }
	return tracker
}

func TestSetCheckInRoundTrip(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Company"},
		{"Ana", "Acme"},
	})
	tracker := newTestTracker(grid)
	ctx := context.Background()

	result, err := tracker.SetCheckIn(ctx, 1, true, "", "")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.CheckedIn)
	assert.Equal(t, testTimeISO, result.CheckInTime)
	assert.Equal(t, 1, result.TotalCheckedIn)

	// Columns created at C and D, cells written on row 2.
	assert.Equal(t, STATUS_COLUMN_LABEL, grid.cell(0, 2))
	assert.Equal(t, TIME_COLUMN_LABEL, grid.cell(0, 3))
	assert.Equal(t, true, grid.cell(1, 2))
	assert.Equal(t, testTimeISO, grid.cell(1, 3))

	attendees, err := tracker.Attendees(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.True(t, attendees[0].CheckedIn)
	assert.Equal(t, testTimeISO, attendees[0].CheckInTime)
	assert.Equal(t, "Ana", attendees[0].StringField("name"))
	assert.Equal(t, "Acme", attendees[0].StringField("company"))

	// Check out again: status false, time cleared.
	result, err = tracker.SetCheckIn(ctx, 1, false, "", "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.CheckedIn)
	assert.Equal(t, "", result.CheckInTime)
	assert.Equal(t, 0, result.TotalCheckedIn)
	assert.Equal(t, false, grid.cell(1, 2))
	assert.Equal(t, "", grid.cell(1, 3))
	assert.Equal(t, 0, tracker.cache.Len())

	attendees, err = tracker.Attendees(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, attendees[0].CheckedIn)
	assert.Equal(t, "", attendees[0].CheckInTime)
}

func TestSetCheckInInvalidRow(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Check-In Status", "Check-In Time"},
		{"Ana", "", ""},
	})
	tracker := newTestTracker(grid)

	_, err := tracker.SetCheckIn(context.Background(), 5, true, "", "")
	assert.ErrorIs(t, err, ErrInvalidRow)

	_, err = tracker.SetCheckIn(context.Background(), 0, true, "", "")
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestSetCheckInDegradedWrite(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Check-In Status", "Check-In Time"},
		{"Ana", "", ""},
	})
	grid.updateErr = &RemoteError{Code: 400}
	tracker := newTestTracker(grid)

	result, err := tracker.SetCheckIn(context.Background(), 1, true, "", "")
	require.Error(t, err)

	// The remote write failed but the state was kept locally, and the
	// result says so.
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Warning)
	cached, ok := tracker.cache.Get(1)
	assert.True(t, ok, "non-auth failures still update the cache")
	assert.Equal(t, testTimeISO, cached)
}

func TestSetCheckInAuthFailureSkipsCache(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Check-In Status", "Check-In Time"},
		{"Ana", "", ""},
	})
	grid.updateErr = &RemoteError{Code: 401}
	tracker := newTestTracker(grid)

	result, err := tracker.SetCheckIn(context.Background(), 1, true, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	// A config problem must not be masked by false local state.
	assert.False(t, result.Success)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 0, tracker.cache.Len())
}

func TestSetCheckInColumnResolutionFailure(t *testing.T) {
	// Status column can be neither found nor created: every update
	// fails and the grid never grows one.
	grid := newFakeGrid([][]any{
		{"Name"},
		{"Ana"},
	})
	grid.updateErr = &RemoteError{Code: 400}
	tracker := newTestTracker(grid)

	_, err := tracker.SetCheckIn(context.Background(), 1, true, "", "")
	assert.ErrorIs(t, err, ErrColumnResolution)
}

func TestSyncFromSheetRebuildsCache(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Check-In Status", "Check-In Time"},
		{"Ana", true, "2024-01-01T09:00:00Z"},
		{"Bob", "Yes", ""},
		{"Cleo", false, "2024-01-01T10:00:00Z"},
		{"Dev", "", ""},
		{"Eve", "no", ""},
		{"Finn", float64(1), "2024-01-01T11:00:00Z"},
	})
	tracker := newTestTracker(grid)
	tracker.cache.CheckIn(99, "stale")

	synced, err := tracker.SyncFromSheet(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, 3, synced)
	assert.Equal(t, 3, tracker.cache.Len())

	v, _ := tracker.cache.Get(1)
	assert.Equal(t, "2024-01-01T09:00:00Z", v)

	// Checked in without a recorded time gets "now" as placeholder.
	v, _ = tracker.cache.Get(2)
	assert.Equal(t, testTimeISO, v)

	v, _ = tracker.cache.Get(6)
	assert.Equal(t, "2024-01-01T11:00:00Z", v)

	// Explicit false and the stale entry are gone.
	_, ok := tracker.cache.Get(3)
	assert.False(t, ok)
	_, ok = tracker.cache.Get(99)
	assert.False(t, ok)
}

func TestSyncFromSheetNoStatusColumn(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Company"},
		{"Ana", "Acme"},
	})
	tracker := newTestTracker(grid)

	_, err := tracker.SyncFromSheet(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrColumnResolution)
	assert.Equal(t, 0, grid.updateCalls, "resync must never create columns")
}

func TestSyncFromSheetEmptyGrid(t *testing.T) {
	tracker := newTestTracker(newFakeGrid(nil))

	_, err := tracker.SyncFromSheet(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestSummaryFromGrid(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Check-In Status", "Check-In Time"},
		{"Ana", true, "2024-01-01T09:00:00Z"},
		{"Bob", "", ""},
		{"Cleo", "checked", "2024-01-01T10:00:00Z"},
	})
	tracker := newTestTracker(grid)

	summary := tracker.Summary(context.Background(), "", "")

	assert.Equal(t, 2, summary.TotalCheckedIn)
	require.Len(t, summary.CheckIns, 2)
	assert.Equal(t, 1, summary.CheckIns[0].ID)
	assert.Equal(t, 3, summary.CheckIns[1].ID)
}

func TestSummaryFallsBackToCache(t *testing.T) {
	grid := newFakeGrid([][]any{{"Name"}})
	grid.fetchErr = &RemoteError{Code: 404}
	tracker := newTestTracker(grid)
	tracker.cache.CheckIn(2, "t2")

	summary := tracker.Summary(context.Background(), "", "")

	assert.Equal(t, 1, summary.TotalCheckedIn)
	require.Len(t, summary.CheckIns, 1)
	assert.Equal(t, 2, summary.CheckIns[0].ID)
}

func TestSearchSubstring(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Company"},
		{"Ana Lovelace", "Acme"},
		{"Bob Martin", "Globex"},
		{"Carol Danvers", "acme corp"},
	})
	tracker := newTestTracker(grid)
	ctx := context.Background()

	results, err := tracker.Search(ctx, "acme", "", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, 3, results[1].ID)

	results, err = tracker.Search(ctx, "MARTIN", "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].ID)

	results, err = tracker.Search(ctx, "  ", "", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchResultCap(t *testing.T) {
	rows := [][]any{{"Name", "Company"}}
	for i := 0; i < MAX_SEARCH_RESULTS+10; i++ {
		rows = append(rows, []any{"Guest", "Acme"})
	}
	tracker := newTestTracker(newFakeGrid(rows))

	results, err := tracker.Search(context.Background(), "guest", "", "")
	require.NoError(t, err)
	assert.Len(t, results, MAX_SEARCH_RESULTS)
}

func TestSearchNearMatchFallback(t *testing.T) {
	grid := newFakeGrid([][]any{
		{"Name", "Company"},
		{"Ana", "Acme"},
		{"Robert", "Globex"},
	})
	tracker := newTestTracker(grid)

	// "Anna" matches nothing as a substring but is one edit from "Ana".
	results, err := tracker.Search(context.Background(), "Anna", "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ID)
}

func TestDemoModeWithoutGrid(t *testing.T) {
	config := &Config{Range: DEFAULT_RANGE}
	tracker := NewTracker(nil, NewAttendanceCache(), config)
	tracker.now = func() time.Time { return testTime }
	ctx := context.Background()

	attendees, err := tracker.Attendees(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, attendees, len(demoRows))
	assert.False(t, attendees[0].CheckedIn)

	// Writes degrade to the cache with a warning.
	result, err := tracker.SetCheckIn(ctx, 1, true, "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Warning)

	attendees, err = tracker.Attendees(ctx, "", "")
	require.NoError(t, err)
	assert.True(t, attendees[0].CheckedIn)
	assert.Equal(t, testTimeISO, attendees[0].CheckInTime)

	summary := tracker.Summary(ctx, "", "")
	assert.Equal(t, 1, summary.TotalCheckedIn)
}

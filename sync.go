package gatekeep

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/mpratt/gatekeep/models"
)

// Tracker is the reconciliation core. It orchestrates check-in writes
// (grid first, cache second), full resyncs from the grid, and every
// read that projects grid rows into attendees.
//
// The grid is the source of truth; the cache only buffers state when
// the grid cannot take or serve it. All cache mutations happen inside
// the Tracker.
type Tracker struct {
	Webhook *WebhookNotifier // Optional check-in notification sink.
	Live    *Broadcaster     // Optional websocket fan-out.

	api    GridAPI
	cache  *AttendanceCache
	config *Config
	now    func() time.Time
}

// NewTracker creates a Tracker over the given grid client and cache.
// api may be nil, which puts the tracker into demo mode: reads serve
// sample data and writes degrade to the cache.
func NewTracker(api GridAPI, cache *AttendanceCache, config *Config) *Tracker {
	return &Tracker{
		api:    api,
		cache:  cache,
		config: config,
		now:    time.Now,
	}
}

// resolve applies the configured defaults to a per-request sheet id
// and range.
func (t *Tracker) resolve(sheetID, rng string) (string, string) {
	if sheetID == "" {
		sheetID = t.config.SheetID
	}
	if rng == "" {
		rng = t.config.Range
	}
	return sheetID, rng
}

// fetchRows fetches the full grid under the retry policy.
func (t *Tracker) fetchRows(ctx context.Context, sheetID, rng string) (rows [][]any, err error) {
	err = Retry(ctx, "fetch rows", func() error {
		rows, err = t.api.FetchRange(ctx, sheetID, rng)
		return err
	})
	return rows, err
}

// Attendees returns the projected attendees for the grid, or the demo
// roster when no grid is configured at all.
func (t *Tracker) Attendees(ctx context.Context, sheetID, rng string) ([]models.Attendee, error) {
	sheetID, rng = t.resolve(sheetID, rng)

	if sheetID == "" {
		if t.api == nil {
			return demoAttendees(t.cache), nil
		}
		return nil, ErrSheetIDRequired
	}
	if t.api == nil {
		return nil, ErrNotConfigured
	}

	rows, err := t.fetchRows(ctx, sheetID, rng)
	if err != nil {
		return nil, err
	}

	return ProjectAttendees(rows, t.cache, t.config.StrictHeaders), nil
}

// searchName and searchCompany pull the searchable fields out of an
// attendee, trying the header synonyms seen in real rosters.
func searchName(a *models.Attendee) string {
	for _, key := range []string{"name", "full_name", "attendee_name"} {
		if v := a.StringField(key); v != "" {
			return v
		}
	}
	return ""
}

func searchCompany(a *models.Attendee) string {
	for _, key := range []string{"company", "organization", "employer"} {
		if v := a.StringField(key); v != "" {
			return v
		}
	}
	return ""
}

// Search returns attendees whose name or company contains the query,
// case-insensitively, capped at MAX_SEARCH_RESULTS. When the substring
// match comes up empty, near matches within a small edit distance are
// returned instead, closest first, so a typo at the door still finds
// the guest.
func (t *Tracker) Search(ctx context.Context, query, sheetID, rng string) ([]models.Attendee, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Attendee{}, nil
	}

	attendees, err := t.Attendees(ctx, sheetID, rng)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	matches := make([]models.Attendee, 0, MAX_SEARCH_RESULTS)
	for _, a := range attendees {
		a := a
		name := strings.ToLower(searchName(&a))
		company := strings.ToLower(searchCompany(&a))
		if strings.Contains(name, queryLower) || strings.Contains(company, queryLower) {
			matches = append(matches, a)
			if len(matches) == MAX_SEARCH_RESULTS {
				return matches, nil
			}
		}
	}
	if len(matches) > 0 {
		return matches, nil
	}

	return nearMatches(attendees, queryLower), nil
}

// nearMatches ranks attendees by the minimum edit distance between the
// query and any word of their name or company.
func nearMatches(attendees []models.Attendee, queryLower string) []models.Attendee {
	type ranked struct {
		attendee models.Attendee
		distance int
	}

	var close []ranked
	for _, a := range attendees {
		a := a
		best := MAX_SEARCH_DISTANCE + 1
		words := strings.Fields(strings.ToLower(searchName(&a) + " " + searchCompany(&a)))
		for _, w := range words {
			d := levenshtein.DistanceForStrings([]rune(queryLower), []rune(w), levenshtein.DefaultOptions)
			if d < best {
				best = d
			}
		}
		if best <= MAX_SEARCH_DISTANCE {
			close = append(close, ranked{attendee: a, distance: best})
		}
	}

	sort.SliceStable(close, func(i, j int) bool { return close[i].distance < close[j].distance })

	matches := make([]models.Attendee, 0, len(close))
	for _, r := range close {
		matches = append(matches, r.attendee)
		if len(matches) == MAX_SEARCH_RESULTS {
			break
		}
	}
	return matches
}

// updateSheet performs the remote half of a check-in write: resolve
// the columns, validate the row, then write the status cell and, when
// enabled, the time cell, each under the retry policy.
func (t *Tracker) updateSheet(ctx context.Context, id int, checkedIn bool, checkInTime, sheetID, rng string) error {
	if t.api == nil {
		return ErrNotConfigured
	}

	pair, err := EnsureCheckInColumns(ctx, t.api, sheetID, rng, t.config.StrictHeaders, t.config.DisableTimeLogging)
	if err != nil {
		return err
	}
	if pair.Status == -1 {
		return ErrColumnResolution
	}

	rows, err := t.fetchRows(ctx, sheetID, rng)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrEmptySheet
	}
	if id < 1 || id >= len(rows) {
		return fmt.Errorf("%w: %d, sheet has %d data rows", ErrInvalidRow, id, len(rows)-1)
	}

	sheetName := SheetNameOf(rng)
	rowNumber := id + 1 // +1 for the header row.

	statusRef := CellRef(sheetName, pair.Status, rowNumber)
	err = Retry(ctx, "write status cell", func() error {
		return t.api.UpdateRange(ctx, sheetID, statusRef, [][]any{{checkedIn}})
	})
	if err != nil {
		return err
	}

	if pair.Time != -1 && !t.config.DisableTimeLogging {
		timeRef := CellRef(sheetName, pair.Time, rowNumber)
		err = Retry(ctx, "write time cell", func() error {
			return t.api.UpdateRange(ctx, sheetID, timeRef, [][]any{{checkInTime}})
		})
		if err != nil {
			return err
		}
	}

	log.Info().Int("Row", rowNumber).Bool("CheckedIn", checkedIn).Msg("Updated sheet check-in state.")

	return nil
}

// applyCache mirrors a check-in state change into the local cache.
func (t *Tracker) applyCache(id int, checkedIn bool, checkInTime string) {
	if checkedIn {
		t.cache.CheckIn(id, checkInTime)
	} else {
		t.cache.CheckOut(id)
	}
}

// SetCheckIn records a check-in or check-out for the given row id,
// grid first, cache second.
//
// On success the cache is updated to match and the aggregate count is
// re-derived from the grid (falling back to the cache size only when
// that re-read fails). On a remote failure that is not an
// authentication or permission problem, the state is still written to
// the cache and the result carries a warning, so the UI can tell
// "failed" from "saved locally, may not sync". Auth and permission
// failures never touch the cache: local state must not mask a
// configuration problem.
func (t *Tracker) SetCheckIn(ctx context.Context, id int, checkedIn bool, sheetID, rng string) (models.CheckInResult, error) {
	result := models.CheckInResult{CheckedIn: checkedIn}

	var checkInTime string
	if checkedIn {
		checkInTime = t.now().UTC().Format(time.RFC3339)
	}
	result.CheckInTime = checkInTime

	sheetID, rng = t.resolve(sheetID, rng)
	if sheetID == "" && t.api != nil {
		return result, ErrSheetIDRequired
	}

	if err := t.updateSheet(ctx, id, checkedIn, checkInTime, sheetID, rng); err != nil {
		if IsAuthError(err) {
			return result, err
		}

		log.Warn().Int("Id", id).Err(err).Msg("Sheet update failed, keeping local cache as fallback.")
		t.applyCache(id, checkedIn, checkInTime)
		result.Warning = "Check-in saved locally but may not be synced to sheet"

		return result, err
	}

	t.applyCache(id, checkedIn, checkInTime)
	result.Success = true

	if checkedIn && t.Webhook != nil {
		payload := map[string]any{
			"sheetName": SheetNameOf(rng),
			"rowIndex":  id + 1,
		}
		if err := t.Webhook.Notify(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("Check-in webhook notification failed.")
		}
	}

	t.Live.Publish(models.CheckInEvent{
		ID:          id,
		CheckedIn:   checkedIn,
		CheckInTime: checkInTime,
		SheetName:   SheetNameOf(rng),
		RowNumber:   id + 1,
	})

	// Recompute the aggregate from the grid rather than trusting the
	// cache size; the grid may have been edited externally.
	result.TotalCheckedIn = t.cache.Len()
	if attendees, err := t.Attendees(ctx, sheetID, rng); err == nil {
		total := 0
		for _, a := range attendees {
			if a.CheckedIn {
				total++
			}
		}
		result.TotalCheckedIn = total
	} else {
		log.Warn().Err(err).Msg("Could not recompute total from sheet, using cache size.")
	}

	return result, nil
}

// Summary aggregates the current attendance state, from the grid when
// it is reachable and from the cache otherwise.
func (t *Tracker) Summary(ctx context.Context, sheetID, rng string) models.Summary {
	resolvedID, resolvedRng := t.resolve(sheetID, rng)

	if t.api != nil && resolvedID != "" {
		attendees, err := t.Attendees(ctx, resolvedID, resolvedRng)
		if err == nil {
			summary := models.Summary{CheckIns: []models.CheckInRecord{}}
			for _, a := range attendees {
				if a.CheckedIn {
					summary.CheckIns = append(summary.CheckIns, models.CheckInRecord{
						ID:          a.ID,
						CheckInTime: a.CheckInTime,
					})
				}
			}
			summary.TotalCheckedIn = len(summary.CheckIns)
			return summary
		}
		log.Warn().Err(err).Msg("Summary falling back to local cache.")
	}

	return models.Summary{
		TotalCheckedIn: t.cache.Len(),
		CheckIns:       t.cache.Records(),
	}
}

// SyncFromSheet rebuilds the cache from the grid's current state.
//
// The column lookup here is read-only: a grid without a status column
// is reported, not repaired. Rows whose status cell satisfies the
// checked-in predicate get a cache entry holding the time cell, or the
// current time as a best-effort placeholder when no time was recorded.
// An explicit false status cell is skipped. Returns the number of
// cache entries after the rebuild.
func (t *Tracker) SyncFromSheet(ctx context.Context, sheetID, rng string) (int, error) {
	if t.api == nil {
		return 0, ErrNotConfigured
	}

	sheetID, rng = t.resolve(sheetID, rng)
	if sheetID == "" {
		return 0, ErrSheetIDRequired
	}

	rows, err := t.fetchRows(ctx, sheetID, rng)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrEmptySheet
	}

	headers := headerTexts(rows[0])
	statusCol := findStatusColumn(headers, t.config.StrictHeaders)
	timeCol := findTimeColumn(headers, t.config.StrictHeaders)

	if statusCol == -1 {
		return 0, ErrColumnResolution
	}

	entries := make(map[int]string)
	for i, row := range rows[1:] {
		status := cellAt(row, statusCol)
		if status == false || status == nil || status == "" {
			continue
		}
		if !isCheckedInCell(status) {
			continue
		}

		checkInTime := cellText(cellAt(row, timeCol))
		if checkInTime == "" {
			checkInTime = t.now().UTC().Format(time.RFC3339)
		}
		entries[i+1] = checkInTime
	}

	t.cache.ReplaceAll(entries)
	log.Info().Int("CheckIns", len(entries)).Msg("Synced check-ins from sheet.")

	return len(entries), nil
}

// ValidateAccess verifies that the grid can be read with the current
// credentials. Used by the diagnostic endpoints.
func (t *Tracker) ValidateAccess(ctx context.Context, sheetID, rng string) error {
	if t.api == nil {
		return ErrNotConfigured
	}

	sheetID, rng = t.resolve(sheetID, rng)
	if sheetID == "" {
		return ErrSheetIDRequired
	}

	_, err := t.fetchRows(ctx, sheetID, rng)
	return err
}

package gatekeep

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mpratt/gatekeep/utils"
)

// ColumnPair holds the resolved indices of the check-in columns.
// An index of -1 means the column could not be found or created.
type ColumnPair struct {
	Status int
	Time   int
}

// findEmptyColumn returns the index of the first column safe to claim
// for a new header: either past the current header row, or a column
// whose header is blank and whose first sampled data rows hold no
// value. It never selects a column with any non-empty sampled cell, so
// existing data is never overwritten.
func findEmptyColumn(rows [][]any, headers []string, startFrom int) int {
	maxCheck := utils.Max(len(headers)+EMPTY_COLUMN_PROBE, EMPTY_COLUMN_PROBE)
	sample := utils.Min(len(rows), EMPTY_COLUMN_WINDOW)

	for i := startFrom; i < maxCheck; i++ {
		if i >= len(headers) {
			// Beyond the current header row, nothing to collide with.
			return i
		}
		if strings.TrimSpace(headers[i]) != "" {
			continue
		}

		hasData := false
		for rowIdx := 1; rowIdx < sample; rowIdx++ {
			if cell := cellAt(rows[rowIdx], i); cell != nil && cell != "" {
				hasData = true
				break
			}
		}
		if !hasData {
			return i
		}
	}

	// Fallback: the end of the header row.
	return len(headers)
}

// createColumn writes a header label into the first empty column at or
// after startFrom and returns the re-fetched grid. The write is
// wrapped in the retry policy; a failed write is treated as "someone
// else may have created it first" and still falls through to the
// re-fetch, which is the race resolution strategy here. Two truly
// concurrent writers can still each create a column; that is an
// accepted limitation of lock-free column creation.
func createColumn(ctx context.Context, api GridAPI, sheetID, rng, label string, rows [][]any, headers []string, startFrom int) [][]any {
	sheetName := SheetNameOf(rng)
	emptyCol := findEmptyColumn(rows, headers, startFrom)
	cellRange := CellRef(sheetName, emptyCol, 1)

	err := Retry(ctx, "create column", func() error {
		return api.UpdateRange(ctx, sheetID, cellRange, [][]any{{label}})
	})
	if err != nil {
		log.Warn().Str("Label", label).Str("Range", cellRange).Err(err).
			Msg("Column creation failed, re-checking headers.")
	} else {
		log.Info().Str("Label", label).Str("Range", cellRange).Msg("Created check-in column.")
	}

	updated, err := api.FetchRange(ctx, sheetID, rng)
	if err != nil || len(updated) == 0 {
		log.Error().Str("Label", label).Err(err).Msg("Re-fetch after column creation failed.")
		return nil
	}

	return updated
}

// EnsureCheckInColumns locates the check-in status and time columns,
// creating either one that is missing. It is idempotent: on a grid
// that already has both columns it issues no writes, and calling it
// twice on an unchanged grid returns the same pair both times.
//
// Returns (-1, -1) without error on an empty grid. The time column is
// neither looked up against creation nor created when time logging is
// disabled. A caller that needs to write must treat Status == -1 as a
// hard failure.
func EnsureCheckInColumns(ctx context.Context, api GridAPI, sheetID, rng string, strict, disableTime bool) (ColumnPair, error) {
	pair := ColumnPair{Status: -1, Time: -1}

	rows, err := api.FetchRange(ctx, sheetID, rng)
	if err != nil {
		return pair, err
	}
	if len(rows) == 0 {
		return pair, nil
	}

	headers := headerTexts(rows[0])
	pair.Status = findStatusColumn(headers, strict)
	pair.Time = findTimeColumn(headers, strict)

	if pair.Status == -1 {
		if updated := createColumn(ctx, api, sheetID, rng, STATUS_COLUMN_LABEL, rows, headers, 0); updated != nil {
			rows = updated
			headers = headerTexts(rows[0])
			pair.Status = findStatusColumn(headers, strict)
		}
	}

	if pair.Time == -1 && !disableTime {
		// Start the empty-column search past the status column so the
		// two creations cannot pick the same slot.
		startFrom := 0
		if pair.Status != -1 {
			startFrom = pair.Status + 1
		}
		if updated := createColumn(ctx, api, sheetID, rng, TIME_COLUMN_LABEL, rows, headers, startFrom); updated != nil {
			headers = headerTexts(updated[0])
			pair.Time = findTimeColumn(headers, strict)
		}
	}

	return pair, nil
}

package gatekeep

import (
	"strconv"
	"strings"

	"github.com/mpratt/gatekeep/models"
)

// cellText renders a heterogeneous grid cell as text. The remote
// service hands back strings, booleans and numbers depending on how a
// cell was last written.
func cellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// cellAt returns the cell at the given column index, or nil when the
// index is -1 or the sparse row is shorter than that.
func cellAt(row []any, index int) any {
	if index < 0 || index >= len(row) {
		return nil
	}
	return row[index]
}

// isCheckedInCell implements the checked-in predicate over the loose
// cell encodings: boolean true, the number 1, or a string containing
// "checked" or "yes" or equal to "true" (case-insensitive) all mean
// checked in. An explicit boolean false is handled by the caller
// before this predicate runs.
func isCheckedInCell(cell any) bool {
	switch v := cell.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	case string:
		s := strings.ToLower(v)
		return strings.Contains(s, "checked") || strings.Contains(s, "yes") || s == "true"
	default:
		return false
	}
}

// headerTexts renders the header row as strings.
func headerTexts(header []any) []string {
	texts := make([]string, len(header))
	for i, cell := range header {
		texts[i] = cellText(cell)
	}
	return texts
}

// findStatusColumn returns the index of the check-in status column, or
// -1. In strict mode an exact match on the canonical label wins before
// any fuzzy match is attempted.
func findStatusColumn(headers []string, strict bool) int {
	if strict {
		for i, h := range headers {
			if headerEqualsAny(h, STATUS_COLUMN_LABEL) {
				return i
			}
		}
	}
	for i, h := range headers {
		if headerContainsAny(h, statusHeaderHints) {
			return i
		}
	}
	return -1
}

// findTimeColumn returns the index of the check-in time column, or -1.
func findTimeColumn(headers []string, strict bool) int {
	if strict {
		for i, h := range headers {
			if headerEqualsAny(h, TIME_COLUMN_LABEL) {
				return i
			}
		}
	}
	for i, h := range headers {
		if headerContainsAny(h, timeHeaderHints) {
			return i
		}
	}
	return -1
}

// ProjectAttendees reconstructs attendees from the raw grid rows.
//
// Row 0 is the header row; data row i becomes the attendee with id i.
// The checked-in state is read from the status column when it has a
// usable cell, otherwise from the cache keyed by row position. Every
// other non-empty cell lands in Fields under its normalized header, so
// a present field is always a non-empty one.
func ProjectAttendees(rows [][]any, cache *AttendanceCache, strict bool) []models.Attendee {
	if len(rows) == 0 {
		return nil
	}

	headers := headerTexts(rows[0])
	statusCol := findStatusColumn(headers, strict)
	timeCol := findTimeColumn(headers, strict)

	attendees := make([]models.Attendee, 0, len(rows)-1)
	for i, row := range rows[1:] {
		attendee := models.Attendee{ID: i + 1}

		status := cellAt(row, statusCol)
		switch {
		case status == false:
			// Explicit false beats everything, including a stale time cell.
		case statusCol != -1 && status != nil && status != "":
			if isCheckedInCell(status) {
				attendee.CheckedIn = true
				attendee.CheckInTime = cellText(cellAt(row, timeCol))
			}
		default:
			// No usable status cell; fall back to the local cache.
			if cache != nil {
				if t, ok := cache.Get(attendee.ID); ok {
					attendee.CheckedIn = true
					attendee.CheckInTime = t
				}
			}
		}

		for col, header := range headers {
			cell := cellAt(row, col)
			if cell == nil || cell == "" {
				continue
			}
			if key := NormalizeHeader(header); key != "" {
				attendee.SetField(key, cell)
			}
		}

		attendees = append(attendees, attendee)
	}

	return attendees
}

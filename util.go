package gatekeep

import (
	"strconv"
	"strings"
)

// ColumnLetter converts a 0-based column index to its spreadsheet
// letter name (A, B, ..., Z, AA, AB, ...).
//
// The naming scheme is bijective base-26: the index is shifted to
// 1-based, then digits are peeled off with a pre-decrement so that 26
// letters cover each position without a zero digit.
//
// Args:
//   - index: The 0-based column index.
//
// Returns:
//   - string: The column letters, e.g. 0 -> "A", 25 -> "Z", 26 -> "AA".
func ColumnLetter(index int) string {
	var sb []byte
	index++ // 1-based
	for index > 0 {
		index--
		sb = append([]byte{byte('A' + index%26)}, sb...)
		index /= 26
	}
	return string(sb)
}

// CellRef builds an A1-style single cell reference within a sheet,
// e.g. ("Guests", 2, 5) -> "Guests!C5".
func CellRef(sheetName string, colIndex, rowNumber int) string {
	return sheetName + "!" + ColumnLetter(colIndex) + strconv.Itoa(rowNumber)
}

// NormalizeHeader converts a header cell into an attribute key:
// trimmed, lower-cased, runs of whitespace joined with underscores.
//
// Args:
//   - header: The raw header cell text.
//
// Returns:
//   - string: The normalized key, empty when the header is blank.
func NormalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(header))), "_")
}

// SheetNameOf extracts the sheet name from an A1 range such as
// "Sheet1!A:Z". A range without a "!" separator is taken to be a bare
// sheet name; an empty range falls back to the default sheet name.
func SheetNameOf(rng string) string {
	if rng == "" {
		return DEFAULT_SHEET_NAME
	}
	if name, _, ok := strings.Cut(rng, "!"); ok {
		return name
	}
	return rng
}

// headerContainsAny reports whether the header cell contains any of the
// given hints, case-insensitively. Blank headers never match.
func headerContainsAny(header string, hints []string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, hint := range hints {
		if strings.Contains(h, hint) {
			return true
		}
	}
	return false
}

// headerEqualsAny reports whether the header cell equals any of the
// given labels, case-insensitively. Used by strict header matching.
func headerEqualsAny(header string, labels ...string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, label := range labels {
		if h == strings.ToLower(label) {
			return true
		}
	}
	return false
}

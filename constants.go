package gatekeep

import (
	"errors"
	"time"
)

const (
	DEFAULT_RANGE       = "Sheet1!A:Z"
	DEFAULT_SHEET_NAME  = "Sheet1"
	STATUS_COLUMN_LABEL = "Check-In Status"
	TIME_COLUMN_LABEL   = "Check-In Time"
	MAX_SEARCH_RESULTS  = 20
	MAX_SEARCH_DISTANCE = 2
	EMPTY_COLUMN_WINDOW = 10  // Data rows sampled when deciding a column is empty.
	EMPTY_COLUMN_PROBE  = 100 // Columns probed past the current header before falling back.
	MAX_RETRIES         = 3
	BASE_RETRY_DELAY    = 1 * time.Second
	API_TIMEOUT         = 30 * time.Second
	WEBHOOK_TIMEOUT     = 10 * time.Second
)

const (
	API_VALUES_GET    = "https://sheets.googleapis.com/v4/spreadsheets/%s/values/%s"
	API_VALUES_UPDATE = "https://sheets.googleapis.com/v4/spreadsheets/%s/values/%s?valueInputOption=RAW"
)

var (
	ErrNotConfigured    = errors.New("grid access not configured")
	ErrSheetIDRequired  = errors.New("sheet id required")
	ErrColumnResolution = errors.New("could not find or create check-in status column")
	ErrInvalidRow       = errors.New("invalid row id")
	ErrEmptySheet       = errors.New("no data found in sheet")

	ErrAuthentication     = errors.New("authentication failed")
	ErrPermission         = errors.New("permission denied")
	ErrNotFound           = errors.New("sheet not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// statusHeaderHints and timeHeaderHints drive the fuzzy column lookup.
// A header cell containing any hint (case-insensitive) claims the column.
var (
	statusHeaderHints = []string{"check-in", "checked", "attendance"}
	timeHeaderHints   = []string{"time", "timestamp"}
)

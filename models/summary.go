package models

// CheckInRecord is one checked-in attendee in an attendance summary.
type CheckInRecord struct {
	ID          int    `json:"id"`
	CheckInTime string `json:"checkInTime,omitempty"`
}

// Summary aggregates the current attendance state.
type Summary struct {
	TotalCheckedIn int             `json:"totalCheckedIn"`
	CheckIns       []CheckInRecord `json:"checkIns"`
}

// CheckInResult is the outcome of a check-in or check-out write.
//
// Success false with a non-empty Warning means the remote write failed
// but the state was kept in the local cache as a fallback.
type CheckInResult struct {
	Success        bool   `json:"success"`
	CheckedIn      bool   `json:"checkedIn"`
	CheckInTime    string `json:"checkInTime,omitempty"`
	TotalCheckedIn int    `json:"totalCheckedIn"`
	Warning        string `json:"warning,omitempty"`
}

// CheckInEvent is broadcast to live listeners after a successful write.
type CheckInEvent struct {
	ID          int    `json:"id"`
	CheckedIn   bool   `json:"checkedIn"`
	CheckInTime string `json:"checkInTime,omitempty"`
	SheetName   string `json:"sheetName"`
	RowNumber   int    `json:"rowNumber"`
}

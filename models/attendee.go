package models

import "encoding/json"

// Attendee represents one data row of the grid, reconstructed on every
// read. It is never stored; the grid remains the system of record.
type Attendee struct {
	ID          int            // 1-based data row position.
	CheckedIn   bool           // Derived from the status column or the cache.
	CheckInTime string         // Check-in timestamp, empty when not checked in.
	Fields      map[string]any // Remaining cells keyed by normalized header.
}

// SetField stores a projected cell under its normalized header key.
func (a *Attendee) SetField(key string, val any) {
	if a.Fields == nil {
		a.Fields = make(map[string]any)
	}
	a.Fields[key] = val
}

// StringField returns the named field as a string, with "" for absent
// or non-string cells.
func (a *Attendee) StringField(key string) string {
	if s, ok := a.Fields[key].(string); ok {
		return s
	}
	return ""
}

// MarshalJSON flattens the attendee into a single JSON object: the
// fixed id/checkedIn/checkInTime fields plus every projected column.
// Projected columns never shadow the fixed fields.
func (a Attendee) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(a.Fields)+3)
	for k, v := range a.Fields {
		obj[k] = v
	}

	obj["id"] = a.ID
	obj["checkedIn"] = a.CheckedIn
	if a.CheckInTime != "" {
		obj["checkInTime"] = a.CheckInTime
	} else {
		obj["checkInTime"] = nil
	}

	return json.Marshal(obj)
}

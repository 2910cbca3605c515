package gatekeep

import (
	"sort"

	"github.com/mpratt/gatekeep/models"
)

// AttendanceCache maps attendee row ids to check-in timestamps.
//
// Presence of a key means checked-in. The cache is a process-local
// fallback and write-ahead buffer, never the source of truth: the sync
// core rebuilds it from the grid on demand and consults it only when a
// row has no usable status cell. Its lifetime is the process lifetime.
type AttendanceCache struct {
	entries SyncMap[int, string]
}

// NewAttendanceCache creates an empty AttendanceCache. Each Tracker
// owns one instance, injected at construction so tests get isolated
// state.
func NewAttendanceCache() *AttendanceCache {
	return &AttendanceCache{entries: NewSyncMap[int, string]()}
}

// CheckIn records the check-in timestamp for a row id, overwriting any
// previous value.
func (c *AttendanceCache) CheckIn(id int, checkInTime string) {
	c.entries.Set(id, checkInTime)
}

// CheckOut removes the entry for a row id.
func (c *AttendanceCache) CheckOut(id int) {
	c.entries.Del(id)
}

// Get returns the cached check-in time for a row id.
func (c *AttendanceCache) Get(id int) (string, bool) {
	return c.entries.Get(id)
}

// Len returns the number of checked-in entries.
func (c *AttendanceCache) Len() int {
	return c.entries.Len()
}

// Records returns the cached entries as summary records, ordered by
// row id.
func (c *AttendanceCache) Records() []models.CheckInRecord {
	records := make([]models.CheckInRecord, 0, c.entries.Len())
	c.entries.Range(func(id int, t string) bool {
		records = append(records, models.CheckInRecord{ID: id, CheckInTime: t})
		return true
	})

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records
}

// ReplaceAll clears the cache and installs the given entries in one
// sweep. Used by the resync operation to rebuild from the grid.
func (c *AttendanceCache) ReplaceAll(entries map[int]string) {
	c.entries.Clear()
	for id, t := range entries {
		c.entries.Set(id, t)
	}
}

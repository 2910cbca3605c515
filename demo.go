package gatekeep

import (
	"github.com/mpratt/gatekeep/models"
)

// demoRows is the sample roster served when no grid is configured, so
// the UI can be exercised without credentials. Check-in state comes
// from the local cache in that mode.
var demoRows = []map[string]any{
	{"name": "John Doe", "company": "Acme Corporation", "email": "john.doe@acme.com", "title": "Senior Manager", "notes": "VIP Guest"},
	{"name": "Jane Smith", "company": "Tech Innovations Inc", "email": "jane.smith@techinc.com", "title": "Lead Developer", "notes": "Speaker"},
	{"name": "Mike Johnson", "company": "Global Solutions", "email": "mike.j@globalsol.com", "title": "Director", "notes": "Panelist"},
	{"name": "Sarah Wilson", "company": "Startup XYZ", "email": "sarah.w@startupxyz.com", "title": "CEO", "notes": "Keynote"},
	{"name": "David Chen", "company": "Innovation Labs", "email": "david.chen@inno.com", "title": "CTO", "notes": "Workshop Leader"},
}

// demoAttendees builds the sample attendees with check-in state taken
// from the cache.
func demoAttendees(cache *AttendanceCache) []models.Attendee {
	attendees := make([]models.Attendee, 0, len(demoRows))
	for i, fields := range demoRows {
		attendee := models.Attendee{ID: i + 1}
		for k, v := range fields {
			attendee.SetField(k, v)
		}
		if t, ok := cache.Get(attendee.ID); ok {
			attendee.CheckedIn = true
			attendee.CheckInTime = t
		}
		attendees = append(attendees, attendee)
	}
	return attendees
}

package gcalendar

import "time"

// EventInput is the writable part of an event.
type EventInput struct {
	CalendarID  string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string // e.g. "Europe/Berlin"
	// Private is stored as private extended properties, visible only to this app.
	Private map[string]string
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	HtmlLink    string
	Status      string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	Private     map[string]string
	Updated     time.Time
}

// Cancelled reports whether the event was deleted remotely.
func (e Event) Cancelled() bool { return e.Status == StatusCancelled }

// ListEventsRequest is the input for listing events. When SyncToken is set
// the time bounds are ignored and only changes since the token are returned.
type ListEventsRequest struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	SyncToken  string
	MaxResults int64
}

// ListEventsResult holds every page of a listing.
type ListEventsResult struct {
	Events        []Event
	NextSyncToken string
}

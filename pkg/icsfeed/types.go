package icsfeed

import "time"

// Source is one subscribed calendar.
type Source struct {
	ID  string
	URL string
}

// Event is a parsed VEVENT. Recurrence is kept unexpanded.
type Event struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool

	RRule   string
	ExDates []time.Time
	// RecurrenceID is set when the VEVENT overrides one instance of a series.
	RecurrenceID *time.Time
}

// Occurrence is one concrete instance inside a window.
type Occurrence struct {
	// Key is stable across fetches: the UID, plus the instance start for series.
	Key     string
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// FetchResult is the body of a feed and its content hash.
type FetchResult struct {
	Source      Source
	Body        []byte
	Hash        string
	NotModified bool
}

// ExportEvent is one entry of a generated calendar.
type ExportEvent struct {
	UID         string
	Summary     string
	Description string
	Category    string
	Start       time.Time
	End         time.Time
}

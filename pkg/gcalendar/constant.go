package gcalendar

const (
	DefaultCalendarID = "primary"
	StatusCancelled   = "cancelled"

	defaultPageSize = 250
)

package gcalendar

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrNotFound = errors.New("calendar event not found")
	// ErrSyncTokenExpired means the caller must restart with a full listing.
	ErrSyncTokenExpired = errors.New("sync token expired")
)

func statusOf(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func isGone(err error) bool {
	code := statusOf(err)
	return code == http.StatusNotFound || code == http.StatusGone
}

package icsfeed

import "errors"

var (
	ErrEmptyBody = errors.New("empty ICS body")
	ErrEmptyURL  = errors.New("feed URL is empty")
)

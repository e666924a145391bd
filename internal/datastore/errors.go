package datastore

import "errors"

var (
	// ErrFeedDisabled is the fallback cause when the attribution feed flag is off.
	ErrFeedDisabled = errors.New("attribution feed disabled")

	// ErrNoSource is the fallback cause when no attribution source is configured.
	ErrNoSource = errors.New("no attribution source configured")
)

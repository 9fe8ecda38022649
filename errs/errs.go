package errs

import "errors"

var (
	ErrStreamNotFound = errors.New("stream not found")
	ErrAlreadyLive    = errors.New("an active stream already exists for this user")
	ErrNoActiveStream = errors.New("no active stream")
	ErrEmptyTitle     = errors.New("title is required")
	ErrEmptyContent   = errors.New("message content is empty")
	ErrCoachRequired  = errors.New("coach role required")
	ErrVideoNotFound  = errors.New("video not found")
	ErrUnauthorized   = errors.New("unauthorized")
)

package rating

import "errors"

// Service-level errors. Handlers map these 1:1 to HTTP status codes and
// never leak anything else to the client.
var (
	ErrNotFound        = errors.New("rating not found")
	ErrForbidden       = errors.New("not the owner of this rating")
	ErrDuplicateRating = errors.New("rating already exists for this user and job")
	ErrUserNotFound    = errors.New("user not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidRating   = errors.New("rating must be an integer between 1 and 10")
	ErrInvalidReason   = errors.New("unknown rating reason")
)

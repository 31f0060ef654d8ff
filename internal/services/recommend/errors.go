package recommend

import "errors"

var (
	ErrProfileNotFound   = errors.New("seeker profile not found")
	ErrProfileIncomplete = errors.New("seeker profile setup is not completed")
	ErrScoringFailed     = errors.New("job scoring failed")
	ErrRatingNotFound    = errors.New("no rating exists for this user and job")
	ErrInvalidRating     = errors.New("rating must be an integer between 1 and 10")
)

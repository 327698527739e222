package user

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username taken")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrSelfReview      = errors.New("cannot review own profile")
	ErrReviewExists    = errors.New("already reviewed this profile")
	ErrInvalidTheme    = errors.New("invalid theme")
)

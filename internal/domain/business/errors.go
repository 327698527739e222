package business

import "errors"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrNotOwner         = errors.New("not business owner")
	ErrInvalidPrivacy   = errors.New("invalid privacy value")
)

package job

import "errors"

var (
	ErrListingNotFound     = errors.New("job listing not found")
	ErrBusinessNotFound    = errors.New("business not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrNotOwner            = errors.New("not listing owner")
	ErrInvalidTitle        = errors.New("unknown job title")
	ErrShiftOrder          = errors.New("shift must end after it starts")
	ErrInsufficientLead    = errors.New("shift must start at least the minimum lead time from now")
	ErrBelowMinimumWage    = errors.New("pay rate below minimum wage")
	ErrJobNotOpen          = errors.New("job listing is not open")
	ErrJobNotFilled        = errors.New("job listing is not filled")
	ErrAlreadyApplied      = errors.New("already applied to this listing")
	ErrOwnListing          = errors.New("cannot apply to own listing")
	ErrVerificationFailed  = errors.New("verification code mismatch")
)

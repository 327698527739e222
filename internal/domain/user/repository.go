package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	TouchProfile(ctx context.Context, userID string, email, avatarURL *string) error

	// ClaimUsername must return ErrUsernameTaken when the name is already
	// reserved by another user. Implementations rely on a primary-key
	// conflict, not a read-then-write.
	ClaimUsername(ctx context.Context, username, userID string) error
	ReleaseUsername(ctx context.Context, username, userID string) error

	CreateReview(ctx context.Context, review *Review) error
	HasReview(ctx context.Context, profileUserID, authorID string) (bool, error)
	ListReviews(ctx context.Context, profileUserID string) ([]Review, error)

	UpdateStats(ctx context.Context, userID string, shiftCount int64, totalHours float64) error
	CompletedShiftsByWorker(ctx context.Context, userID string) ([]CompletedShift, error)
}

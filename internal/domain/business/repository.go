package business

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id string) (*Business, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Business, error)
	ListPublic(ctx context.Context, city string) ([]Business, error)
	Update(ctx context.Context, id string, update Update) error
	Delete(ctx context.Context, id string) error

	// Cascade helpers used when a business is removed.
	DeleteApplicationsByBusiness(ctx context.Context, businessID string) error
	DeleteListingsByBusiness(ctx context.Context, businessID string) error
}

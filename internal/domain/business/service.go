package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FeedInvalidator drops cached discovery feeds. Editing or deleting a
// business can change which listings the public feed may show, so those
// paths invalidate rather than wait out the cache TTL.
type FeedInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopFeedInvalidator struct{}

func (noopFeedInvalidator) Invalidate(context.Context) {}

type Service struct {
	repo Repository
	feed FeedInvalidator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, feed: noopFeedInvalidator{}}
}

func (s *Service) SetFeedInvalidator(feed FeedInvalidator) {
	if feed != nil {
		s.feed = feed
	}
}

type CreateInput struct {
	Name        string
	Address     string
	Postcode    string
	City        string
	Latitude    float64
	Longitude   float64
	Privacy     string
	Phone       string
	Description string
}

func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*Business, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.Postcode = strings.ToUpper(strings.TrimSpace(input.Postcode))
	input.City = strings.TrimSpace(input.City)

	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Address == "" || input.Postcode == "" || input.City == "" {
		return nil, fmt.Errorf("address, postcode and city are required")
	}

	privacy := input.Privacy
	if privacy == "" {
		privacy = PrivacyPublic
	}
	if privacy != PrivacyPublic && privacy != PrivacyPrivate {
		return nil, ErrInvalidPrivacy
	}

	b := Business{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Address:     input.Address,
		Postcode:    input.Postcode,
		City:        input.City,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Privacy:     privacy,
		Phone:       strings.TrimSpace(input.Phone),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Business, error) {
	return s.repo.GetByID(ctx, id)
}

// GetVisible returns the business only if the viewer may see it: public
// businesses are visible to everyone, private ones to their owner.
func (s *Service) GetVisible(ctx context.Context, viewerID, id string) (*Business, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsPublic() && b.OwnerID != viewerID {
		return nil, ErrBusinessNotFound
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID string) ([]Business, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListPublic(ctx context.Context, city string) ([]Business, error) {
	return s.repo.ListPublic(ctx, strings.TrimSpace(city))
}

func (s *Service) Update(ctx context.Context, ownerID, id string, update Update) (*Business, error) {
	if update.Privacy != nil && *update.Privacy != PrivacyPublic && *update.Privacy != PrivacyPrivate {
		return nil, ErrInvalidPrivacy
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	s.feed.Invalidate(ctx)

	return s.repo.GetByID(ctx, id)
}

// Delete removes the business together with its listings and their
// applications in one transaction.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		b, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.OwnerID != ownerID {
			return ErrNotOwner
		}

		if err := tx.DeleteApplicationsByBusiness(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteListingsByBusiness(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.feed.Invalidate(ctx)
	return nil
}

package job

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const verificationCodeLength = 6

// Notifier is the fan-out sink for lifecycle events. Implementations are
// best-effort: they must not fail the triggering operation.
type Notifier interface {
	JobApplication(ctx context.Context, recipientID, jobID, businessID, jobTitle string)
	JobAccepted(ctx context.Context, recipientID, jobID, businessID, jobTitle string)
	JobCompleted(ctx context.Context, recipientID, jobID, businessID, jobTitle string)
	JobAutoClosed(ctx context.Context, recipientID, jobID, businessID, jobTitle string)
}

type noopNotifier struct{}

func (noopNotifier) JobApplication(context.Context, string, string, string, string) {}
func (noopNotifier) JobAccepted(context.Context, string, string, string, string)    {}
func (noopNotifier) JobCompleted(context.Context, string, string, string, string)   {}
func (noopNotifier) JobAutoClosed(context.Context, string, string, string, string)  {}

// Config holds the business rules enforced at listing creation.
type Config struct {
	MinimumWage       float64
	MinLeadTime       time.Duration
	ClosingSoonWindow time.Duration
}

type Service struct {
	repo     Repository
	cache    FeedCache
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.MinLeadTime <= 0 {
		cfg.MinLeadTime = time.Hour
	}
	if cfg.ClosingSoonWindow <= 0 {
		cfg.ClosingSoonWindow = time.Hour
	}

	return &Service{
		repo:     repo,
		cache:    noopFeedCache{},
		notifier: noopNotifier{},
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) SetFeedCache(cache FeedCache) {
	if cache != nil {
		s.cache = cache
	}
}

func (s *Service) SetNotifier(notifier Notifier) {
	if notifier != nil {
		s.notifier = notifier
	}
}

func (s *Service) ClosingSoonWindow() time.Duration {
	return s.cfg.ClosingSoonWindow
}

type CreateListingInput struct {
	JobTitle     string
	StartOfShift time.Time
	EndOfShift   time.Time
	PayRate      float64
	Description  string
}

// CreateListing validates the business rules and writes the listing and the
// owning business's counter in one transaction.
func (s *Service) CreateListing(ctx context.Context, ownerID, businessID string, input CreateListingInput) (*JobListing, error) {
	input.JobTitle = strings.TrimSpace(input.JobTitle)
	if !ValidRole(input.JobTitle) {
		return nil, ErrInvalidTitle
	}
	if !input.EndOfShift.After(input.StartOfShift) {
		return nil, ErrShiftOrder
	}
	if input.StartOfShift.Before(s.now().Add(s.cfg.MinLeadTime)) {
		return nil, ErrInsufficientLead
	}
	if input.PayRate < s.cfg.MinimumWage {
		return nil, ErrBelowMinimumWage
	}

	var result JobListing
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		ref, err := tx.GetBusinessRef(ctx, businessID)
		if err != nil {
			return err
		}
		if ref.OwnerID != ownerID {
			return ErrNotOwner
		}

		listing := JobListing{
			ID:              uuid.NewString(),
			BusinessID:      ref.ID,
			BusinessOwnerID: ref.OwnerID,
			JobTitle:        input.JobTitle,
			StartOfShift:    input.StartOfShift,
			EndOfShift:      input.EndOfShift,
			PayRate:         input.PayRate,
			Description:     strings.TrimSpace(input.Description),
			Status:          StatusOpen,
		}
		if err := tx.CreateListing(ctx, &listing); err != nil {
			return err
		}
		if err := tx.IncrementBusinessListings(ctx, ref.ID, 1); err != nil {
			return err
		}

		result = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return &result, nil
}

func (s *Service) GetListing(ctx context.Context, id string) (*JobListing, error) {
	return s.repo.GetListing(ctx, id)
}

// Feed returns open listings of public businesses, cache-first.
func (s *Service) Feed(ctx context.Context, filter FeedFilter) ([]JobListing, error) {
	filter.JobTitle = strings.TrimSpace(filter.JobTitle)
	filter.City = strings.TrimSpace(filter.City)

	if listings, ok := s.cache.Get(ctx, filter); ok {
		return listings, nil
	}

	listings, err := s.repo.ListOpenPublic(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, filter, listings)
	return listings, nil
}

func (s *Service) ListByBusiness(ctx context.Context, ownerID, businessID string) ([]JobListing, error) {
	ref, err := s.repo.GetBusinessRef(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if ref.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return s.repo.ListByBusiness(ctx, businessID)
}

// UpdateDescription is the only edit allowed after creation; title, times and
// rate stay locked for the lifetime of the listing.
func (s *Service) UpdateDescription(ctx context.Context, ownerID, id, description string) (*JobListing, error) {
	listing, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.BusinessOwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if listing.Status == StatusCompleted {
		return nil, ErrJobNotOpen
	}

	description = strings.TrimSpace(description)
	if err := s.repo.UpdateDescription(ctx, id, description); err != nil {
		return nil, err
	}

	listing.Description = description
	return listing, nil
}

type ApplyInput struct {
	PayRate      *float64
	StartOfShift *time.Time
	EndOfShift   *time.Time
	Message      string
}

// Apply records a worker's bid. Proposed terms default to the listing's own;
// the applicant counter moves in the same transaction as the insert.
func (s *Service) Apply(ctx context.Context, workerID, listingID string, input ApplyInput) (*JobApplication, error) {
	var (
		result  JobApplication
		listing *JobListing
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		listing, err = tx.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.Status != StatusOpen {
			return ErrJobNotOpen
		}
		if listing.BusinessOwnerID == workerID {
			return ErrOwnListing
		}

		if _, err := tx.GetApplication(ctx, listingID, workerID); err == nil {
			return ErrAlreadyApplied
		} else if !errors.Is(err, ErrApplicationNotFound) {
			return err
		}

		application := JobApplication{
			ListingID:    listingID,
			ApplicantID:  workerID,
			PayRate:      listing.PayRate,
			StartOfShift: listing.StartOfShift,
			EndOfShift:   listing.EndOfShift,
			Message:      strings.TrimSpace(input.Message),
			Status:       ApplicationApplied,
		}
		if input.PayRate != nil {
			if *input.PayRate < s.cfg.MinimumWage {
				return ErrBelowMinimumWage
			}
			application.PayRate = *input.PayRate
		}
		if input.StartOfShift != nil {
			application.StartOfShift = *input.StartOfShift
		}
		if input.EndOfShift != nil {
			application.EndOfShift = *input.EndOfShift
		}
		if !application.EndOfShift.After(application.StartOfShift) {
			return ErrShiftOrder
		}

		if err := tx.CreateApplication(ctx, &application); err != nil {
			return err
		}
		if err := tx.IncrementApplicantCount(ctx, listingID, 1); err != nil {
			return err
		}

		result = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.JobApplication(ctx, listing.BusinessOwnerID, listing.ID, listing.BusinessID, listing.JobTitle)
	return &result, nil
}

func (s *Service) Applicants(ctx context.Context, ownerID, listingID string) ([]JobApplication, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.BusinessOwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return s.repo.ListApplications(ctx, listingID)
}

// WorkerApplications buckets the worker's bids against current listing state:
// Active while the listing is still open, Accepted once chosen, Rejected when
// the listing went to someone else or closed without them.
func (s *Service) WorkerApplications(ctx context.Context, workerID string) (WorkerApplications, error) {
	rows, err := s.repo.ListApplicationsByWorker(ctx, workerID)
	if err != nil {
		return WorkerApplications{}, err
	}

	result := WorkerApplications{
		Active:   []ApplicationWithListing{},
		Accepted: []ApplicationWithListing{},
		Rejected: []ApplicationWithListing{},
	}
	for _, row := range rows {
		switch {
		case row.Application.Status == ApplicationAccepted:
			result.Accepted = append(result.Accepted, row)
		case row.Listing.Status == StatusOpen:
			result.Active = append(result.Active, row)
		default:
			result.Rejected = append(result.Rejected, row)
		}
	}
	return result, nil
}

// AcceptApplication locks in one application. The Open -> Filled transition
// is a guarded update keyed on current status, so of two racing accepts
// exactly one wins and the other observes ErrJobNotOpen.
func (s *Service) AcceptApplication(ctx context.Context, ownerID, listingID, applicantID string) (*JobListing, error) {
	var result JobListing
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		listing, err := tx.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.BusinessOwnerID != ownerID {
			return ErrNotOwner
		}
		if listing.Status != StatusOpen || listing.AcceptedUserID != nil {
			return ErrJobNotOpen
		}

		application, err := tx.GetApplication(ctx, listingID, applicantID)
		if err != nil {
			return err
		}

		code, err := generateVerificationCode()
		if err != nil {
			return err
		}

		update := FillUpdate{
			AcceptedUserID:   application.ApplicantID,
			AcceptedPayRate:  application.PayRate,
			AcceptedStart:    application.StartOfShift,
			AcceptedEnd:      application.EndOfShift,
			VerificationCode: code,
			AcceptedAt:       s.now().UTC(),
		}
		won, err := tx.FillListing(ctx, listingID, update)
		if err != nil {
			return err
		}
		if !won {
			return ErrJobNotOpen
		}

		if err := tx.AcceptApplication(ctx, listingID, applicantID, code); err != nil {
			return err
		}

		listing.Status = StatusFilled
		listing.AcceptedUserID = &update.AcceptedUserID
		listing.AcceptedPayRate = &update.AcceptedPayRate
		listing.AcceptedStart = &update.AcceptedStart
		listing.AcceptedEnd = &update.AcceptedEnd
		listing.VerificationCode = &update.VerificationCode
		listing.AcceptedAt = &update.AcceptedAt
		result = *listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.notifier.JobAccepted(ctx, applicantID, result.ID, result.BusinessID, result.JobTitle)
	return &result, nil
}

// VerifyAttendance completes a filled listing when the worker's code matches.
// A repeated correct code on an already completed listing succeeds without
// further writes; a mismatch never mutates state.
func (s *Service) VerifyAttendance(ctx context.Context, ownerID, listingID, code string) (*JobListing, error) {
	code = strings.TrimSpace(code)

	var (
		result   JobListing
		repeated bool
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		listing, err := tx.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.BusinessOwnerID != ownerID {
			return ErrNotOwner
		}
		if listing.VerificationCode == nil {
			return ErrJobNotFilled
		}
		if subtle.ConstantTimeCompare([]byte(code), []byte(*listing.VerificationCode)) != 1 {
			return ErrVerificationFailed
		}

		if listing.Status == StatusCompleted {
			repeated = true
			result = *listing
			return nil
		}
		if listing.Status != StatusFilled {
			return ErrJobNotFilled
		}

		completedAt := s.now().UTC()
		won, err := tx.CompleteListing(ctx, listingID, completedAt)
		if err != nil {
			return err
		}
		if !won {
			// Lost a race to a concurrent verification of the same code.
			repeated = true
			current, err := tx.GetListing(ctx, listingID)
			if err != nil {
				return err
			}
			result = *current
			return nil
		}

		if err := tx.MarkApplicationAttended(ctx, listingID, *listing.AcceptedUserID); err != nil {
			return err
		}

		hours := listing.AcceptedEnd.Sub(*listing.AcceptedStart).Hours()
		if err := tx.IncrementWorkerStats(ctx, *listing.AcceptedUserID, 1, hours); err != nil {
			return err
		}

		listing.Status = StatusCompleted
		listing.ApplicantAttended = true
		listing.CompletedAt = &completedAt
		result = *listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !repeated && result.AcceptedUserID != nil {
		s.notifier.JobCompleted(ctx, *result.AcceptedUserID, result.ID, result.BusinessID, result.JobTitle)
	}
	return &result, nil
}

// CloseListing is the owner's manual Open -> Closed transition.
func (s *Service) CloseListing(ctx context.Context, ownerID, listingID string) (*JobListing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.BusinessOwnerID != ownerID {
		return nil, ErrNotOwner
	}

	closed, err := s.repo.CloseListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, ErrJobNotOpen
	}

	s.cache.Invalidate(ctx)
	listing.Status = StatusClosed
	return listing, nil
}

// CloseExpired closes open listings whose shift already started and notifies
// their owners. Called periodically by the sweeper.
func (s *Service) CloseExpired(ctx context.Context) (int, error) {
	started, err := s.repo.ListStartedOpen(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, listing := range started {
		won, err := s.repo.CloseListing(ctx, listing.ID)
		if err != nil {
			return closed, err
		}
		if !won {
			continue
		}
		closed++
		s.notifier.JobAutoClosed(ctx, listing.BusinessOwnerID, listing.ID, listing.BusinessID, listing.JobTitle)
	}

	if closed > 0 {
		s.cache.Invalidate(ctx)
	}
	return closed, nil
}

// DeleteListing removes the listing, its applications and fixes the owning
// business's counter in one transaction.
func (s *Service) DeleteListing(ctx context.Context, ownerID, listingID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		listing, err := tx.GetListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.BusinessOwnerID != ownerID {
			return ErrNotOwner
		}

		if err := tx.DeleteApplicationsByListing(ctx, listingID); err != nil {
			return err
		}
		if err := tx.DeleteListing(ctx, listingID); err != nil {
			return err
		}
		return tx.IncrementBusinessListings(ctx, listing.BusinessID, -1)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

func generateVerificationCode() (string, error) {
	const digits = "0123456789"
	max := big.NewInt(int64(len(digits)))

	var builder strings.Builder
	builder.Grow(verificationCodeLength)

	for i := 0; i < verificationCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("verification code: %w", err)
		}
		builder.WriteByte(digits[n.Int64()])
	}

	return builder.String(), nil
}

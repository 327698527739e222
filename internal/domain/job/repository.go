package job

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateListing(ctx context.Context, l *JobListing) error
	GetListing(ctx context.Context, id string) (*JobListing, error)
	ListByBusiness(ctx context.Context, businessID string) ([]JobListing, error)
	ListOpenPublic(ctx context.Context, filter FeedFilter) ([]JobListing, error)
	// ListStartedOpen returns open listings whose shift start is not after now.
	ListStartedOpen(ctx context.Context, now time.Time) ([]JobListing, error)
	UpdateDescription(ctx context.Context, id, description string) error
	DeleteListing(ctx context.Context, id string) error

	// FillListing performs the Open -> Filled compare-and-swap and reports
	// whether this call won the transition.
	FillListing(ctx context.Context, id string, update FillUpdate) (bool, error)
	// CompleteListing performs the Filled -> Completed compare-and-swap.
	CompleteListing(ctx context.Context, id string, completedAt time.Time) (bool, error)
	// CloseListing performs the Open -> Closed compare-and-swap.
	CloseListing(ctx context.Context, id string) (bool, error)

	CreateApplication(ctx context.Context, a *JobApplication) error
	GetApplication(ctx context.Context, listingID, applicantID string) (*JobApplication, error)
	ListApplications(ctx context.Context, listingID string) ([]JobApplication, error)
	ListApplicationsByWorker(ctx context.Context, workerID string) ([]ApplicationWithListing, error)
	AcceptApplication(ctx context.Context, listingID, applicantID, verificationCode string) error
	MarkApplicationAttended(ctx context.Context, listingID, applicantID string) error
	DeleteApplicationsByListing(ctx context.Context, listingID string) error
	IncrementApplicantCount(ctx context.Context, listingID string, delta int) error

	// Cross-table reads and writes kept inside the listing transactions.
	GetBusinessRef(ctx context.Context, businessID string) (*BusinessRef, error)
	IncrementBusinessListings(ctx context.Context, businessID string, delta int) error
	IncrementWorkerStats(ctx context.Context, userID string, shifts int, hours float64) error
}

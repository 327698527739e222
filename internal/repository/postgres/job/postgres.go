package job

import (
	"context"
	"errors"
	"time"

	jobdomain "barbid-go/internal/domain/job"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(jobdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateListing(ctx context.Context, l *jobdomain.JobListing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *PostgresRepository) GetListing(ctx context.Context, id string) (*jobdomain.JobListing, error) {
	var listing jobdomain.JobListing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jobdomain.ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *PostgresRepository) ListByBusiness(ctx context.Context, businessID string) ([]jobdomain.JobListing, error) {
	var listings []jobdomain.JobListing
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("start_of_shift asc").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *PostgresRepository) ListOpenPublic(ctx context.Context, filter jobdomain.FeedFilter) ([]jobdomain.JobListing, error) {
	query := r.db.WithContext(ctx).
		Table("job_listings").
		Joins("join businesses on businesses.id = job_listings.business_id").
		Where("job_listings.status = ?", jobdomain.StatusOpen).
		Where("businesses.privacy = ?", "public")

	if filter.JobTitle != "" {
		query = query.Where("job_listings.job_title = ?", filter.JobTitle)
	}
	if filter.City != "" {
		query = query.Where("businesses.city ILIKE ?", filter.City)
	}

	var listings []jobdomain.JobListing
	if err := query.Order("job_listings.start_of_shift asc").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *PostgresRepository) ListStartedOpen(ctx context.Context, now time.Time) ([]jobdomain.JobListing, error) {
	var listings []jobdomain.JobListing
	if err := r.db.WithContext(ctx).
		Where("status = ? AND start_of_shift <= ?", jobdomain.StatusOpen, now).
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *PostgresRepository) UpdateDescription(ctx context.Context, id, description string) error {
	return r.db.WithContext(ctx).Model(&jobdomain.JobListing{}).
		Where("id = ?", id).
		Update("description", description).Error
}

func (r *PostgresRepository) DeleteListing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&jobdomain.JobListing{}, "id = ?", id).Error
}

// FillListing is the Open -> Filled compare-and-swap: the status predicate in
// the WHERE clause makes the transition atomic, and a zero row count means
// another accept already won.
func (r *PostgresRepository) FillListing(ctx context.Context, id string, update jobdomain.FillUpdate) (bool, error) {
	result := r.db.WithContext(ctx).Model(&jobdomain.JobListing{}).
		Where("id = ? AND status = ? AND accepted_user_id IS NULL", id, jobdomain.StatusOpen).
		Updates(map[string]interface{}{
			"status":            jobdomain.StatusFilled,
			"accepted_user_id":  update.AcceptedUserID,
			"accepted_pay_rate": update.AcceptedPayRate,
			"accepted_start":    update.AcceptedStart,
			"accepted_end":      update.AcceptedEnd,
			"verification_code": update.VerificationCode,
			"accepted_at":       update.AcceptedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) CompleteListing(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&jobdomain.JobListing{}).
		Where("id = ? AND status = ?", id, jobdomain.StatusFilled).
		Updates(map[string]interface{}{
			"status":             jobdomain.StatusCompleted,
			"applicant_attended": true,
			"completed_at":       completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) CloseListing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&jobdomain.JobListing{}).
		Where("id = ? AND status = ?", id, jobdomain.StatusOpen).
		Update("status", jobdomain.StatusClosed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) CreateApplication(ctx context.Context, a *jobdomain.JobApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *PostgresRepository) GetApplication(ctx context.Context, listingID, applicantID string) (*jobdomain.JobApplication, error) {
	var application jobdomain.JobApplication
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND applicant_id = ?", listingID, applicantID).
		First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jobdomain.ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *PostgresRepository) ListApplications(ctx context.Context, listingID string) ([]jobdomain.JobApplication, error) {
	var applications []jobdomain.JobApplication
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("applied_at asc").
		Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *PostgresRepository) ListApplicationsByWorker(ctx context.Context, workerID string) ([]jobdomain.ApplicationWithListing, error) {
	var applications []jobdomain.JobApplication
	if err := r.db.WithContext(ctx).
		Where("applicant_id = ?", workerID).
		Order("applied_at desc").
		Find(&applications).Error; err != nil {
		return nil, err
	}

	if len(applications) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(applications))
	for _, a := range applications {
		ids = append(ids, a.ListingID)
	}

	var listings []jobdomain.JobListing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]jobdomain.JobListing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	rows := make([]jobdomain.ApplicationWithListing, 0, len(applications))
	for _, a := range applications {
		listing, ok := byID[a.ListingID]
		if !ok {
			// Listing deleted since the application was made.
			continue
		}
		rows = append(rows, jobdomain.ApplicationWithListing{Application: a, Listing: listing})
	}
	return rows, nil
}

func (r *PostgresRepository) AcceptApplication(ctx context.Context, listingID, applicantID, verificationCode string) error {
	return r.db.WithContext(ctx).Model(&jobdomain.JobApplication{}).
		Where("listing_id = ? AND applicant_id = ?", listingID, applicantID).
		Updates(map[string]interface{}{
			"status":            jobdomain.ApplicationAccepted,
			"verification_code": verificationCode,
		}).Error
}

func (r *PostgresRepository) MarkApplicationAttended(ctx context.Context, listingID, applicantID string) error {
	return r.db.WithContext(ctx).Model(&jobdomain.JobApplication{}).
		Where("listing_id = ? AND applicant_id = ?", listingID, applicantID).
		Update("attended", true).Error
}

func (r *PostgresRepository) DeleteApplicationsByListing(ctx context.Context, listingID string) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&jobdomain.JobApplication{}).Error
}

func (r *PostgresRepository) IncrementApplicantCount(ctx context.Context, listingID string, delta int) error {
	return r.db.WithContext(ctx).Model(&jobdomain.JobListing{}).
		Where("id = ?", listingID).
		Update("applicant_count", gorm.Expr("applicant_count + ?", delta)).Error
}

func (r *PostgresRepository) GetBusinessRef(ctx context.Context, businessID string) (*jobdomain.BusinessRef, error) {
	type businessRow struct {
		ID      string `gorm:"column:id"`
		OwnerID string `gorm:"column:owner_id"`
		Name    string `gorm:"column:name"`
		City    string `gorm:"column:city"`
		Privacy string `gorm:"column:privacy"`
	}

	var row businessRow
	err := r.db.WithContext(ctx).
		Table("businesses").
		Select("id, owner_id, name, city, privacy").
		Where("id = ?", businessID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, jobdomain.ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}

	return &jobdomain.BusinessRef{
		ID:      row.ID,
		OwnerID: row.OwnerID,
		Name:    row.Name,
		City:    row.City,
		Public:  row.Privacy == "public",
	}, nil
}

func (r *PostgresRepository) IncrementBusinessListings(ctx context.Context, businessID string, delta int) error {
	return r.db.WithContext(ctx).
		Table("businesses").
		Where("id = ?", businessID).
		Update("job_listings", gorm.Expr("GREATEST(job_listings + ?, 0)", delta)).Error
}

func (r *PostgresRepository) IncrementWorkerStats(ctx context.Context, userID string, shifts int, hours float64) error {
	return r.db.WithContext(ctx).
		Table("user_profiles").
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"shift_count":        gorm.Expr("shift_count + ?", shifts),
			"total_hours_worked": gorm.Expr("total_hours_worked + ?", hours),
		}).Error
}

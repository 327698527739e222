package user

import (
	"context"
	"errors"
	"time"

	userdomain "barbid-go/internal/domain/user"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(userdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*userdomain.Profile, error) {
	var profile userdomain.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) GetProfileByUsername(ctx context.Context, username string) (*userdomain.Profile, error) {
	var profile userdomain.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) CreateProfile(ctx context.Context, profile *userdomain.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, update userdomain.ProfileUpdate) error {
	values := map[string]interface{}{}
	if update.Username != nil {
		values["username"] = *update.Username
	}
	if update.FirstName != nil {
		values["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		values["last_name"] = *update.LastName
	}
	if update.About != nil {
		values["about"] = *update.About
	}
	if update.Occupation != nil {
		values["occupation"] = *update.Occupation
	}
	if update.Skills != nil {
		skills, err := userdomain.SkillsJSON(update.Skills)
		if err != nil {
			return err
		}
		values["skills"] = skills
	}
	if update.Theme != nil {
		values["theme"] = *update.Theme
	}
	if update.AvatarURL != nil {
		values["avatar_url"] = *update.AvatarURL
	}
	if update.CoverURL != nil {
		values["cover_url"] = *update.CoverURL
	}
	if len(values) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&userdomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(values).Error
}

func (r *PostgresRepository) TouchProfile(ctx context.Context, userID string, email, avatarURL *string) error {
	values := map[string]interface{}{}
	if email != nil {
		values["email"] = *email
	}
	if avatarURL != nil {
		values["avatar_url"] = *avatarURL
	}
	if len(values) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&userdomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(values).Error
}

// ClaimUsername is an atomic create-if-absent: the reservation table's
// primary key turns a duplicate claim into a unique violation.
func (r *PostgresRepository) ClaimUsername(ctx context.Context, username, userID string) error {
	err := r.db.WithContext(ctx).Create(&userdomain.UsernameReservation{
		Username: username,
		UserID:   userID,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userdomain.ErrUsernameTaken
	}
	return err
}

func (r *PostgresRepository) ReleaseUsername(ctx context.Context, username, userID string) error {
	return r.db.WithContext(ctx).
		Delete(&userdomain.UsernameReservation{}, "username = ? AND user_id = ?", username, userID).Error
}

func (r *PostgresRepository) CreateReview(ctx context.Context, review *userdomain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *PostgresRepository) HasReview(ctx context.Context, profileUserID, authorID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userdomain.Review{}).
		Where("profile_user_id = ? AND author_id = ?", profileUserID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ListReviews(ctx context.Context, profileUserID string) ([]userdomain.Review, error) {
	var reviews []userdomain.Review
	if err := r.db.WithContext(ctx).
		Where("profile_user_id = ?", profileUserID).
		Order("created_at desc").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *PostgresRepository) UpdateStats(ctx context.Context, userID string, shiftCount int64, totalHours float64) error {
	return r.db.WithContext(ctx).Model(&userdomain.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"shift_count":        shiftCount,
			"total_hours_worked": totalHours,
		}).Error
}

func (r *PostgresRepository) CompletedShiftsByWorker(ctx context.Context, userID string) ([]userdomain.CompletedShift, error) {
	type shiftRow struct {
		ID            string    `gorm:"column:id"`
		AcceptedStart time.Time `gorm:"column:accepted_start"`
		AcceptedEnd   time.Time `gorm:"column:accepted_end"`
	}

	var rows []shiftRow
	if err := r.db.WithContext(ctx).
		Table("job_listings").
		Select("id, accepted_start, accepted_end").
		Where("accepted_user_id = ? AND status = ?", userID, "Completed").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	shifts := make([]userdomain.CompletedShift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, userdomain.CompletedShift{
			ListingID: row.ID,
			Start:     row.AcceptedStart,
			End:       row.AcceptedEnd,
		})
	}
	return shifts, nil
}

package business

import (
	"context"
	"errors"

	businessdomain "barbid-go/internal/domain/business"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(businessdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, b *businessdomain.Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*businessdomain.Business, error) {
	var b businessdomain.Business
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, businessdomain.ErrBusinessNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]businessdomain.Business, error) {
	var businesses []businessdomain.Business
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *PostgresRepository) ListPublic(ctx context.Context, city string) ([]businessdomain.Business, error) {
	query := r.db.WithContext(ctx).Where("privacy = ?", businessdomain.PrivacyPublic)
	if city != "" {
		query = query.Where("city ILIKE ?", city)
	}

	var businesses []businessdomain.Business
	if err := query.Order("name asc").Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, update businessdomain.Update) error {
	values := map[string]interface{}{}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Address != nil {
		values["address"] = *update.Address
	}
	if update.Postcode != nil {
		values["postcode"] = *update.Postcode
	}
	if update.City != nil {
		values["city"] = *update.City
	}
	if update.Latitude != nil {
		values["latitude"] = *update.Latitude
	}
	if update.Longitude != nil {
		values["longitude"] = *update.Longitude
	}
	if update.Privacy != nil {
		values["privacy"] = *update.Privacy
	}
	if update.Phone != nil {
		values["phone"] = *update.Phone
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if len(values) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&businessdomain.Business{}).
		Where("id = ?", id).
		Updates(values).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&businessdomain.Business{}, "id = ?", id).Error
}

func (r *PostgresRepository) DeleteApplicationsByBusiness(ctx context.Context, businessID string) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM job_applications
		WHERE listing_id IN (SELECT id FROM job_listings WHERE business_id = ?)
	`, businessID).Error
}

func (r *PostgresRepository) DeleteListingsByBusiness(ctx context.Context, businessID string) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM job_listings WHERE business_id = ?", businessID).Error
}

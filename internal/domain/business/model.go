package business

import "time"

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

type Business struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	OwnerID     string    `gorm:"not null;index"`
	Name        string    `gorm:"not null"`
	Address     string    `gorm:"not null"`
	Postcode    string    `gorm:"size:12;not null"`
	City        string    `gorm:"not null;index"`
	Latitude    float64
	Longitude   float64
	Privacy     string `gorm:"type:varchar(8);not null;default:public"`
	Phone       string
	Description string
	// JobListings is a counter maintained in the same transaction as
	// listing creation and deletion.
	JobListings int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (b *Business) IsPublic() bool {
	return b.Privacy == PrivacyPublic
}

type Update struct {
	Name        *string
	Address     *string
	Postcode    *string
	City        *string
	Latitude    *float64
	Longitude   *float64
	Privacy     *string
	Phone       *string
	Description *string
}

package user

import (
	"time"

	"gorm.io/datatypes"
)

type Profile struct {
	UserID     string  `gorm:"primaryKey"`
	Username   string  `gorm:"size:30;not null;uniqueIndex"`
	Email      *string `gorm:"type:text"`
	FirstName  string
	LastName   string
	About      string
	Occupation string
	// Skills is a plain JSON array of strings.
	Skills    datatypes.JSON `gorm:"type:jsonb"`
	Theme     string         `gorm:"type:varchar(16);default:light"`
	AvatarURL *string        `gorm:"type:text"`
	CoverURL  *string        `gorm:"type:text"`

	// Aggregate shift stats, incremented in the completion transaction.
	ShiftCount       int64   `gorm:"not null;default:0"`
	TotalHoursWorked float64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string { return "user_profiles" }

// UsernameReservation is the global uniqueness claim: the primary key on
// username makes a claim an atomic create-if-absent.
type UsernameReservation struct {
	Username  string    `gorm:"size:30;primaryKey"`
	UserID    string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Review struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	ProfileUserID string    `gorm:"not null;index"`
	AuthorID      string    `gorm:"not null"`
	Rating        int       `gorm:"not null"`
	Comment       string
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

type ProfileUpdate struct {
	Username   *string
	FirstName  *string
	LastName   *string
	About      *string
	Occupation *string
	Skills     []string
	Theme      *string
	AvatarURL  *string
	CoverURL   *string
}

// CompletedShift is what the stats backfill reads off historical listings.
type CompletedShift struct {
	ListingID string
	Start     time.Time
	End       time.Time
}

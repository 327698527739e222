package job

import "time"

// Listing lifecycle. Unattended is part of the status vocabulary but no
// transition sets it yet; see AcceptApplication and the sweeper for the
// transitions that do exist.
const (
	StatusOpen       = "Open"
	StatusFilled     = "Filled"
	StatusCompleted  = "Completed"
	StatusClosed     = "Closed"
	StatusUnattended = "Unattended"
)

const (
	ApplicationApplied  = "Applied"
	ApplicationAccepted = "Accepted"
)

// Roles a listing may be posted for.
var Roles = []string{
	"Bartender",
	"Barback",
	"Barista",
	"Waiter",
	"Host",
	"Chef",
	"Kitchen Porter",
	"Mixologist",
	"Security",
	"Cleaner",
}

func ValidRole(title string) bool {
	for _, role := range Roles {
		if role == title {
			return true
		}
	}
	return false
}

// JobListing is the single authoritative record of a posted shift. Title,
// times and rate are fixed at creation; everything under the "accepted"
// prefix is written exactly once by the Open -> Filled transition.
type JobListing struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	BusinessID      string    `gorm:"type:uuid;not null;index"`
	BusinessOwnerID string    `gorm:"not null;index"`
	JobTitle        string    `gorm:"type:varchar(32);not null"`
	StartOfShift    time.Time `gorm:"not null;index"`
	EndOfShift      time.Time `gorm:"not null"`
	PayRate         float64   `gorm:"type:numeric(6,2);not null"`
	Description     string
	Status          string `gorm:"type:varchar(16);not null;index"`
	ApplicantCount  int    `gorm:"not null;default:0"`

	AcceptedUserID    *string `gorm:"index"`
	AcceptedPayRate   *float64
	AcceptedStart     *time.Time
	AcceptedEnd       *time.Time
	VerificationCode  *string `gorm:"size:6"`
	ApplicantAttended bool    `gorm:"not null;default:false"`
	AcceptedAt        *time.Time
	CompletedAt       *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ClosingSoon reports whether an open listing's shift starts within the
// window. Purely informational; the sweeper only closes listings whose shift
// has actually started.
func (l *JobListing) ClosingSoon(now time.Time, window time.Duration) bool {
	return l.Status == StatusOpen && l.StartOfShift.Sub(now) <= window
}

// JobApplication is a worker's bid on a listing, keyed (listing, applicant).
// Proposed terms may differ from the listing's own.
type JobApplication struct {
	ListingID        string    `gorm:"type:uuid;primaryKey"`
	ApplicantID      string    `gorm:"primaryKey"`
	PayRate          float64   `gorm:"type:numeric(6,2);not null"`
	StartOfShift     time.Time `gorm:"not null"`
	EndOfShift       time.Time `gorm:"not null"`
	Message          string
	Status           string    `gorm:"type:varchar(16);not null;default:Applied"`
	Attended         bool      `gorm:"not null;default:false"`
	VerificationCode *string   `gorm:"size:6"`
	AppliedAt        time.Time `gorm:"autoCreateTime"`
}

// FillUpdate carries everything the Open -> Filled compare-and-swap writes.
type FillUpdate struct {
	AcceptedUserID   string
	AcceptedPayRate  float64
	AcceptedStart    time.Time
	AcceptedEnd      time.Time
	VerificationCode string
	AcceptedAt       time.Time
}

// BusinessRef is the slice of the owning business the job domain needs.
type BusinessRef struct {
	ID      string
	OwnerID string
	Name    string
	City    string
	Public  bool
}

// FeedFilter narrows the public discovery feed.
type FeedFilter struct {
	JobTitle string
	City     string
}

// ApplicationWithListing pairs an application with the current listing state
// so worker-side views can be bucketed.
type ApplicationWithListing struct {
	Application JobApplication
	Listing     JobListing
}

// WorkerApplications buckets a worker's applications the way the worker
// dashboard renders them: still-undecided, accepted, and lost to another
// worker or a closed listing.
type WorkerApplications struct {
	Active   []ApplicationWithListing
	Accepted []ApplicationWithListing
	Rejected []ApplicationWithListing
}

package notification

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TypeJobApplication = "job_application"
	TypeJobAccepted    = "job_accepted"
	TypeJobCompleted   = "job_completed"
	TypeJobAutoClosed  = "job_auto_closed"
)

type Notification struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"type:varchar(32);not null"`
	Title   string `gorm:"not null"`
	Message string
	// Data carries the type-specific references, e.g.
	// {"job_id": "...", "business_id": "..."}.
	Data      datatypes.JSON `gorm:"type:jsonb"`
	IsRead    bool           `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// internal/models/job.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusDraft     JobStatus = "draft"
	JobStatusPublished JobStatus = "published"
	JobStatusClosed    JobStatus = "closed"
)

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Title       string `gorm:"type:varchar(160);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"type:varchar(120)" json:"location"`
	WorkType    string `gorm:"type:varchar(20)" json:"work_type"` // onsite | hybrid | remote

	SalaryMin int64 `gorm:"default:0" json:"salary_min"`
	SalaryMax int64 `gorm:"default:0" json:"salary_max"`

	// Accommodation tags offered for this position, e.g. ["sign_language", "flexible_hours"]
	Accommodations datatypes.JSON `gorm:"type:jsonb" json:"accommodations"`

	Status   JobStatus `gorm:"type:varchar(20);default:draft;index" json:"status"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	PublishedAt         *time.Time `gorm:"index" json:"published_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

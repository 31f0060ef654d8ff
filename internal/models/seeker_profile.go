// internal/models/seeker_profile.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkPreference string

const (
	WorkOnsite WorkPreference = "onsite"
	WorkHybrid WorkPreference = "hybrid"
	WorkRemote WorkPreference = "remote"
)

type ProfileStatus string

const (
	ProfileDraft     ProfileStatus = "draft"
	ProfileCompleted ProfileStatus = "completed"
)

type SeekerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	// Step tracking
	SetupStep     int           `gorm:"not null;default:1" json:"setup_step"` // 1..5
	ProfileStatus ProfileStatus `gorm:"type:varchar(30);not null;default:'draft'" json:"profile_status"`

	// Step 1 - photo
	PhotoURL string `gorm:"type:text" json:"photo_url"`

	// Step 2 - basics
	Headline        string         `gorm:"type:varchar(160)" json:"headline"`
	Summary         string         `gorm:"type:text" json:"summary"`
	YearsExperience int            `gorm:"default:0" json:"years_experience"`
	WorkPreference  WorkPreference `gorm:"type:varchar(20)" json:"work_preference"`

	// Step 3 - skills
	Skills datatypes.JSON `gorm:"type:jsonb" json:"skills"` // ["go", "sql", ...]

	// Step 4 - job preferences
	PreferredLocation string `gorm:"type:varchar(120)" json:"preferred_location"`
	ExpectedSalaryMin int64  `gorm:"default:0" json:"expected_salary_min"`
	ExpectedSalaryMax int64  `gorm:"default:0" json:"expected_salary_max"`

	// Step 5 - accessibility needs, drives accommodation matching
	AccommodationNeeds datatypes.JSON `gorm:"type:jsonb" json:"accommodation_needs"` // ["screen_reader", ...]

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

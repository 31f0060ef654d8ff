package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedJob struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_jobs_job_user" json:"job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_jobs_job_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`

	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (s *SavedJob) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// internal/store/job_store.go
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abilitylink/jobboard_be/internal/models"
)

type JobStore struct {
	DB *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{DB: db}
}

func (s *JobStore) Exists(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", jobID).
		Count(&n).Error
	return n > 0, err
}

// EligibleForUser returns candidate jobs for recommendation scoring:
// published, active, deadline still open (or none), and not yet applied to
// by this user. Newest published first, capped at limit.
func (s *JobStore) EligibleForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Job, error) {
	now := time.Now()

	var jobs []models.Job
	err := s.DB.WithContext(ctx).
		Preload("Company").
		Where("status = ?", models.JobStatusPublished).
		Where("is_active = ?", true).
		Where("application_deadline IS NULL OR application_deadline > ?", now).
		Where("id NOT IN (?)",
			s.DB.Model(&models.JobApplication{}).
				Select("job_id").
				Where("user_id = ?", userID),
		).
		Order("published_at DESC NULLS LAST").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

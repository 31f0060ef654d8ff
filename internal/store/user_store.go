package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abilitylink/jobboard_be/internal/models"
)

type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

func (s *UserStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&n).Error
	return n > 0, err
}

// Profile returns the seeker profile for userID, ErrNotFound when none.
func (s *UserStore) Profile(ctx context.Context, userID uuid.UUID) (*models.SeekerProfile, error) {
	var p models.SeekerProfile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CompletedProfileUserIDs lists every user who finished the profile wizard.
// Used by the admin regenerate-all batch.
func (s *UserStore) CompletedProfileUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.SeekerProfile{}).
		Where("profile_status = ?", models.ProfileCompleted).
		Pluck("user_id", &ids).Error
	return ids, err
}

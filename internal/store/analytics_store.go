// internal/store/analytics_store.go
//
// Read-only reporting queries over ratings joined to jobs, companies and
// applications. Kept apart from RatingStore so the reporting layer cannot
// accidentally grow write paths.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopRatedJob struct {
	JobID       uuid.UUID `json:"job_id"`
	JobTitle    string    `json:"job_title"`
	CompanyName string    `json:"company_name"`
	Rating      int       `json:"rating"`
	MatchScore  float64   `json:"match_score"`
	Reason      *string   `json:"reason,omitempty"`
}

type UserEngagement struct {
	UserID              uuid.UUID `json:"user_id"`
	RecommendationCount int64     `json:"recommendation_count"`
	AverageRating       float64   `json:"average_rating"`
}

type AccommodationInsight struct {
	Accommodations string `json:"accommodations"` // JSON tag set as stored on the job
	JobCount       int64  `json:"job_count"`
}

type AnalyticsStore struct {
	DB *gorm.DB
}

func NewAnalyticsStore(db *gorm.DB) *AnalyticsStore {
	return &AnalyticsStore{DB: db}
}

func (s *AnalyticsStore) windowed(ctx context.Context, since time.Time, userID *uuid.UUID) *gorm.DB {
	q := s.DB.WithContext(ctx).
		Table("recommendation_ratings rr").
		Where("rr.created_at >= ?", since)
	if userID != nil {
		q = q.Where("rr.user_id = ?", *userID)
	}
	return q
}

// TopRatedJobs resolves the highest-rated recommendations in the window to
// job title and company name. Rating desc, then match score desc.
func (s *AnalyticsStore) TopRatedJobs(ctx context.Context, since time.Time, userID *uuid.UUID, limit int) ([]TopRatedJob, error) {
	var rows []TopRatedJob
	err := s.windowed(ctx, since, userID).
		Select(`
			rr.job_id,
			j.title as job_title,
			c.name as company_name,
			rr.rating,
			rr.match_score,
			rr.reason
		`).
		Joins("JOIN jobs j ON j.id = rr.job_id").
		Joins("LEFT JOIN companies c ON c.id = j.company_id").
		Order("rr.rating DESC, rr.match_score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UserEngagement ranks users by how many recommendations they hold in the
// window, with their average rating alongside.
func (s *AnalyticsStore) UserEngagement(ctx context.Context, since time.Time, userID *uuid.UUID, limit int) ([]UserEngagement, error) {
	var rows []UserEngagement
	err := s.windowed(ctx, since, userID).
		Select(`
			rr.user_id,
			COUNT(*) as recommendation_count,
			COALESCE(AVG(rr.rating), 0) as average_rating
		`).
		Group("rr.user_id").
		Order("recommendation_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplicationsForRecommendedPairs counts applications whose (job_id, user_id)
// pair matches a recommendation in the window. Numerator of the conversion
// rate.
func (s *AnalyticsStore) ApplicationsForRecommendedPairs(ctx context.Context, since time.Time, userID *uuid.UUID) (int64, error) {
	q := s.DB.WithContext(ctx).
		Table("job_applications ja").
		Joins(`JOIN recommendation_ratings rr
			ON rr.job_id = ja.job_id AND rr.user_id = ja.user_id`).
		Where("rr.created_at >= ?", since)
	if userID != nil {
		q = q.Where("rr.user_id = ?", *userID)
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

// AccommodationBreakdown groups jobs by their accommodation tag set, counting
// only jobs with at least one recommendation in the window.
func (s *AnalyticsStore) AccommodationBreakdown(ctx context.Context, since time.Time, userID *uuid.UUID) ([]AccommodationInsight, error) {
	q := s.DB.WithContext(ctx).
		Table("jobs j").
		Select("CAST(j.accommodations AS TEXT) as accommodations, COUNT(DISTINCT j.id) as job_count").
		Joins("JOIN recommendation_ratings rr ON rr.job_id = j.id").
		Where("rr.created_at >= ?", since).
		Where("j.accommodations IS NOT NULL")
	if userID != nil {
		q = q.Where("rr.user_id = ?", *userID)
	}

	var rows []AccommodationInsight
	err := q.
		Group("CAST(j.accommodations AS TEXT)").
		Order("job_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// internal/store/rating_store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abilitylink/jobboard_be/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// RatingFilter narrows rating queries. Nil fields are ignored.
type RatingFilter struct {
	UserID        *uuid.UUID
	JobID         *uuid.UUID
	Rating        *int
	Reason        *models.RatingReason
	RecommendedBy *string
	IsHelpful     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// RatingUpsert is the writable field set for the (user_id, job_id) upsert.
type RatingUpsert struct {
	Rating        int
	Feedback      string
	Reason        *models.RatingReason
	RecommendedBy string
	MatchScore    float64
}

type RatingAggregate struct {
	Total         int64   `json:"total"`
	AvgRating     float64 `json:"avg_rating"`
	AvgMatchScore float64 `json:"avg_match_score"`
	MinMatchScore float64 `json:"min_match_score"`
	MaxMatchScore float64 `json:"max_match_score"`
}

type GroupCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

var ratingSortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"rating":     "rating",
	"matchScore": "match_score",
}

var ratingGroupFields = map[string]string{
	"rating":        "rating",
	"reason":        "reason",
	"isHelpful":     "is_helpful",
	"recommendedBy": "recommended_by",
}

type RatingStore struct {
	DB *gorm.DB
}

func NewRatingStore(db *gorm.DB) *RatingStore {
	return &RatingStore{DB: db}
}

func (s *RatingStore) scope(ctx context.Context, f RatingFilter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.RecommendationRating{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	if f.Reason != nil {
		q = q.Where("reason = ?", *f.Reason)
	}
	if f.RecommendedBy != nil {
		q = q.Where("recommended_by = ?", *f.RecommendedBy)
	}
	if f.IsHelpful != nil {
		q = q.Where("is_helpful = ?", *f.IsHelpful)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_at < ?", *f.CreatedBefore)
	}
	return q
}

func (s *RatingStore) Get(ctx context.Context, id uuid.UUID) (*models.RecommendationRating, error) {
	var r models.RecommendationRating
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *RatingStore) GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error) {
	var r models.RecommendationRating
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List returns one page of ratings plus the unpaged total. sortBy uses the
// JSON field names ("createdAt", "rating", ...); unknown fields fall back to
// created_at.
func (s *RatingStore) List(ctx context.Context, f RatingFilter, sortBy, sortOrder string, page, limit int) ([]models.RecommendationRating, int64, error) {
	var total int64
	if err := s.scope(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := ratingSortFields[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	offset := (page - 1) * limit

	var rows []models.RecommendationRating
	err := s.scope(ctx, f).
		Order(col + " " + dir).
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new rating. The composite unique index on
// (user_id, job_id) rejects a second row for the same pair.
func (s *RatingStore) Create(ctx context.Context, r *models.RecommendationRating) error {
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// Upsert writes the rating for (userID, jobID), updating the existing row if
// one is there. This is the only correct way to "create or refresh" a pair;
// create-then-catch is not.
func (s *RatingStore) Upsert(ctx context.Context, userID, jobID uuid.UUID, fields RatingUpsert) (*models.RecommendationRating, error) {
	row := models.RecommendationRating{
		UserID:        userID,
		JobID:         jobID,
		Rating:        fields.Rating,
		Feedback:      fields.Feedback,
		Reason:        fields.Reason,
		RecommendedBy: fields.RecommendedBy,
		MatchScore:    fields.MatchScore,
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating", "feedback", "reason", "recommended_by", "match_score", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller gets the persisted id/timestamps even on conflict.
	return s.GetByUserAndJob(ctx, userID, jobID)
}

func (s *RatingStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecommendationRating, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.RecommendationRating{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *RatingStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&models.RecommendationRating{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RatingStore) DeleteMany(ctx context.Context, f RatingFilter) (int64, error) {
	res := s.scope(ctx, f).Delete(&models.RecommendationRating{})
	return res.RowsAffected, res.Error
}

func (s *RatingStore) Aggregate(ctx context.Context, f RatingFilter) (RatingAggregate, error) {
	var agg RatingAggregate
	err := s.scope(ctx, f).
		Select(`
			COUNT(*) as total,
			COALESCE(AVG(rating), 0) as avg_rating,
			COALESCE(AVG(match_score), 0) as avg_match_score,
			COALESCE(MIN(match_score), 0) as min_match_score,
			COALESCE(MAX(match_score), 0) as max_match_score
		`).
		Scan(&agg).Error
	return agg, err
}

// GroupByCount counts rows per distinct value of field. NULL values of the
// group field are excluded (a rating without a reason has no bucket).
func (s *RatingStore) GroupByCount(ctx context.Context, f RatingFilter, field string) ([]GroupCount, error) {
	col, ok := ratingGroupFields[field]
	if !ok {
		return nil, errors.New("groupBy: unsupported field " + field)
	}

	var rows []GroupCount
	err := s.scope(ctx, f).
		Select("CAST("+col+" AS TEXT) as value, COUNT(*) as count").
		Where(col + " IS NOT NULL").
		Group(col).
		Order(col).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

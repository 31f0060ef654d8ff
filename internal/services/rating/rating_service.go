// internal/services/rating/rating_service.go
package rating

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/store"
)

// Store is the persistence surface the service needs. *store.RatingStore
// satisfies it; tests plug in an in-memory fake.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*models.RecommendationRating, error)
	GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error)
	List(ctx context.Context, f store.RatingFilter, sortBy, sortOrder string, page, limit int) ([]models.RecommendationRating, int64, error)
	Create(ctx context.Context, r *models.RecommendationRating) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecommendationRating, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Aggregate(ctx context.Context, f store.RatingFilter) (store.RatingAggregate, error)
	GroupByCount(ctx context.Context, f store.RatingFilter, field string) ([]store.GroupCount, error)
}

// Directory answers "does this user / job exist" for create-time checks.
type Directory interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	JobExists(ctx context.Context, jobID uuid.UUID) (bool, error)
}

type Service struct {
	Ratings Store
	Dir     Directory
}

func NewService(ratings Store, dir Directory) *Service {
	return &Service{Ratings: ratings, Dir: dir}
}

// ListQuery carries the raw list parameters; Normalize applies the defaults
// and caps before they reach the store.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string

	UserID        *uuid.UUID
	JobID         *uuid.UUID
	Rating        *int
	Reason        *models.RatingReason
	RecommendedBy *string
	IsHelpful     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ListResult struct {
	Data       []models.RecommendationRating `json:"data"`
	Pagination Pagination                    `json:"pagination"`
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q.Normalize()

	f := store.RatingFilter{
		UserID:        q.UserID,
		JobID:         q.JobID,
		Rating:        q.Rating,
		Reason:        q.Reason,
		RecommendedBy: q.RecommendedBy,
		IsHelpful:     q.IsHelpful,
		CreatedAfter:  q.CreatedAfter,
		CreatedBefore: q.CreatedBefore,
	}

	rows, total, err := s.Ratings.List(ctx, f, q.SortBy, q.SortOrder, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Data: rows,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// GetByID returns nil (not an error) when the rating is absent; the handler
// decides 404 semantics.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.RecommendationRating, error) {
	r, err := s.Ratings.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *Service) GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error) {
	r, err := s.Ratings.GetByUserAndJob(ctx, userID, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

type CreateInput struct {
	JobID         uuid.UUID
	Rating        int
	Feedback      string
	Reason        *models.RatingReason
	RecommendedBy string
	MatchScore    float64
}

// Create stores a new rating owned by callerID. The owner always comes from
// the authenticated caller, never from the request body.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, in CreateInput) (*models.RecommendationRating, error) {
	if in.Rating < 1 || in.Rating > 10 {
		return nil, ErrInvalidRating
	}
	if in.Reason != nil && !models.ValidReason(*in.Reason) {
		return nil, ErrInvalidReason
	}

	ok, err := s.Dir.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	ok, err = s.Dir.JobExists(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJobNotFound
	}

	if _, err := s.Ratings.GetByUserAndJob(ctx, callerID, in.JobID); err == nil {
		return nil, ErrDuplicateRating
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	r := &models.RecommendationRating{
		UserID:        callerID,
		JobID:         in.JobID,
		Rating:        in.Rating,
		Feedback:      in.Feedback,
		Reason:        in.Reason,
		RecommendedBy: in.RecommendedBy,
		MatchScore:    in.MatchScore,
	}
	if err := s.Ratings.Create(ctx, r); err != nil {
		// Lost the race to a concurrent create for the same pair.
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrDuplicateRating
		}
		return nil, err
	}
	return r, nil
}

type UpdateInput struct {
	Rating    *int
	Feedback  *string
	Reason    *models.RatingReason
	IsHelpful *bool
}

// Update applies a partial update after the existence and ownership checks.
// Existence is checked first: probing an unknown id yields ErrNotFound, not
// ErrForbidden. That ordering is load-bearing for API compatibility.
func (s *Service) Update(ctx context.Context, id, callerID uuid.UUID, in UpdateInput) (*models.RecommendationRating, error) {
	existing, err := s.Ratings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if in.Rating != nil {
		// Re-validate even though the boundary schema already did.
		if *in.Rating < 1 || *in.Rating > 10 {
			return nil, ErrInvalidRating
		}
		fields["rating"] = *in.Rating
	}
	if in.Feedback != nil {
		fields["feedback"] = *in.Feedback
	}
	if in.Reason != nil {
		if !models.ValidReason(*in.Reason) {
			return nil, ErrInvalidReason
		}
		fields["reason"] = *in.Reason
	}
	if in.IsHelpful != nil {
		fields["is_helpful"] = *in.IsHelpful
	}
	if len(fields) == 0 {
		return existing, nil
	}

	updated, err := s.Ratings.Update(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

// Delete removes one rating with the same existence-then-ownership ordering
// as Update.
func (s *Service) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	existing, err := s.Ratings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.UserID != callerID {
		return ErrForbidden
	}

	if err := s.Ratings.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type UserStats struct {
	TotalRatings       int64            `json:"total_ratings"`
	AverageRating      float64          `json:"average_rating"`
	AverageMatchScore  float64          `json:"average_match_score"`
	HelpfulRatings     int64            `json:"helpful_ratings"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
	ReasonDistribution map[string]int64 `json:"reason_distribution"`
}

type JobStats struct {
	TotalRatings       int64            `json:"total_ratings"`
	AverageRating      float64          `json:"average_rating"`
	AverageMatchScore  float64          `json:"average_match_score"`
	HelpfulRatings     int64            `json:"helpful_ratings"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
}

func (s *Service) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	f := store.RatingFilter{UserID: &userID}

	agg, err := s.Ratings.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}
	ratingDist, err := s.groupMap(ctx, f, "rating")
	if err != nil {
		return nil, err
	}
	reasonDist, err := s.groupMap(ctx, f, "reason")
	if err != nil {
		return nil, err
	}
	helpful, err := s.helpfulCount(ctx, f)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		TotalRatings:       agg.Total,
		AverageRating:      agg.AvgRating,
		AverageMatchScore:  agg.AvgMatchScore,
		HelpfulRatings:     helpful,
		RatingDistribution: ratingDist,
		ReasonDistribution: reasonDist,
	}, nil
}

func (s *Service) GetJobStats(ctx context.Context, jobID uuid.UUID) (*JobStats, error) {
	f := store.RatingFilter{JobID: &jobID}

	agg, err := s.Ratings.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}
	ratingDist, err := s.groupMap(ctx, f, "rating")
	if err != nil {
		return nil, err
	}
	helpful, err := s.helpfulCount(ctx, f)
	if err != nil {
		return nil, err
	}

	return &JobStats{
		TotalRatings:       agg.Total,
		AverageRating:      agg.AvgRating,
		AverageMatchScore:  agg.AvgMatchScore,
		HelpfulRatings:     helpful,
		RatingDistribution: ratingDist,
	}, nil
}

func (s *Service) groupMap(ctx context.Context, f store.RatingFilter, field string) (map[string]int64, error) {
	rows, err := s.Ratings.GroupByCount(ctx, f, field)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Value] = row.Count
	}
	return out, nil
}

func (s *Service) helpfulCount(ctx context.Context, f store.RatingFilter) (int64, error) {
	helpful := true
	f.IsHelpful = &helpful
	agg, err := s.Ratings.Aggregate(ctx, f)
	if err != nil {
		return 0, err
	}
	return agg.Total, nil
}

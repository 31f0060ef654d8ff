// internal/services/recommend/generator.go
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/store"
)

const (
	// CacheWindow is how long existing AI ratings are reused before a new
	// scoring run is allowed.
	CacheWindow = 24 * time.Hour

	maxCandidateJobs = 50
	minMatchScore    = 50
	defaultLimit     = 10

	// RecommendedByAI tags system-generated ratings.
	RecommendedByAI = "AI"
)

// RatingStore is the slice of the rating store the generator needs.
type RatingStore interface {
	List(ctx context.Context, f store.RatingFilter, sortBy, sortOrder string, page, limit int) ([]models.RecommendationRating, int64, error)
	GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error)
	Upsert(ctx context.Context, userID, jobID uuid.UUID, fields store.RatingUpsert) (*models.RecommendationRating, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecommendationRating, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, f store.RatingFilter) (int64, error)
}

type JobSource interface {
	EligibleForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Job, error)
}

type ProfileSource interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.SeekerProfile, error)
}

// Notifier pushes a realtime event to one user. The websocket hub satisfies
// it; a nil Notifier disables pushes.
type Notifier interface {
	SendToUser(userID uuid.UUID, data interface{})
}

type Generator struct {
	Ratings  RatingStore
	Jobs     JobSource
	Profiles ProfileSource
	Scorer   Scorer
	Notifier Notifier

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewGenerator(ratings RatingStore, jobs JobSource, profiles ProfileSource, scorer Scorer, notifier Notifier) *Generator {
	return &Generator{
		Ratings:  ratings,
		Jobs:     jobs,
		Profiles: profiles,
		Scorer:   scorer,
		Notifier: notifier,
		Now:      time.Now,
	}
}

type GenerateOptions struct {
	Limit      int
	Regenerate bool
}

type GenerateResult struct {
	Recommendations []models.RecommendationRating `json:"recommendations"`
	Cached          bool                          `json:"cached"`
	GeneratedAt     time.Time                     `json:"generated_at"`
	Analysis        string                        `json:"analysis,omitempty"`
	Message         string                        `json:"message,omitempty"`
}

// Generate returns up to opts.Limit recommendations for userID, reusing
// ratings created inside the cache window unless regeneration was forced.
//
// Two near-simultaneous cache misses for the same user can both generate;
// the per-pair upsert makes that a last-write-wins overlap, not corruption.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID, opts GenerateOptions) (*GenerateResult, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	if !opts.Regenerate {
		cached, err := g.cachedRatings(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			newest := cached[0].CreatedAt
			for _, r := range cached[1:] {
				if r.CreatedAt.After(newest) {
					newest = r.CreatedAt
				}
			}
			return &GenerateResult{
				Recommendations: cached,
				Cached:          true,
				GeneratedAt:     newest,
			}, nil
		}
	}

	profile, err := g.Profiles.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if profile.ProfileStatus != models.ProfileCompleted {
		return nil, ErrProfileIncomplete
	}

	jobs, err := g.Jobs.EligibleForUser(ctx, userID, maxCandidateJobs)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return &GenerateResult{
			Recommendations: []models.RecommendationRating{},
			Cached:          false,
			GeneratedAt:     g.Now(),
			Message:         "No suitable jobs available right now. Check back later or broaden your profile preferences.",
		}, nil
	}

	// The scorer is optional at wiring time (no API key); requests that
	// need it get a clean error instead of a nil dereference.
	if g.Scorer == nil {
		return nil, fmt.Errorf("%w: no scorer configured", ErrScoringFailed)
	}

	scored, err := g.Scorer.Score(ctx, ScoreRequest{
		Profile: profile,
		Jobs:    jobs,
		Preferences: Preferences{
			MaxRecommendations:       limit,
			MinMatchScore:            minMatchScore,
			PrioritizeAccommodations: true,
			ExcludeAppliedJobs:       true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringFailed, err)
	}

	saved := g.persist(ctx, userID, jobs, scored.Recommendations)

	if g.Notifier != nil {
		g.Notifier.SendToUser(userID, map[string]interface{}{
			"type":  "recommendations_ready",
			"count": len(saved),
		})
	}

	return &GenerateResult{
		Recommendations: saved,
		Cached:          false,
		GeneratedAt:     g.Now(),
		Analysis:        scored.Analysis,
	}, nil
}

func (g *Generator) cachedRatings(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecommendationRating, error) {
	since := g.Now().Add(-CacheWindow)
	rows, _, err := g.Ratings.List(ctx, store.RatingFilter{
		UserID:       &userID,
		CreatedAfter: &since,
	}, "rating", "desc", 1, limit)
	return rows, err
}

type upsertOutcome struct {
	idx    int
	rating *models.RecommendationRating
	err    error
}

// persist upserts each scored item concurrently. Items are independent and
// key disjoint (user_id, job_id) pairs, so one failure never aborts the
// rest: failures are logged and dropped, successes are returned in scorer
// order.
func (g *Generator) persist(ctx context.Context, userID uuid.UUID, candidates []models.Job, scored []ScoredJob) []models.RecommendationRating {
	known := make(map[uuid.UUID]bool, len(candidates))
	for _, j := range candidates {
		known[j.ID] = true
	}

	results := make(chan upsertOutcome, len(scored))
	var wg sync.WaitGroup

	for i, item := range scored {
		if !known[item.JobID] {
			log.Printf("[Recommend] dropping scored job %s for user %s: not in candidate set", item.JobID, userID)
			continue
		}
		if item.Rating < 1 || item.Rating > 10 {
			log.Printf("[Recommend] dropping scored job %s for user %s: rating %d out of range", item.JobID, userID, item.Rating)
			continue
		}

		wg.Add(1)
		go func(idx int, sj ScoredJob) {
			defer wg.Done()

			reason := sj.Reason
			var reasonPtr *models.RatingReason
			if models.ValidReason(reason) {
				reasonPtr = &reason
			}

			row, err := g.Ratings.Upsert(ctx, userID, sj.JobID, store.RatingUpsert{
				Rating:        sj.Rating,
				Feedback:      sj.Feedback,
				Reason:        reasonPtr,
				RecommendedBy: RecommendedByAI,
				MatchScore:    sj.MatchScore,
			})
			results <- upsertOutcome{idx: idx, rating: row, err: err}
		}(i, item)
	}

	wg.Wait()
	close(results)

	byIdx := make(map[int]*models.RecommendationRating, len(scored))
	for out := range results {
		if out.err != nil {
			log.Printf("[Recommend] upsert failed for user %s: %v", userID, out.err)
			continue
		}
		byIdx[out.idx] = out.rating
	}

	saved := make([]models.RecommendationRating, 0, len(byIdx))
	for i := range scored {
		if r, ok := byIdx[i]; ok {
			saved = append(saved, *r)
		}
	}
	return saved
}

type RatingUpdate struct {
	Rating    int
	Feedback  *string
	Reason    *models.RatingReason
	IsHelpful *bool
}

// UpdateForJob lets a user adjust the rating the system generated for one
// job, keyed by the (user, job) pair rather than the rating id.
func (g *Generator) UpdateForJob(ctx context.Context, userID, jobID uuid.UUID, in RatingUpdate) (*models.RecommendationRating, error) {
	if in.Rating < 1 || in.Rating > 10 {
		return nil, ErrInvalidRating
	}

	existing, err := g.Ratings.GetByUserAndJob(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{"rating": in.Rating}
	if in.Feedback != nil {
		fields["feedback"] = *in.Feedback
	}
	if in.Reason != nil && models.ValidReason(*in.Reason) {
		fields["reason"] = *in.Reason
	}
	if in.IsHelpful != nil {
		fields["is_helpful"] = *in.IsHelpful
	}

	updated, err := g.Ratings.Update(ctx, existing.ID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRatingNotFound
	}
	return updated, err
}

// DeleteForUser removes the rating for one (user, job) pair, or every rating
// of the user when jobID is nil. Clearing an already-empty set is fine; a
// missing single pair is ErrRatingNotFound.
func (g *Generator) DeleteForUser(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID) (int64, error) {
	if jobID == nil {
		return g.Ratings.DeleteMany(ctx, store.RatingFilter{UserID: &userID})
	}

	existing, err := g.Ratings.GetByUserAndJob(ctx, userID, *jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrRatingNotFound
		}
		return 0, err
	}
	if err := g.Ratings.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrRatingNotFound
		}
		return 0, err
	}
	return 1, nil
}

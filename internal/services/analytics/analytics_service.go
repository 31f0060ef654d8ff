// internal/services/analytics/analytics_service.go
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abilitylink/jobboard_be/internal/store"
)

var ErrMissingUserID = errors.New("userId is required for this action")

const (
	DefaultPeriod = "7d"

	reportCacheTTL = 5 * time.Minute
	topListSize    = 10

	// How many users the regenerate-all batch touches at once. Keeps the
	// fan-out bounded if the user base grows.
	regenerateWorkers = 8

	staleAfter   = 24 * time.Hour
	cleanupAfter = 30 * 24 * time.Hour
)

// RatingStore is the write/aggregate surface analytics needs.
type RatingStore interface {
	Aggregate(ctx context.Context, f store.RatingFilter) (store.RatingAggregate, error)
	GroupByCount(ctx context.Context, f store.RatingFilter, field string) ([]store.GroupCount, error)
	DeleteMany(ctx context.Context, f store.RatingFilter) (int64, error)
}

// ReportStore holds the join-heavy read queries.
type ReportStore interface {
	TopRatedJobs(ctx context.Context, since time.Time, userID *uuid.UUID, limit int) ([]store.TopRatedJob, error)
	UserEngagement(ctx context.Context, since time.Time, userID *uuid.UUID, limit int) ([]store.UserEngagement, error)
	ApplicationsForRecommendedPairs(ctx context.Context, since time.Time, userID *uuid.UUID) (int64, error)
	AccommodationBreakdown(ctx context.Context, since time.Time, userID *uuid.UUID) ([]store.AccommodationInsight, error)
}

type UserSource interface {
	CompletedProfileUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Service struct {
	Ratings RatingStore
	Reports ReportStore
	Users   UserSource

	// RDB caches built reports; nil disables caching.
	RDB *redis.Client

	Now func() time.Time
}

func NewService(ratings RatingStore, reports ReportStore, users UserSource, rdb *redis.Client) *Service {
	return &Service{
		Ratings: ratings,
		Reports: reports,
		Users:   users,
		RDB:     rdb,
		Now:     time.Now,
	}
}

type HelpfulnessStats struct {
	Helpful    int64 `json:"helpful"`
	NotHelpful int64 `json:"not_helpful"`
}

type MatchScoreStats struct {
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

type Report struct {
	Period                string                       `json:"period"`
	WindowStart           time.Time                    `json:"window_start"`
	TotalRecommendations  int64                        `json:"total_recommendations"`
	AverageRating         float64                      `json:"average_rating"`
	RatingDistribution    []store.GroupCount           `json:"rating_distribution"`
	ReasonDistribution    []store.GroupCount           `json:"reason_distribution"`
	HelpfulnessStats      HelpfulnessStats             `json:"helpfulness_stats"`
	MatchScoreStats       MatchScoreStats              `json:"match_score_stats"`
	TopRatedJobs          []store.TopRatedJob          `json:"top_rated_jobs"`
	UserEngagement        []store.UserEngagement       `json:"user_engagement"`
	ConversionRate        float64                      `json:"conversion_rate"`
	AccommodationInsights []store.AccommodationInsight `json:"accommodation_insights"`
}

// ParsePeriod maps the period query value to a window length. Unknown
// values fall back to the default.
func ParsePeriod(period string) (string, time.Duration) {
	switch period {
	case "30d":
		return "30d", 30 * 24 * time.Hour
	case "90d":
		return "90d", 90 * 24 * time.Hour
	default:
		return DefaultPeriod, 7 * 24 * time.Hour
	}
}

// BuildReport computes every metric from the one windowed filter. Reports
// are cached in Redis for a few minutes since the admin dashboard polls.
func (s *Service) BuildReport(ctx context.Context, period string, userID *uuid.UUID) (*Report, error) {
	period, window := ParsePeriod(period)

	cacheKey := "analytics:report:" + period + ":all"
	if userID != nil {
		cacheKey = "analytics:report:" + period + ":" + userID.String()
	}
	if s.RDB != nil {
		if raw, err := s.RDB.Get(ctx, cacheKey).Result(); err == nil {
			var cached Report
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	since := s.Now().Add(-window)
	f := store.RatingFilter{UserID: userID, CreatedAfter: &since}

	agg, err := s.Ratings.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}

	ratingDist, err := s.Ratings.GroupByCount(ctx, f, "rating")
	if err != nil {
		return nil, err
	}
	// Ascending by numeric rating value; the dashboard depends on it.
	sort.Slice(ratingDist, func(i, j int) bool {
		a, _ := strconv.Atoi(ratingDist[i].Value)
		b, _ := strconv.Atoi(ratingDist[j].Value)
		return a < b
	})

	reasonDist, err := s.Ratings.GroupByCount(ctx, f, "reason")
	if err != nil {
		return nil, err
	}
	sort.Slice(reasonDist, func(i, j int) bool { return reasonDist[i].Count > reasonDist[j].Count })

	helpfulDist, err := s.Ratings.GroupByCount(ctx, f, "isHelpful")
	if err != nil {
		return nil, err
	}
	var helpfulness HelpfulnessStats
	for _, row := range helpfulDist {
		switch row.Value {
		case "true":
			helpfulness.Helpful = row.Count
		case "false":
			helpfulness.NotHelpful = row.Count
		}
	}

	topJobs, err := s.Reports.TopRatedJobs(ctx, since, userID, topListSize)
	if err != nil {
		return nil, err
	}

	engagement, err := s.Reports.UserEngagement(ctx, since, userID, topListSize)
	if err != nil {
		return nil, err
	}

	applications, err := s.Reports.ApplicationsForRecommendedPairs(ctx, since, userID)
	if err != nil {
		return nil, err
	}
	conversionRate := 0.0
	if agg.Total > 0 {
		conversionRate = float64(applications) / float64(agg.Total) * 100
	}

	accommodations, err := s.Reports.AccommodationBreakdown(ctx, since, userID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Period:               period,
		WindowStart:          since,
		TotalRecommendations: agg.Total,
		AverageRating:        agg.AvgRating,
		RatingDistribution:   ratingDist,
		ReasonDistribution:   reasonDist,
		HelpfulnessStats:     helpfulness,
		MatchScoreStats: MatchScoreStats{
			Average: agg.AvgMatchScore,
			Minimum: agg.MinMatchScore,
			Maximum: agg.MaxMatchScore,
		},
		TopRatedJobs:          topJobs,
		UserEngagement:        engagement,
		ConversionRate:        conversionRate,
		AccommodationInsights: accommodations,
	}

	if s.RDB != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.RDB.Set(ctx, cacheKey, raw, reportCacheTTL).Err(); err != nil {
				log.Printf("[Analytics] report cache write failed: %v", err)
			}
		}
	}

	return report, nil
}

// RegenerateAll drops every completed-profile user's ratings older than the
// cache window so their next request triggers fresh scoring. Returns how
// many users were processed.
func (s *Service) RegenerateAll(ctx context.Context) (int, error) {
	ids, err := s.Users.CompletedProfileUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.Now().Add(-staleAfter)

	jobs := make(chan uuid.UUID)
	var wg sync.WaitGroup
	for w := 0; w < regenerateWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				uid := userID
				_, err := s.Ratings.DeleteMany(ctx, store.RatingFilter{
					UserID:        &uid,
					CreatedBefore: &cutoff,
				})
				if err != nil {
					log.Printf("[Analytics] regenerate: clearing stale ratings for %s failed: %v", uid, err)
				}
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	s.invalidateCache(ctx)
	return len(ids), nil
}

// CleanupOld deletes ratings older than 30 days system-wide.
func (s *Service) CleanupOld(ctx context.Context) (int64, error) {
	cutoff := s.Now().Add(-cleanupAfter)
	n, err := s.Ratings.DeleteMany(ctx, store.RatingFilter{CreatedBefore: &cutoff})
	if err != nil {
		return 0, err
	}
	s.invalidateCache(ctx)
	return n, nil
}

// RefreshUser clears every rating of one user.
func (s *Service) RefreshUser(ctx context.Context, userID *uuid.UUID) (int64, error) {
	if userID == nil {
		return 0, ErrMissingUserID
	}
	n, err := s.Ratings.DeleteMany(ctx, store.RatingFilter{UserID: userID})
	if err != nil {
		return 0, err
	}
	s.invalidateCache(ctx)
	return n, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.RDB == nil {
		return
	}
	iter := s.RDB.Scan(ctx, 0, "analytics:report:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.RDB.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[Analytics] cache invalidation failed for %s: %v", iter.Val(), err)
		}
	}
}

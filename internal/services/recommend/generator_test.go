package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/store"
)

type fakeRatingStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.RecommendationRating

	// failUpsertFor makes Upsert fail for specific job ids.
	failUpsertFor map[uuid.UUID]error
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{
		rows:          map[uuid.UUID]*models.RecommendationRating{},
		failUpsertFor: map[uuid.UUID]error{},
	}
}

func (s *fakeRatingStore) List(ctx context.Context, f store.RatingFilter, sortBy, sortOrder string, page, limit int) ([]models.RecommendationRating, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.RecommendationRating
	for _, r := range s.rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.CreatedAfter != nil && r.CreatedAt.Before(*f.CreatedAfter) {
			continue
		}
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeRatingStore) GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.UserID == userID && r.JobID == jobID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeRatingStore) Upsert(ctx context.Context, userID, jobID uuid.UUID, fields store.RatingUpsert) (*models.RecommendationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failUpsertFor[jobID]; ok {
		return nil, err
	}

	for _, r := range s.rows {
		if r.UserID == userID && r.JobID == jobID {
			r.Rating = fields.Rating
			r.Feedback = fields.Feedback
			r.Reason = fields.Reason
			r.RecommendedBy = fields.RecommendedBy
			r.MatchScore = fields.MatchScore
			cp := *r
			return &cp, nil
		}
	}

	row := &models.RecommendationRating{
		ID:            uuid.New(),
		UserID:        userID,
		JobID:         jobID,
		Rating:        fields.Rating,
		Feedback:      fields.Feedback,
		Reason:        fields.Reason,
		RecommendedBy: fields.RecommendedBy,
		MatchScore:    fields.MatchScore,
		CreatedAt:     time.Now(),
	}
	s.rows[row.ID] = row
	cp := *row
	return &cp, nil
}

func (s *fakeRatingStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecommendationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if v, ok := fields["rating"]; ok {
		r.Rating = v.(int)
	}
	if v, ok := fields["feedback"]; ok {
		r.Feedback = v.(string)
	}
	if v, ok := fields["is_helpful"]; ok {
		b := v.(bool)
		r.IsHelpful = &b
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRatingStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeRatingStore) DeleteMany(ctx context.Context, f store.RatingFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.CreatedBefore != nil && !r.CreatedAt.Before(*f.CreatedBefore) {
			continue
		}
		delete(s.rows, id)
		n++
	}
	return n, nil
}

type fakeJobSource struct {
	jobs []models.Job
}

func (s *fakeJobSource) EligibleForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Job, error) {
	if len(s.jobs) > limit {
		return s.jobs[:limit], nil
	}
	return s.jobs, nil
}

type fakeProfileSource struct {
	profile *models.SeekerProfile
}

func (s *fakeProfileSource) Profile(ctx context.Context, userID uuid.UUID) (*models.SeekerProfile, error) {
	if s.profile == nil {
		return nil, store.ErrNotFound
	}
	return s.profile, nil
}

type fakeScorer struct {
	result *ScoreResult
	err    error
	calls  int
}

func (s *fakeScorer) Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (n *fakeNotifier) SendToUser(userID uuid.UUID, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := data.(map[string]interface{}); ok {
		n.events = append(n.events, m)
	}
}

func completedProfile(userID uuid.UUID) *models.SeekerProfile {
	return &models.SeekerProfile{
		UserID:        userID,
		ProfileStatus: models.ProfileCompleted,
		Headline:      "Backend developer",
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func TestGenerateReturnsCachedInsideWindow(t *testing.T) {
	userID := uuid.New()
	ratings := newFakeRatingStore()
	scorer := &fakeScorer{}

	cachedAt := fixedNow().Add(-23 * time.Hour)
	row := &models.RecommendationRating{
		ID:        uuid.New(),
		UserID:    userID,
		JobID:     uuid.New(),
		Rating:    9,
		CreatedAt: cachedAt,
	}
	ratings.rows[row.ID] = row

	gen := NewGenerator(ratings, &fakeJobSource{}, &fakeProfileSource{profile: completedProfile(userID)}, scorer, nil)
	gen.Now = fixedNow

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Len(t, res.Recommendations, 1)
	require.Equal(t, cachedAt, res.GeneratedAt)
	require.Zero(t, scorer.calls)
}

func TestGenerateIgnoresRatingsPastWindow(t *testing.T) {
	userID := uuid.New()
	jobID := uuid.New()
	ratings := newFakeRatingStore()

	// 25h old: outside the 24h window, so a fresh scoring run happens.
	stale := &models.RecommendationRating{
		ID:        uuid.New(),
		UserID:    userID,
		JobID:     uuid.New(),
		Rating:    9,
		CreatedAt: fixedNow().Add(-25 * time.Hour),
	}
	ratings.rows[stale.ID] = stale

	scorer := &fakeScorer{result: &ScoreResult{
		Recommendations: []ScoredJob{
			{JobID: jobID, Rating: 8, MatchScore: 82, Reason: models.ReasonGoodFit},
		},
	}}

	gen := NewGenerator(ratings,
		&fakeJobSource{jobs: []models.Job{{ID: jobID}}},
		&fakeProfileSource{profile: completedProfile(userID)},
		scorer, nil)
	gen.Now = fixedNow

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, 1, scorer.calls)
	require.Len(t, res.Recommendations, 1)
	require.Equal(t, jobID, res.Recommendations[0].JobID)
	require.Equal(t, RecommendedByAI, res.Recommendations[0].RecommendedBy)
}

func TestGenerateRegenerateSkipsCache(t *testing.T) {
	userID := uuid.New()
	jobID := uuid.New()
	ratings := newFakeRatingStore()

	fresh := &models.RecommendationRating{
		ID:        uuid.New(),
		UserID:    userID,
		JobID:     jobID,
		Rating:    4,
		CreatedAt: fixedNow().Add(-time.Hour),
	}
	ratings.rows[fresh.ID] = fresh

	scorer := &fakeScorer{result: &ScoreResult{
		Recommendations: []ScoredJob{{JobID: jobID, Rating: 9, MatchScore: 91}},
	}}

	gen := NewGenerator(ratings,
		&fakeJobSource{jobs: []models.Job{{ID: jobID}}},
		&fakeProfileSource{profile: completedProfile(userID)},
		scorer, nil)
	gen.Now = fixedNow

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{Regenerate: true})
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, 1, scorer.calls)
	// The pair was upserted, not duplicated.
	require.Len(t, ratings.rows, 1)
	require.Equal(t, 9, res.Recommendations[0].Rating)
}

func TestGenerateProfileGates(t *testing.T) {
	userID := uuid.New()

	gen := NewGenerator(newFakeRatingStore(), &fakeJobSource{}, &fakeProfileSource{}, &fakeScorer{}, nil)
	gen.Now = fixedNow

	_, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.ErrorIs(t, err, ErrProfileNotFound)

	draft := completedProfile(userID)
	draft.ProfileStatus = models.ProfileDraft
	gen.Profiles = &fakeProfileSource{profile: draft}

	_, err = gen.Generate(context.Background(), userID, GenerateOptions{})
	require.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestGenerateNoEligibleJobs(t *testing.T) {
	userID := uuid.New()
	scorer := &fakeScorer{}

	gen := NewGenerator(newFakeRatingStore(), &fakeJobSource{},
		&fakeProfileSource{profile: completedProfile(userID)}, scorer, nil)
	gen.Now = fixedNow

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Empty(t, res.Recommendations)
	require.Equal(t, "No suitable jobs available right now. Check back later or broaden your profile preferences.", res.Message)
	require.Zero(t, scorer.calls)
}

func TestGenerateScoringFailure(t *testing.T) {
	userID := uuid.New()
	gen := NewGenerator(newFakeRatingStore(),
		&fakeJobSource{jobs: []models.Job{{ID: uuid.New()}}},
		&fakeProfileSource{profile: completedProfile(userID)},
		&fakeScorer{err: errors.New("quota exhausted")}, nil)
	gen.Now = fixedNow

	_, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.ErrorIs(t, err, ErrScoringFailed)
}

func TestGenerateWithoutScorer(t *testing.T) {
	userID := uuid.New()

	// Wiring leaves the scorer nil when no API key is configured; a
	// cache-miss request must fail cleanly, not crash the process.
	gen := NewGenerator(newFakeRatingStore(),
		&fakeJobSource{jobs: []models.Job{{ID: uuid.New()}}},
		&fakeProfileSource{profile: completedProfile(userID)},
		nil, nil)
	gen.Now = fixedNow

	require.NotPanics(t, func() {
		_, err := gen.Generate(context.Background(), userID, GenerateOptions{Regenerate: true})
		require.ErrorIs(t, err, ErrScoringFailed)
	})

	// Cached results still work with no scorer at all.
	row := &models.RecommendationRating{
		ID:        uuid.New(),
		UserID:    userID,
		JobID:     uuid.New(),
		Rating:    7,
		CreatedAt: fixedNow().Add(-time.Hour),
	}
	gen.Ratings.(*fakeRatingStore).rows[row.ID] = row

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.NoError(t, err)
	require.True(t, res.Cached)
}

func TestGeneratePersistsPartialFailures(t *testing.T) {
	userID := uuid.New()
	jobA, jobB, jobC := uuid.New(), uuid.New(), uuid.New()

	ratings := newFakeRatingStore()
	ratings.failUpsertFor[jobB] = errors.New("connection reset")

	scorer := &fakeScorer{result: &ScoreResult{
		Recommendations: []ScoredJob{
			{JobID: jobA, Rating: 9, MatchScore: 90},
			{JobID: jobB, Rating: 8, MatchScore: 85},
			{JobID: jobC, Rating: 7, MatchScore: 70},
			{JobID: uuid.New(), Rating: 6, MatchScore: 60}, // hallucinated id, dropped
			{JobID: jobA, Rating: 0, MatchScore: 50},       // out of range, dropped
		},
	}}
	notifier := &fakeNotifier{}

	gen := NewGenerator(ratings,
		&fakeJobSource{jobs: []models.Job{{ID: jobA}, {ID: jobB}, {ID: jobC}}},
		&fakeProfileSource{profile: completedProfile(userID)},
		scorer, notifier)
	gen.Now = fixedNow

	res, err := gen.Generate(context.Background(), userID, GenerateOptions{})
	require.NoError(t, err)

	// One upsert failed, two invalid items were dropped; the survivors come
	// back in scorer order.
	require.Len(t, res.Recommendations, 2)
	require.Equal(t, jobA, res.Recommendations[0].JobID)
	require.Equal(t, jobC, res.Recommendations[1].JobID)

	require.Len(t, notifier.events, 1)
	require.Equal(t, "recommendations_ready", notifier.events[0]["type"])
	require.Equal(t, 2, notifier.events[0]["count"])
}

func TestUpdateForJob(t *testing.T) {
	userID := uuid.New()
	jobID := uuid.New()
	ratings := newFakeRatingStore()

	gen := NewGenerator(ratings, &fakeJobSource{}, &fakeProfileSource{}, &fakeScorer{}, nil)

	_, err := gen.UpdateForJob(context.Background(), userID, jobID, RatingUpdate{Rating: 0})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = gen.UpdateForJob(context.Background(), userID, jobID, RatingUpdate{Rating: 5})
	require.ErrorIs(t, err, ErrRatingNotFound)

	row := &models.RecommendationRating{ID: uuid.New(), UserID: userID, JobID: jobID, Rating: 3}
	ratings.rows[row.ID] = row

	helpful := true
	updated, err := gen.UpdateForJob(context.Background(), userID, jobID, RatingUpdate{Rating: 5, IsHelpful: &helpful})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)
	require.NotNil(t, updated.IsHelpful)
	require.True(t, *updated.IsHelpful)
}

func TestDeleteForUser(t *testing.T) {
	userID := uuid.New()
	ratings := newFakeRatingStore()
	gen := NewGenerator(ratings, &fakeJobSource{}, &fakeProfileSource{}, &fakeScorer{}, nil)

	for i := 0; i < 3; i++ {
		row := &models.RecommendationRating{ID: uuid.New(), UserID: userID, JobID: uuid.New(), Rating: 5}
		ratings.rows[row.ID] = row
	}

	// Single unknown pair is an error.
	_, err := gen.DeleteForUser(context.Background(), userID, ptr(uuid.New()))
	require.ErrorIs(t, err, ErrRatingNotFound)

	// Clearing everything reports the count; clearing again is a zero, not
	// an error.
	n, err := gen.DeleteForUser(context.Background(), userID, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	n, err = gen.DeleteForUser(context.Background(), userID, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

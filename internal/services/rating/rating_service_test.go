package rating

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/abilitylink/jobboard_be/internal/models"
	"github.com/abilitylink/jobboard_be/internal/store"
)

// fakeStore is an in-memory stand-in for *store.RatingStore.
type fakeStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.RecommendationRating
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[uuid.UUID]*models.RecommendationRating{}}
}

func matches(r *models.RecommendationRating, f store.RatingFilter) bool {
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.JobID != nil && r.JobID != *f.JobID {
		return false
	}
	if f.Rating != nil && r.Rating != *f.Rating {
		return false
	}
	if f.Reason != nil && (r.Reason == nil || *r.Reason != *f.Reason) {
		return false
	}
	if f.RecommendedBy != nil && r.RecommendedBy != *f.RecommendedBy {
		return false
	}
	if f.IsHelpful != nil && (r.IsHelpful == nil || *r.IsHelpful != *f.IsHelpful) {
		return false
	}
	if f.CreatedAfter != nil && r.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && !r.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}

func (s *fakeStore) filtered(f store.RatingFilter) []*models.RecommendationRating {
	var out []*models.RecommendationRating
	for _, r := range s.rows {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) Get(ctx context.Context, id uuid.UUID) (*models.RecommendationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.RecommendationRating, error) {
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

func (s *fakeStore) List(ctx context.Context, f store.RatingFilter, sortBy, sortOrder string, page, limit int) ([]models.RecommendationRating, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filtered(f)
	sort.Slice(rows, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "rating":
			less = rows[i].Rating < rows[j].Rating
		default:
			less = rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if sortOrder == "desc" {
			return !less
		}
		return less
	})

	total := int64(len(rows))
	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	out := make([]models.RecommendationRating, 0, end-start)
	for _, r := range rows[start:end] {
		out = append(out, *r)
	}
	return out, total, nil
}

func (s *fakeStore) Create(ctx context.Context, r *models.RecommendationRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.UserID == r.UserID && existing.JobID == r.JobID {
			return store.ErrDuplicateKey
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *fakeStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecommendationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "rating":
			r.Rating = v.(int)
		case "feedback":
			r.Feedback = v.(string)
		case "reason":
			reason := v.(models.RatingReason)
			r.Reason = &reason
		case "is_helpful":
			b := v.(bool)
			r.IsHelpful = &b
		}
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) Aggregate(ctx context.Context, f store.RatingFilter) (store.RatingAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filtered(f)
	agg := store.RatingAggregate{Total: int64(len(rows))}
	if len(rows) == 0 {
		return agg, nil
	}

	var ratingSum int
	var scoreSum float64
	agg.MinMatchScore = rows[0].MatchScore
	agg.MaxMatchScore = rows[0].MatchScore
	for _, r := range rows {
		ratingSum += r.Rating
		scoreSum += r.MatchScore
		if r.MatchScore < agg.MinMatchScore {
			agg.MinMatchScore = r.MatchScore
		}
		if r.MatchScore > agg.MaxMatchScore {
			agg.MaxMatchScore = r.MatchScore
		}
	}
	agg.AvgRating = float64(ratingSum) / float64(len(rows))
	agg.AvgMatchScore = scoreSum / float64(len(rows))
	return agg, nil
}

func (s *fakeStore) GroupByCount(ctx context.Context, f store.RatingFilter, field string) ([]store.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int64{}
	for _, r := range s.filtered(f) {
		switch field {
		case "rating":
			counts[strconv.Itoa(r.Rating)]++
		case "reason":
			if r.Reason != nil {
				counts[string(*r.Reason)]++
			}
		case "isHelpful":
			if r.IsHelpful != nil {
				counts[strconv.FormatBool(*r.IsHelpful)]++
			}
		}
	}

	out := make([]store.GroupCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, store.GroupCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

type fakeDirectory struct {
	users map[uuid.UUID]bool
	jobs  map[uuid.UUID]bool
}

func (d *fakeDirectory) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.users[id], nil
}

func (d *fakeDirectory) JobExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.jobs[id], nil
}

func newTestService() (*Service, *fakeStore, uuid.UUID, uuid.UUID) {
	st := newFakeStore()
	userID := uuid.New()
	jobID := uuid.New()
	dir := &fakeDirectory{
		users: map[uuid.UUID]bool{userID: true},
		jobs:  map[uuid.UUID]bool{jobID: true},
	}
	return NewService(st, dir), st, userID, jobID
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	svc, st, userID, jobID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 8})
	require.NoError(t, err)
	require.Equal(t, 8, first.Rating)

	_, err = svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 3})
	require.ErrorIs(t, err, ErrDuplicateRating)

	// The original row is untouched.
	stored, err := st.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 8, stored.Rating)
	require.Len(t, st.rows, 1)
}

func TestCreateValidation(t *testing.T) {
	svc, _, userID, jobID := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 0})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 11})
	require.ErrorIs(t, err, ErrInvalidRating)

	bad := models.RatingReason("BECAUSE")
	_, err = svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 5, Reason: &bad})
	require.ErrorIs(t, err, ErrInvalidReason)

	_, err = svc.Create(ctx, uuid.New(), CreateInput{JobID: jobID, Rating: 5})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Create(ctx, userID, CreateInput{JobID: uuid.New(), Rating: 5})
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdateExistenceBeforeOwnership(t *testing.T) {
	svc, st, userID, jobID := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 7})
	require.NoError(t, err)

	newRating := 2

	// Probing an unknown id reports not-found, never forbidden.
	_, err = svc.Update(ctx, uuid.New(), uuid.New(), UpdateInput{Rating: &newRating})
	require.ErrorIs(t, err, ErrNotFound)

	// A stranger hitting a real id is forbidden and changes nothing.
	_, err = svc.Update(ctx, created.ID, uuid.New(), UpdateInput{Rating: &newRating})
	require.ErrorIs(t, err, ErrForbidden)

	stored, err := st.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 7, stored.Rating)

	// The owner can update.
	updated, err := svc.Update(ctx, created.ID, userID, UpdateInput{Rating: &newRating})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Rating)
}

func TestUpdateValidatesFields(t *testing.T) {
	svc, _, userID, jobID := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 7})
	require.NoError(t, err)

	out := 99
	_, err = svc.Update(ctx, created.ID, userID, UpdateInput{Rating: &out})
	require.ErrorIs(t, err, ErrInvalidRating)

	bad := models.RatingReason("nope")
	_, err = svc.Update(ctx, created.ID, userID, UpdateInput{Reason: &bad})
	require.ErrorIs(t, err, ErrInvalidReason)

	// Empty patch is a no-op, not an error.
	same, err := svc.Update(ctx, created.ID, userID, UpdateInput{})
	require.NoError(t, err)
	require.Equal(t, 7, same.Rating)
}

func TestDeleteExistenceBeforeOwnership(t *testing.T) {
	svc, st, userID, jobID := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, userID, CreateInput{JobID: jobID, Rating: 6})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, uuid.New(), userID), ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID, uuid.New()), ErrForbidden)
	require.Len(t, st.rows, 1)

	require.NoError(t, svc.Delete(ctx, created.ID, userID))
	require.Empty(t, st.rows)
}

func TestListPagination(t *testing.T) {
	svc, st, userID, _ := newTestService()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		r := &models.RecommendationRating{
			ID:        uuid.New(),
			UserID:    userID,
			JobID:     uuid.New(),
			Rating:    5,
			Feedback:  "item " + strconv.Itoa(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		st.rows[r.ID] = r
	}

	res, err := svc.List(ctx, ListQuery{
		Page:      3,
		Limit:     5,
		SortBy:    "createdAt",
		SortOrder: "asc",
		UserID:    &userID,
	})
	require.NoError(t, err)

	require.Equal(t, int64(25), res.Pagination.Total)
	require.Equal(t, 5, res.Pagination.TotalPages)
	require.Equal(t, 3, res.Pagination.Page)
	require.Len(t, res.Data, 5)

	// Page 3 of 5-per-page ascending is items 11..15.
	for i, row := range res.Data {
		require.Equal(t, "item "+strconv.Itoa(11+i), row.Feedback)
	}
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, Limit: 0, SortBy: "", SortOrder: "sideways"}
	q.Normalize()
	require.Equal(t, 1, q.Page)
	require.Equal(t, 10, q.Limit)
	require.Equal(t, "createdAt", q.SortBy)
	require.Equal(t, "desc", q.SortOrder)

	q = ListQuery{Limit: 1000}
	q.Normalize()
	require.Equal(t, 100, q.Limit)
}

func TestGetUserStats(t *testing.T) {
	svc, st, userID, _ := newTestService()
	ctx := context.Background()

	helpful := true
	notHelpful := false
	goodFit := models.ReasonGoodFit
	perfect := models.ReasonPerfectMatch

	seed := []*models.RecommendationRating{
		{ID: uuid.New(), UserID: userID, JobID: uuid.New(), Rating: 8, MatchScore: 80, Reason: &goodFit, IsHelpful: &helpful},
		{ID: uuid.New(), UserID: userID, JobID: uuid.New(), Rating: 6, MatchScore: 60, Reason: &goodFit, IsHelpful: &notHelpful},
		{ID: uuid.New(), UserID: userID, JobID: uuid.New(), Rating: 10, MatchScore: 95, Reason: &perfect, IsHelpful: &helpful},
		// Another user's rating must not leak into the stats.
		{ID: uuid.New(), UserID: uuid.New(), JobID: uuid.New(), Rating: 1, MatchScore: 5},
	}
	for _, r := range seed {
		r.CreatedAt = time.Now()
		st.rows[r.ID] = r
	}

	stats, err := svc.GetUserStats(ctx, userID)
	require.NoError(t, err)

	require.Equal(t, int64(3), stats.TotalRatings)
	require.InDelta(t, 8.0, stats.AverageRating, 1e-9)
	require.InDelta(t, 78.333333, stats.AverageMatchScore, 1e-5)
	require.Equal(t, int64(2), stats.HelpfulRatings)
	require.Equal(t, map[string]int64{"6": 1, "8": 1, "10": 1}, stats.RatingDistribution)
	require.Equal(t, map[string]int64{"GOOD_FIT": 2, "PERFECT_MATCH": 1}, stats.ReasonDistribution)
}

func TestGetByIDAbsentIsNil(t *testing.T) {
	svc, _, _, _ := newTestService()

	r, err := svc.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, r)
}

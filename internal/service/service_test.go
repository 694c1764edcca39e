package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/actuallystonmai/hybrid-recommender/internal/cache"
	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/actuallystonmai/hybrid-recommender/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	interactions []domain.Interaction
	items        []domain.Item
}

func (f *fakeSource) FetchInteractions(ctx context.Context) ([]domain.Interaction, error) {
	return f.interactions, nil
}

func (f *fakeSource) FetchItems(ctx context.Context) ([]domain.Item, error) {
	return f.items, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func (f *fakeUsers) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(ctx context.Context, username string, attributes map[string]any) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return nil, domain.ErrUserExists
		}
	}
	u := &domain.User{ID: int64(len(f.users) + 1), Username: username, Attributes: attributes}
	f.users[u.ID] = u
	return u, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]domain.Recommendation
}

func (m *memoryCache) key(k cache.Key) string {
	return fmt.Sprintf("%s/%d/%d/%s", k.Method, k.UserID, k.Limit, strings.Join(k.Genres, ","))
}

func (m *memoryCache) Get(ctx context.Context, k cache.Key) ([]domain.Recommendation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, ok := m.entries[m.key(k)]
	return recs, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, k cache.Key, recs []domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.key(k)] = recs
	return nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, k cache.Key) ([]domain.Recommendation, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, k cache.Key, recs []domain.Recommendation) error {
	return errors.New("redis down")
}

func catalog() []domain.Item {
	genres := []string{
		"Comedia", "Drama", "Acción", "Comedia/Romance", "Terror", "Ciencia Ficción",
		"Drama/Romance", "Animación/Comedia", "Acción/Aventura", "Documental", "Suspenso", "Musical",
	}
	items := make([]domain.Item, len(genres))
	for i, g := range genres {
		items[i] = domain.Item{
			ID:          int64(i + 1),
			Title:       fmt.Sprintf("Película %d", i+1),
			Genre:       g,
			Description: fmt.Sprintf("una historia de %s", strings.ToLower(g)),
		}
	}
	return items
}

func rate(userID int64, ratings map[int64]float64) []domain.Interaction {
	ids := make([]int64, 0, len(ratings))
	for id := range ratings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Interaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Interaction{UserID: userID, ItemID: id, Rating: ratings[id]})
	}
	return out
}

func fixture() *fakeSource {
	var interactions []domain.Interaction
	interactions = append(interactions, rate(1, map[int64]float64{1: 5, 2: 4, 3: 3, 4: 5, 5: 2, 6: 4, 7: 5})...)
	interactions = append(interactions, rate(2, map[int64]float64{1: 5, 2: 3, 9: 4})...)
	interactions = append(interactions, rate(3, map[int64]float64{2: 4, 3: 5, 4: 3, 5: 4, 6: 5, 7: 3})...)
	interactions = append(interactions, rate(4, map[int64]float64{1: 4, 3: 2, 5: 5, 7: 4, 9: 3})...)

	all := map[int64]float64{}
	for i := int64(1); i <= 12; i++ {
		all[i] = float64(i%5 + 1)
	}
	interactions = append(interactions, rate(5, all)...)

	return &fakeSource{interactions: interactions, items: catalog()}
}

func seeded(seed uint64) func() *rand.Rand {
	return func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }
}

func newTestService(t *testing.T, src *fakeSource, opts ...Option) (*Service, *model.Collaborative, *model.Content) {
	t.Helper()
	logger := zap.NewNop()
	collab := model.NewCollaborative(logger)
	content := model.NewContent(logger)
	_ = collab.Load(context.Background(), src)
	_ = content.Load(context.Background(), src)

	users := &fakeUsers{users: map[int64]*domain.User{}}
	return NewService(collab, content, users, logger, opts...), collab, content
}

func seenBy(src *fakeSource, userID int64) map[int64]bool {
	seen := map[int64]bool{}
	for _, in := range src.interactions {
		if in.UserID == userID {
			seen[in.ItemID] = true
		}
	}
	return seen
}

func TestSplitExploration(t *testing.T) {
	for n := 1; n <= 50; n++ {
		nRec, nRandom := splitExploration(n)
		assert.Equal(t, n, nRec+nRandom, "n=%d", n)
		assert.Equal(t, (2*n+2)/3, nRec, "n=%d", n)
		assert.GreaterOrEqual(t, nRandom, 0)
	}

	nRec, nRandom := splitExploration(6)
	assert.Equal(t, 4, nRec)
	assert.Equal(t, 2, nRandom)

	nRec, nRandom = splitExploration(1)
	assert.Equal(t, 1, nRec)
	assert.Equal(t, 0, nRandom)
}

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		count     int
		hasGenres bool
		want      string
		ok        bool
	}{
		{count: 7, want: domain.MethodCollaborative, ok: true},
		{count: 6, hasGenres: true, want: domain.MethodCollaborative, ok: true},
		{count: 5, want: domain.MethodContentHistory, ok: true},
		{count: 1, hasGenres: true, want: domain.MethodContentHistory, ok: true},
		{count: 0, hasGenres: true, want: domain.MethodContentGenres, ok: true},
		{count: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count=%d genres=%v", tt.count, tt.hasGenres), func(t *testing.T) {
			got, ok := selectMethod(tt.count, tt.hasGenres)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetRecommendations_MethodByHistorySize(t *testing.T) {
	svc, _, _ := newTestService(t, fixture(), WithRandFactory(seeded(1)))
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     int64
		genres     []string
		wantCount  int
		wantMethod string
	}{
		{"seven interactions", 1, nil, 7, domain.MethodCollaborative},
		{"six interactions", 3, nil, 6, domain.MethodCollaborative},
		{"five interactions", 4, nil, 5, domain.MethodContentHistory},
		{"three interactions ignore genres", 2, []string{"Comedia"}, 3, domain.MethodContentHistory},
		{"new user with genres", 100, []string{"Comedia"}, 0, domain.MethodContentGenres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetRecommendations(ctx, tt.userID, 5, tt.genres)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, res.InteractionCount)
			assert.True(t, strings.HasPrefix(res.Method, tt.wantMethod), "method %q", res.Method)
			assert.Equal(t, tt.userID, res.UserID)
		})
	}
}

func TestGetRecommendations_CollaborativeBlend(t *testing.T) {
	src := fixture()
	svc, collab, _ := newTestService(t, src, WithRandFactory(seeded(7)))

	res, err := svc.GetRecommendations(context.Background(), 1, 6, nil)
	require.NoError(t, err)

	ranked := collab.RecommendForUser(1, 4)
	require.Len(t, ranked, 4)
	require.LessOrEqual(t, len(res.Recommendations), 6)
	assert.Equal(t, ranked, res.Recommendations[:4])

	// 12 items, 7 seen, 4 ranked: one left to explore
	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, "collaborative + 1 random", res.Method)
	assert.Zero(t, res.Recommendations[4].Score)

	seen := seenBy(src, 1)
	ids := map[int64]bool{}
	for _, r := range res.Recommendations {
		assert.False(t, seen[r.ItemID], "item %d already seen", r.ItemID)
		assert.False(t, ids[r.ItemID], "item %d duplicated", r.ItemID)
		ids[r.ItemID] = true
	}
}

func TestGetRecommendations_ColdStart(t *testing.T) {
	svc, _, content := newTestService(t, fixture(), WithRandFactory(seeded(3)))

	res, err := svc.GetRecommendations(context.Background(), 100, 5, []string{"comedia", " "})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, "content_genres + 1 random", res.Method)

	ranked := res.Recommendations[:4]
	assert.Equal(t, content.RecommendForNewUser([]string{"comedia"}, 4), ranked)
	assert.True(t, sort.SliceIsSorted(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	}))
	assert.Greater(t, ranked[0].Score, 0.0)
	assert.Zero(t, res.Recommendations[4].Score)
}

func TestGetRecommendations_GenresRequired(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())

	_, err := svc.GetRecommendations(context.Background(), 100, 5, []string{"", "  "})
	require.Error(t, err)
	require.True(t, domain.IsGenresRequired(err))

	var gerr *domain.GenresRequiredError
	require.ErrorAs(t, err, &gerr)
	assert.NotEmpty(t, gerr.Suggestions)
	assert.LessOrEqual(t, len(gerr.Suggestions), maxGenreSuggestions)
	assert.Equal(t, svc.ListGenres(), gerr.Suggestions)
}

func TestGetRecommendations_SuggestionsCapped(t *testing.T) {
	src := fixture()
	for i := 0; i < 25; i++ {
		src.items = append(src.items, domain.Item{ID: int64(100 + i), Title: "x", Genre: fmt.Sprintf("G%02d", i)})
	}
	svc, _, _ := newTestService(t, src)

	_, err := svc.GetRecommendations(context.Background(), 999, 5, nil)
	var gerr *domain.GenresRequiredError
	require.ErrorAs(t, err, &gerr)
	require.Len(t, gerr.Suggestions, maxGenreSuggestions)
	assert.Equal(t, "Acción", gerr.Suggestions[0])
	assert.Equal(t, "G00", gerr.Suggestions[7])
	assert.Equal(t, "G12", gerr.Suggestions[19])
}

func TestGetRecommendations_CatalogExhausted(t *testing.T) {
	svc, _, _ := newTestService(t, fixture(), WithRandFactory(seeded(1)))

	// user 5 rated every item
	res, err := svc.GetRecommendations(context.Background(), 5, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, domain.MethodCollaborative, res.Method)
}

func TestGetRecommendations_NoRandomForSingleItem(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())

	res, err := svc.GetRecommendations(context.Background(), 2, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MethodContentHistory, res.Method)
	assert.Len(t, res.Recommendations, 1)
	assert.NotZero(t, res.Recommendations[0].Score)
}

func TestGetRecommendations_ClampsLimit(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())
	ctx := context.Background()

	res, err := svc.GetRecommendations(ctx, 100, 0, []string{"drama"})
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, defaultLimit)

	res, err = svc.GetRecommendations(ctx, 100, 500, []string{"drama"})
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 12, "whole catalog, never padded")
}

func TestGetRecommendations_SeededIsDeterministic(t *testing.T) {
	a, _, _ := newTestService(t, fixture(), WithRandFactory(seeded(42)))
	b, _, _ := newTestService(t, fixture(), WithRandFactory(seeded(42)))

	ra, err := a.GetRecommendations(context.Background(), 100, 9, []string{"terror"})
	require.NoError(t, err)
	rb, err := b.GetRecommendations(context.Background(), 100, 9, []string{"terror"})
	require.NoError(t, err)

	assert.Equal(t, ra.Recommendations, rb.Recommendations)
}

func TestGetRecommendations_EnginesUnavailable(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSource{})
	ctx := context.Background()

	_, err := svc.GetRecommendations(ctx, 1, 5, nil)
	var gerr *domain.GenresRequiredError
	require.ErrorAs(t, err, &gerr)
	assert.Empty(t, gerr.Suggestions)

	res, err := svc.GetRecommendations(ctx, 1, 5, []string{"drama"})
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Equal(t, domain.MethodContentGenres, res.Method)
	assert.Equal(t, []string{}, svc.ListGenres())
}

func TestGetRecommendations_Cache(t *testing.T) {
	mc := &memoryCache{entries: map[string][]domain.Recommendation{}}
	svc, _, _ := newTestService(t, fixture(), WithCache(mc), WithRandFactory(seeded(5)))
	ctx := context.Background()

	first, err := svc.GetRecommendations(ctx, 1, 6, nil)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.GetRecommendations(ctx, 1, 6, nil)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Recommendations[:4], second.Recommendations[:4])
}

func TestGetRecommendations_CacheFailureIsIgnored(t *testing.T) {
	svc, _, _ := newTestService(t, fixture(), WithCache(failingCache{}))

	res, err := svc.GetRecommendations(context.Background(), 1, 3, nil)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.NotEmpty(t, res.Recommendations)
}

func TestGetRecommendations_Concurrent(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			res, err := svc.GetRecommendations(context.Background(), uid, 6, []string{"acción"})
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(res.Recommendations), 6)
		}(int64(i%6 + 1))
	}
	wg.Wait()
}

func TestGetBatchRecommendations(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())

	resp, err := svc.GetBatchRecommendations(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalUsers)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, int64(1), resp.Results[0].UserID)
	assert.Equal(t, int64(2), resp.Results[1].UserID)
	assert.Equal(t, 2, resp.Summary.SuccessCount)
	assert.Zero(t, resp.Summary.FailedCount)

	resp, err = svc.GetBatchRecommendations(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(5), resp.Results[0].UserID)

	resp, err = svc.GetBatchRecommendations(context.Background(), 9, 2)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestUsers(t *testing.T) {
	svc, _, _ := newTestService(t, fixture())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "ana", map[string]any{"pais": "AR"})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)

	_, err = svc.CreateUser(ctx, "ana", nil)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.GetUser(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCategorizeError(t *testing.T) {
	code, _ := CategorizeError(&domain.GenresRequiredError{})
	assert.Equal(t, "genres_required", code)

	code, _ = CategorizeError(fmt.Errorf("wrap: %w", domain.ErrUserNotFound))
	assert.Equal(t, "user_not_found", code)

	code, _ = CategorizeError(errors.New("boom"))
	assert.Equal(t, "internal_error", code)
}

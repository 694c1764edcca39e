package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/actuallystonmai/hybrid-recommender/internal/cache"
	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/actuallystonmai/hybrid-recommender/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultLimit = 5
	maxLimit     = 50

	// Users with at least this many interactions get collaborative filtering.
	collaborativeMinInteractions = 6

	maxGenreSuggestions = 20
)

// CollaborativeEngine scores items from co-rating similarity.
type CollaborativeEngine interface {
	InteractionCount(userID int64) int
	RecommendForUser(userID int64, topN int) []domain.Recommendation
	UserIDs() []int64
}

// ContentEngine scores items from text similarity and owns the catalog.
type ContentEngine interface {
	Genres() []string
	RecommendForNewUser(genres []string, topN int) []domain.Recommendation
	RecommendForExistingUser(userID int64, topN int) []domain.Recommendation
	SeenItems(userID int64) []int64
	Candidates(exclude map[int64]struct{}) []domain.Item
}

type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
	CreateUser(ctx context.Context, username string, attributes map[string]any) (*domain.User, error)
}

type RecommendationCache interface {
	Get(ctx context.Context, k cache.Key) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, k cache.Key, recs []domain.Recommendation) error
}

// Service is the hybrid orchestrator. It holds no per-request state; the
// engines it wraps are read-only, so one Service serves all requests.
type Service struct {
	collab  CollaborativeEngine
	content ContentEngine
	users   UserStore
	cache   RecommendationCache
	logger  *zap.Logger
	newRand func() *rand.Rand
}

type Option func(*Service)

// WithCache enables caching of the ranked part of each response.
func WithCache(c RecommendationCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRandFactory replaces the per-request random source, for deterministic
// tests.
func WithRandFactory(f func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = f }
}

func NewService(collab CollaborativeEngine, content ContentEngine, users UserStore, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		collab:  collab,
		content: content,
		users:   users,
		logger:  logger.Named("service"),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRecommendations picks a strategy from the user's history size, fetches
// two thirds of n from it and fills the rest with random unseen items.
func (s *Service) GetRecommendations(ctx context.Context, userID int64, n int, genres []string) (*domain.RecommendationResult, error) {
	if n <= 0 {
		n = defaultLimit
	} else if n > maxLimit {
		n = maxLimit
	}
	genres = cleanGenres(genres)

	count := s.collab.InteractionCount(userID)
	method, ok := selectMethod(count, len(genres) > 0)
	if !ok {
		return nil, &domain.GenresRequiredError{Suggestions: s.genreSuggestions()}
	}

	nRec, nRandom := splitExploration(n)

	recs, cacheHit := s.strategyOutput(ctx, method, userID, nRec, genres)
	out := make([]domain.Recommendation, 0, n)
	out = append(out, recs...)

	label := method
	if nRandom > 0 {
		picks := s.explore(userID, out, nRandom)
		if len(picks) > 0 {
			out = append(out, picks...)
			label = fmt.Sprintf("%s + %d random", method, len(picks))
			metrics.ExplorationItemsTotal.Add(float64(len(picks)))
		}
	}

	metrics.RecommendationsTotal.WithLabelValues(method).Inc()

	return &domain.RecommendationResult{
		UserID:           userID,
		InteractionCount: count,
		Method:           label,
		Recommendations:  out,
		CacheHit:         cacheHit,
	}, nil
}

// ListGenres returns the genre vocabulary of the catalog.
func (s *Service) ListGenres() []string {
	genres := s.content.Genres()
	if genres == nil {
		return []string{}
	}
	return genres
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *Service) CreateUser(ctx context.Context, username string, attributes map[string]any) (*domain.User, error) {
	user, err := s.users.CreateUser(ctx, username, attributes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID))
	return user, nil
}

// selectMethod maps an interaction count to a strategy. ok is false for a
// user without history who gave no genres.
func selectMethod(count int, hasGenres bool) (method string, ok bool) {
	switch {
	case count >= collaborativeMinInteractions:
		return domain.MethodCollaborative, true
	case count > 0:
		return domain.MethodContentHistory, true
	case hasGenres:
		return domain.MethodContentGenres, true
	default:
		return "", false
	}
}

// splitExploration splits n into ceil(2n/3) ranked and the remaining random
// slots.
func splitExploration(n int) (nRec, nRandom int) {
	nRec = (2*n + 2) / 3
	return nRec, n - nRec
}

func (s *Service) strategyOutput(ctx context.Context, method string, userID int64, n int, genres []string) ([]domain.Recommendation, bool) {
	key := cache.Key{Method: method, UserID: userID, Limit: n, Genres: genres}

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheRequests.WithLabelValues("error").Inc()
			s.logger.Warn("cache get failed", zap.Int64("user_id", userID), zap.Error(err))
		case found:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return cached, true
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	var recs []domain.Recommendation
	switch method {
	case domain.MethodCollaborative:
		recs = s.collab.RecommendForUser(userID, n)
	case domain.MethodContentHistory:
		recs = s.content.RecommendForExistingUser(userID, n)
	case domain.MethodContentGenres:
		recs = s.content.RecommendForNewUser(genres, n)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, recs); err != nil {
			s.logger.Warn("cache set failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return recs, false
}

// explore draws up to k distinct catalog items the user has not seen and
// that are not already in chosen. Picks carry a score of 0.
func (s *Service) explore(userID int64, chosen []domain.Recommendation, k int) []domain.Recommendation {
	exclude := make(map[int64]struct{}, len(chosen))
	for _, id := range s.content.SeenItems(userID) {
		exclude[id] = struct{}{}
	}
	for _, r := range chosen {
		exclude[r.ItemID] = struct{}{}
	}

	pool := s.content.Candidates(exclude)
	k = min(k, len(pool))
	if k == 0 {
		return nil
	}

	// Partial Fisher-Yates: the first k slots are a uniform sample.
	rng := s.newRand()
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	picks := make([]domain.Recommendation, k)
	for i, it := range pool[:k] {
		picks[i] = domain.Recommendation{ItemID: it.ID, Title: it.Title, Score: 0}
	}
	return picks
}

func (s *Service) genreSuggestions() []string {
	genres := s.ListGenres()
	if len(genres) > maxGenreSuggestions {
		genres = genres[:maxGenreSuggestions]
	}
	return genres
}

func cleanGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

package model

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"go.uber.org/zap"
)

// Content is a content-based engine over TF-IDF vectors of each item's genre
// and description. Like Collaborative it is immutable once loaded.
type Content struct {
	logger *zap.Logger

	available  bool
	items      []domain.Item
	index      map[int64]int
	titles     map[int64]string
	vectorizer *tfidfVectorizer
	vectors    []sparseVector
	similarity [][]float64
	histories  map[int64][]rated
	genres     []string
}

func NewContent(logger *zap.Logger) *Content {
	return &Content{logger: logger.Named("content")}
}

// Load fetches both snapshots, fits the vectorizer and builds the item
// similarity matrix. Interactions are only kept for history-based scoring.
func (c *Content) Load(ctx context.Context, src DataSource) error {
	interactions, err := src.FetchInteractions(ctx)
	if err != nil {
		return fmt.Errorf("fetch interactions: %w", err)
	}
	items, err := src.FetchItems(ctx)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}

	if len(interactions) == 0 || len(items) == 0 {
		c.logger.Warn("not enough data, engine unavailable",
			zap.Int("interactions", len(interactions)),
			zap.Int("items", len(items)))
		return domain.ErrDataUnavailable
	}

	items = dedupeItems(items)

	docs := make([]string, len(items))
	index := make(map[int64]int, len(items))
	titles := make(map[int64]string, len(items))
	for i, it := range items {
		docs[i] = it.Genre + " " + it.Description
		index[it.ID] = i
		titles[it.ID] = it.Title
	}

	vectorizer := newTFIDFVectorizer(spanishStopWords)
	vectors := vectorizer.fitTransform(docs)

	c.similarity = sparseCosineMatrix(vectors)
	c.vectorizer = vectorizer
	c.vectors = vectors
	c.items = items
	c.index = index
	c.titles = titles
	c.histories = buildHistories(interactions)
	c.genres = collectGenres(items)
	c.available = true

	c.logger.Info("content similarity matrix built",
		zap.Int("items", len(items)),
		zap.Int("vocabulary", vectorizer.vocabularySize()))
	return nil
}

func (c *Content) Available() bool {
	return c.available
}

// Genres returns the distinct "/"-separated genre values, sorted.
func (c *Content) Genres() []string {
	if !c.available {
		return nil
	}
	return append([]string(nil), c.genres...)
}

// RecommendForNewUser ranks every item by cosine similarity to the joined
// genre terms. Terms outside the fitted vocabulary contribute nothing.
func (c *Content) RecommendForNewUser(genres []string, topN int) []domain.Recommendation {
	if !c.available || topN <= 0 {
		return nil
	}

	query := c.vectorizer.transform(strings.Join(genres, " "))

	board := newScoreBoard()
	for i, it := range c.items {
		board.add(it.ID, sparseCosine(query, c.vectors[i]))
	}
	return board.top(topN, nil, c.title)
}

// RecommendForExistingUser scores unseen items by summing similarity * rating
// over the user's whole history. Returns nil for a user without history.
func (c *Content) RecommendForExistingUser(userID int64, topN int) []domain.Recommendation {
	if !c.available || topN <= 0 {
		return nil
	}
	history := c.histories[userID]
	if len(history) == 0 {
		return nil
	}

	watched := make(map[int64]struct{}, len(history))
	for _, r := range history {
		watched[r.itemID] = struct{}{}
	}

	board := newScoreBoard()
	for _, r := range history {
		idx, ok := c.index[r.itemID]
		if !ok {
			continue
		}
		row := c.similarity[idx]
		for i, it := range c.items {
			if _, seen := watched[it.ID]; seen {
				continue
			}
			board.add(it.ID, row[i]*r.rating)
		}
	}
	return board.top(topN, nil, c.title)
}

// SeenItems returns every item id the user has interacted with, including
// ids missing from the catalog.
func (c *Content) SeenItems(userID int64) []int64 {
	history := c.histories[userID]
	ids := make([]int64, len(history))
	for i, r := range history {
		ids[i] = r.itemID
	}
	return ids
}

// Candidates returns the catalog items whose id is not in exclude, in
// catalog order.
func (c *Content) Candidates(exclude map[int64]struct{}) []domain.Item {
	if !c.available {
		return nil
	}
	out := make([]domain.Item, 0, len(c.items))
	for _, it := range c.items {
		if _, skip := exclude[it.ID]; skip {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (c *Content) title(id int64) string {
	return titleOrID(c.titles, id)
}

func collectGenres(items []domain.Item) []string {
	set := make(map[string]struct{})
	for _, it := range items {
		for _, g := range strings.Split(it.Genre, "/") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			set[g] = struct{}{}
		}
	}

	genres := make([]string, 0, len(set))
	for g := range set {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

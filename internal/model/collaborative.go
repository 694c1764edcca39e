package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"go.uber.org/zap"
)

// endorsementThreshold is the rating a history entry must exceed to
// propagate similarity in collaborative scoring.
const endorsementThreshold = 2.0

// Collaborative is an item-based collaborative filtering engine. It is built
// once by Load and is read-only afterwards, so it is safe for concurrent use.
//
// The user x item matrix stores 0 for "not rated"; a genuine rating of 0 is
// indistinguishable from a missing one.
type Collaborative struct {
	logger *zap.Logger

	available  bool
	titles     map[int64]string
	histories  map[int64][]rated
	userIDs    []int64
	itemIDs    []int64
	itemIndex  map[int64]int
	similarity [][]float64
}

func NewCollaborative(logger *zap.Logger) *Collaborative {
	return &Collaborative{logger: logger.Named("collaborative")}
}

// Load fetches both snapshots and builds the item similarity matrix. An empty
// snapshot leaves the engine unavailable and returns domain.ErrDataUnavailable.
func (c *Collaborative) Load(ctx context.Context, src DataSource) error {
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

	titles := make(map[int64]string, len(items))
	for _, it := range items {
		titles[it.ID] = it.Title
	}

	// Inner join: ratings of unknown items are dropped.
	joined := make([]domain.Interaction, 0, len(interactions))
	for _, in := range interactions {
		if _, ok := titles[in.ItemID]; ok {
			joined = append(joined, in)
		}
	}
	if len(joined) == 0 {
		c.logger.Warn("no interaction references a known item, engine unavailable")
		return domain.ErrDataUnavailable
	}

	histories := buildHistories(joined)

	userIDs := make([]int64, 0, len(histories))
	itemSet := make(map[int64]struct{})
	for uid, hist := range histories {
		userIDs = append(userIDs, uid)
		for _, r := range hist {
			itemSet[r.itemID] = struct{}{}
		}
	}
	sortIDs(userIDs)

	itemIDs := make([]int64, 0, len(itemSet))
	for id := range itemSet {
		itemIDs = append(itemIDs, id)
	}
	sortIDs(itemIDs)

	itemIndex := make(map[int64]int, len(itemIDs))
	for i, id := range itemIDs {
		itemIndex[id] = i
	}

	// Item x user orientation: one row per item, one column per user.
	itemUser := newMatrix(len(itemIDs), len(userIDs))
	for u, uid := range userIDs {
		for _, r := range histories[uid] {
			itemUser[itemIndex[r.itemID]][u] = r.rating
		}
	}

	c.similarity = cosineMatrix(itemUser)
	c.titles = titles
	c.histories = histories
	c.userIDs = userIDs
	c.itemIDs = itemIDs
	c.itemIndex = itemIndex
	c.available = true

	c.logger.Info("item similarity matrix built",
		zap.Int("interactions", len(joined)),
		zap.Int("users", len(userIDs)),
		zap.Int("items", len(itemIDs)))
	return nil
}

func (c *Collaborative) Available() bool {
	return c.available
}

// InteractionCount is the number of distinct items the user rated.
func (c *Collaborative) InteractionCount(userID int64) int {
	if !c.available {
		return 0
	}
	return len(c.histories[userID])
}

// UserIDs returns every user with at least one joined interaction, ascending.
func (c *Collaborative) UserIDs() []int64 {
	return append([]int64(nil), c.userIDs...)
}

// RecommendForUser scores unseen items by summing similarity * rating over
// the user's endorsed history (ratings above 2).
func (c *Collaborative) RecommendForUser(userID int64, topN int) []domain.Recommendation {
	if !c.available || topN <= 0 {
		return nil
	}
	history := c.histories[userID]
	if len(history) == 0 {
		return nil
	}

	board := newScoreBoard()
	watched := make(map[int64]struct{}, len(history))
	for _, r := range history {
		watched[r.itemID] = struct{}{}
		if r.rating <= endorsementThreshold {
			continue
		}
		row := c.similarity[c.itemIndex[r.itemID]]
		for j, other := range c.itemIDs {
			if other == r.itemID {
				continue
			}
			board.add(other, row[j]*r.rating)
		}
	}

	return board.top(topN, watched, func(id int64) string {
		return titleOrID(c.titles, id)
	})
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

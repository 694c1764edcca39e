package model

import (
	"context"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

// DataSource supplies the full interaction and item snapshots an engine is
// built from.
type DataSource interface {
	FetchInteractions(ctx context.Context) ([]domain.Interaction, error)
	FetchItems(ctx context.Context) ([]domain.Item, error)
}

// rated is a single entry of a user's history.
type rated struct {
	itemID int64
	rating float64
}

// buildHistories groups interactions by user, keeping one entry per item.
// A repeated (user, item) pair keeps the position of its first occurrence and
// the rating of its last.
func buildHistories(interactions []domain.Interaction) map[int64][]rated {
	histories := make(map[int64][]rated)
	positions := make(map[[2]int64]int)

	for _, in := range interactions {
		key := [2]int64{in.UserID, in.ItemID}
		if pos, ok := positions[key]; ok {
			histories[in.UserID][pos].rating = in.Rating
			continue
		}
		positions[key] = len(histories[in.UserID])
		histories[in.UserID] = append(histories[in.UserID], rated{itemID: in.ItemID, rating: in.Rating})
	}
	return histories
}

// dedupeItems keeps one item per id: first position, last value.
func dedupeItems(items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	positions := make(map[int64]int, len(items))
	for _, it := range items {
		if pos, ok := positions[it.ID]; ok {
			out[pos] = it
			continue
		}
		positions[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

package model

import (
	"math"
	"sort"
	"strconv"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

// scoreBoard accumulates per-item scores and remembers the order in which
// items were first seen. Ranking is a stable sort on that order, so equal
// scores keep first-accumulation order.
type scoreBoard struct {
	order  []int64
	scores map[int64]float64
}

func newScoreBoard() *scoreBoard {
	return &scoreBoard{scores: make(map[int64]float64)}
}

func (b *scoreBoard) add(itemID int64, v float64) {
	if _, ok := b.scores[itemID]; !ok {
		b.order = append(b.order, itemID)
	}
	b.scores[itemID] += v
}

// top returns the n best items not in exclude, scores rounded to 4 decimals.
func (b *scoreBoard) top(n int, exclude map[int64]struct{}, title func(int64) string) []domain.Recommendation {
	type entry struct {
		id    int64
		score float64
	}

	entries := make([]entry, 0, len(b.order))
	for _, id := range b.order {
		if _, skip := exclude[id]; skip {
			continue
		}
		entries = append(entries, entry{id: id, score: b.scores[id]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	recs := make([]domain.Recommendation, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, domain.Recommendation{
			ItemID: e.id,
			Title:  title(e.id),
			Score:  roundScore(e.score),
		})
	}
	return recs
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func titleOrID(titles map[int64]string, id int64) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return strconv.FormatInt(id, 10)
}

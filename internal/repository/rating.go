package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

// FetchInteractions returns every rating, oldest first, so that a repeated
// (user, movie) pair resolves to its latest rating.
func (r *Repository) FetchInteractions(ctx context.Context) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, movie_id, rating
		FROM ratings
		ORDER BY rated_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(&in.UserID, &in.ItemID, &in.Rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over ratings: %w", err)
	}
	return interactions, nil
}

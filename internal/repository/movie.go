package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

// FetchItems returns the whole movie catalog.
func (r *Repository) FetchItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, COALESCE(genre, ''), COALESCE(description, '')
		FROM movies
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Genre, &it.Description); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over movies: %w", err)
	}
	return items, nil
}

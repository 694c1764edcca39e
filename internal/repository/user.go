package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Get single user
func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	user := &domain.User{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, attributes, created_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Username, &user.Attributes, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user id=%d: %w", userID, err)
	}

	return user, nil
}

// Create user, the database assigns the id
func (r *Repository) CreateUser(ctx context.Context, username string, attributes map[string]any) (*domain.User, error) {
	user := &domain.User{}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, attributes)
		 VALUES ($1, $2)
		 RETURNING id, username, attributes, created_at`,
		username, attributes,
	).Scan(&user.ID, &user.Username, &user.Attributes, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}

	return user, nil
}

// Count total users
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

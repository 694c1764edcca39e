package service

import (
	"errors"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

// CategorizeError maps an error to a response code and message.
func CategorizeError(err error) (string, string) {
	switch {
	case domain.IsGenresRequired(err):
		return "genres_required", "user has no history: provide preferred genres in the 'genres' parameter"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists", "username already taken"
	default:
		return "internal_error", "an unexpected error occurred"
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/actuallystonmai/hybrid-recommender/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultRecommendations = 5

type recommendationParams struct {
	UserID int64 `validate:"min=1"`
	N      int   `validate:"min=1,max=50"`
}

// GET /users/{userID}/recommendations?n=5&genres=drama,comedia
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	params := recommendationParams{N: defaultRecommendations}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}
	params.UserID = userID

	if nStr := r.URL.Query().Get("n"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid n parameter")
			return
		}
		params.N = n
	}

	if err := h.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", validationMessage(err))
		return
	}

	genres := parseGenres(r.URL.Query()["genres"])

	result, err := h.service.GetRecommendations(r.Context(), params.UserID, params.N, genres)
	if err != nil {
		var genresErr *domain.GenresRequiredError
		if errors.As(err, &genresErr) {
			code, msg := service.CategorizeError(err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:            code,
				Message:          msg,
				GenreSuggestions: genresErr.Suggestions,
			})
			return
		}
		// Request timeout
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout",
				"Request timed out, please try again")
			return
		}
		h.logger.Error("recommendations failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	resp := RecommendationResponse{
		UserID:           result.UserID,
		InteractionCount: result.InteractionCount,
		MethodUsed:       result.Method,
		Recommendations:  result.Recommendations,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /genres
func (h *Handler) GetGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GenresResponse{Genres: h.service.ListGenres()})
}

// parseGenres accepts repeated and comma separated values.
func parseGenres(values []string) []string {
	var genres []string
	for _, v := range values {
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	}
	return genres
}

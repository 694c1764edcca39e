package handler

import "github.com/actuallystonmai/hybrid-recommender/internal/domain"

type RecommendationResponse struct {
	UserID           int64                     `json:"user_id"`
	InteractionCount int                       `json:"interaction_count"`
	MethodUsed       string                    `json:"method_used"`
	Recommendations  []domain.Recommendation   `json:"recommendations"`
	Metadata         domain.RecommendationMeta `json:"metadata"`
}

type GenresResponse struct {
	Genres []string `json:"genres"`
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type ErrorResponse struct {
	Error            string   `json:"error"`
	Message          string   `json:"message"`
	GenreSuggestions []string `json:"genre_suggestions,omitempty"`
}

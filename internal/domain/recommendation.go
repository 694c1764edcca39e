package domain

// Method names reported in RecommendationResult.Method.
const (
	MethodCollaborative  = "collaborative"
	MethodContentHistory = "content_history"
	MethodContentGenres  = "content_genres"
)

// Recommendation is one ranked item. Score is 0 for exploration picks.
type Recommendation struct {
	ItemID int64   `json:"item_id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	UserID           int64
	InteractionCount int
	Method           string
	Recommendations  []Recommendation
	CacheHit         bool
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          int64            `json:"user_id"`
	MethodUsed      string           `json:"method_used,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Status          BatchStatus      `json:"status"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}

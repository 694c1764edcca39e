package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type batchParams struct {
	Page  int `validate:"min=1,max=10000"`
	Limit int `validate:"min=1,max=100"`
}

// GET /recommendations/batch
func (h *Handler) GetBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	params := batchParams{Page: 1, Limit: 20}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
			return
		}
		params.Page = parsed
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		params.Limit = parsed
	}

	if err := h.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", validationMessage(err))
		return
	}

	result, err := h.service.GetBatchRecommendations(r.Context(), params.Page, params.Limit)
	if err != nil {
		h.logger.Error("batch recommendations failed", zap.Int("page", params.Page), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

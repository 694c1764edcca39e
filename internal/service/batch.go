package service

import (
	"context"
	"fmt"
	"time"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	batchConcurrency = 10
	batchRecLimit    = 10
)

// GetBatchRecommendations computes recommendations for one page of the users
// known to the collaborative engine, ordered by id.
func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	userIDs := s.collab.UserIDs()
	totalUsers := len(userIDs)

	offset := (page - 1) * limit
	if offset > len(userIDs) {
		offset = len(userIDs)
	}
	userIDs = userIDs[offset:min(offset+limit, len(userIDs))]

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, userID := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.processUserForBatch(gctx, userID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch page %d: %w", page, err)
	}

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, userID int64) domain.BatchUserResult {
	result, err := s.GetRecommendations(ctx, userID, batchRecLimit, nil)
	if err != nil {
		s.logger.Warn("batch: recommendation failed", zap.Int64("user_id", userID), zap.Error(err))
		code, msg := CategorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		MethodUsed:      result.Method,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

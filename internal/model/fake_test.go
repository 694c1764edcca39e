package model

import (
	"context"
	"testing"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
)

type fakeSource struct {
	interactions []domain.Interaction
	items        []domain.Item
	err          error
}

func (f *fakeSource) FetchInteractions(ctx context.Context) ([]domain.Interaction, error) {
	return f.interactions, f.err
}

func (f *fakeSource) FetchItems(ctx context.Context) ([]domain.Item, error) {
	return f.items, f.err
}

func assertSymmetric(t *testing.T, m [][]float64) {
	t.Helper()
	for i := range m {
		if d := m[i][i]; d < 1-1e-9 || d > 1+1e-9 {
			t.Errorf("diagonal[%d] = %f, want 1", i, d)
		}
		for j := range m {
			if diff := m[i][j] - m[j][i]; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("m[%d][%d]=%f != m[%d][%d]=%f", i, j, m[i][j], j, i, m[j][i])
			}
		}
	}
}

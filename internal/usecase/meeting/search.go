package meeting

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const (
	minQueryLength = 3
	defaultTopK    = 5
)

// Search runs a substring search over all meetings in the graph store.
// An unconfigured or unreachable graph yields an empty result, not an
// error.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]entities.SearchHit, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return nil, apperrors.ErrQueryTooShort
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	if s.graph == nil || !s.graph.Configured() {
		return []entities.SearchHit{}, nil
	}

	hits, err := s.graph.Search(ctx, query, topK)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Graph search failed, returning no hits",
				zap.String("query", query),
				zap.Error(err),
			)
		}
		return []entities.SearchHit{}, nil
	}
	if hits == nil {
		hits = []entities.SearchHit{}
	}
	return hits, nil
}

package publication

import (
	"context"
	"fmt"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// ListResult is one page of publications.
type ListResult struct {
	Items  []domain.Publication
	Total  int
	Limit  int
	Offset int
}

// List returns live publications, newest first.
func (s *Service) List(ctx context.Context, input ListInput) (ListResult, error) {
	if err := input.Validate(); err != nil {
		return ListResult{}, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.DefaultListLimit
	}

	filter := domain.PublicationFilter{Limit: limit, Offset: input.Offset}
	if input.Status != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return ListResult{}, err
		}
		filter.Status = &status
	}

	items, total, err := s.publications.List(ctx, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("list publications: %w", err)
	}
	return ListResult{Items: items, Total: total, Limit: limit, Offset: input.Offset}, nil
}

package publication

import (
	"context"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// Get returns a live publication by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Publication, error) {
	if id == uuid.Nil {
		return domain.Publication{}, domain.NewValidationError("id", "required")
	}
	return s.publications.GetByID(ctx, id)
}

// History returns the audit trail of a live publication, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]domain.AuditRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.GetByEntity(ctx, domain.EntityTypePublication, id, s.cfg.HistoryLimit)
}

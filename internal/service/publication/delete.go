package publication

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

// Delete tombstones a publication. It stays in storage but is never
// listed, read, changed or published again.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	now := s.now()
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.publications.SoftDelete(ctx, id, now); err != nil {
			return fmt.Errorf("delete publication: %w", err)
		}
		return s.audit.Log(ctx, domain.NewAuditRecord(id, domain.AuditActionDelete, map[string]any{
			"origin": ctxutil.OriginFromCtx(ctx),
		}, now))
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "publication deleted", slog.String("publication_id", id.String()))
	return nil
}

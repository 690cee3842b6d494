package publication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

// Create stores a new DRAFT publication.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Publication, error) {
	if err := input.Validate(); err != nil {
		return domain.Publication{}, err
	}

	now := s.now()
	p := domain.NewPublication(strings.TrimSpace(input.Title), strings.TrimSpace(input.Kind), now)

	var created domain.Publication
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.publications.Create(ctx, *p)
		if err != nil {
			return fmt.Errorf("create publication: %w", err)
		}
		return s.audit.Log(ctx, domain.NewAuditRecord(created.ID, domain.AuditActionCreate, map[string]any{
			"title":  created.Title,
			"kind":   created.Kind,
			"origin": ctxutil.OriginFromCtx(ctx),
		}, now))
	})
	if err != nil {
		return domain.Publication{}, err
	}

	s.log.InfoContext(ctx, "publication created",
		slog.String("publication_id", created.ID.String()),
		slog.String("kind", created.Kind),
	)
	return created, nil
}

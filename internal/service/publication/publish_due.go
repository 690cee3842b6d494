package publication

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

// PublishResult lists the records transitioned by one PublishDue call.
// Ids transitioned by concurrent calls are never included.
type PublishResult struct {
	IDs []uuid.UUID
}

// Contains reports whether id was published by this call.
func (r PublishResult) Contains(id uuid.UUID) bool {
	return slices.Contains(r.IDs, id)
}

// PublishDue publishes every scheduled record whose time has come, using the
// service clock for "now". The transition and its audit records commit
// together; on any failure nothing changes and the error wraps
// domain.ErrTransientStore.
func (s *Service) PublishDue(ctx context.Context) (PublishResult, error) {
	now := s.now()
	origin := ctxutil.OriginFromCtx(ctx)

	var ids []uuid.UUID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ids, err = s.publications.PublishDue(ctx, now)
		if err != nil {
			return fmt.Errorf("publish due: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		records := make([]domain.AuditRecord, 0, len(ids))
		for _, id := range ids {
			records = append(records, domain.NewAuditRecord(id, domain.AuditActionPublish, map[string]any{
				"status":     string(domain.StatusPublished),
				"origin":     origin,
				"request_id": ctxutil.RequestIDFromCtx(ctx),
			}, now))
		}
		if err := s.audit.Log(ctx, records...); err != nil {
			return fmt.Errorf("audit publish: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish due failed",
			slog.String("origin", origin),
			slog.String("error", err.Error()),
		)
		return PublishResult{}, asTransient(err)
	}

	if len(ids) == 0 {
		s.log.DebugContext(ctx, "publish due: nothing due", slog.String("origin", origin))
		return PublishResult{IDs: []uuid.UUID{}}, nil
	}

	s.log.InfoContext(ctx, "publications published",
		slog.Int("count", len(ids)),
		slog.String("origin", origin),
		slog.Time("now", now),
	)
	return PublishResult{IDs: ids}, nil
}

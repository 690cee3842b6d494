package publication

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

// ChangeStatus applies an author's status change. Scheduling requires a
// target and a zone; every other move clears the schedule. A scheduled time
// already in the past is accepted and picked up by the next sweep.
func (s *Service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (domain.Publication, error) {
	if err := input.Validate(); err != nil {
		return domain.Publication{}, err
	}

	change, err := input.statusChange()
	if err != nil {
		return domain.Publication{}, err
	}

	now := s.now()
	var updated domain.Publication
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.publications.ChangeStatus(ctx, input.ID, change, now)
		if err != nil {
			return fmt.Errorf("change status: %w", err)
		}

		changes := map[string]any{
			"status": string(updated.Status),
			"origin": ctxutil.OriginFromCtx(ctx),
		}
		if updated.ScheduledAt != nil {
			changes["scheduled_at"] = updated.ScheduledAt.Format(time.RFC3339)
			changes["scheduled_timezone"] = updated.ScheduledTimezone
		}
		return s.audit.Log(ctx, domain.NewAuditRecord(updated.ID, domain.AuditActionUpdate, changes, now))
	})
	if err != nil {
		return domain.Publication{}, err
	}

	attrs := []any{
		slog.String("publication_id", updated.ID.String()),
		slog.String("status", string(updated.Status)),
	}
	if updated.ScheduledAt != nil {
		attrs = append(attrs,
			slog.Time("scheduled_at", *updated.ScheduledAt),
			slog.String("scheduled_timezone", updated.ScheduledTimezone),
		)
	}
	s.log.InfoContext(ctx, "publication status changed", attrs...)

	return updated, nil
}

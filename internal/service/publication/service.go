// Package publication orchestrates the publication lifecycle: authoring
// status changes, soft deletion, audit history, and the publish-due sweep
// that every trigger and the backstop job funnel into.
package publication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

const MaxListLimit = 200

type publicationRepo interface {
	Create(ctx context.Context, p domain.Publication) (domain.Publication, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Publication, error)
	List(ctx context.Context, filter domain.PublicationFilter) ([]domain.Publication, int, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange, now time.Time) (domain.Publication, error)
	SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type auditRepo interface {
	Log(ctx context.Context, records ...domain.AuditRecord) error
	GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides publication operations.
type Service struct {
	publications publicationRepo
	audit        auditRepo
	tx           txManager
	clock        clockwork.Clock
	log          *slog.Logger
	cfg          config.PublicationConfig
}

// NewService creates a new publication service.
func NewService(
	log *slog.Logger,
	publications publicationRepo,
	audit auditRepo,
	tx txManager,
	clock clockwork.Clock,
	cfg config.PublicationConfig,
) *Service {
	return &Service{
		publications: publications,
		audit:        audit,
		tx:           tx,
		clock:        clock,
		log:          log.With("service", "publication"),
		cfg:          cfg,
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// asTransient marks a store failure as retryable unless it already is.
func asTransient(err error) error {
	if errors.Is(err, domain.ErrTransientStore) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
}

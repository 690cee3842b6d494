// Package memory is an in-process store with the same contract as the
// PostgreSQL repositories. Every operation runs under one lock, which makes
// each conditional update atomic and serializes transactions. It is meant
// for local runs and tests, not for multi-process deployments.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// Store holds publications and their audit log.
type Store struct {
	mu           sync.Mutex
	publications map[uuid.UUID]domain.Publication
	audit        []domain.AuditRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{publications: make(map[uuid.UUID]domain.Publication)}
}

type txCtxKey struct{}

// lock acquires the store lock unless ctx belongs to a transaction of this
// store, which already holds it. The returned func releases what was taken.
func (s *Store) lock(ctx context.Context) func() {
	if owner, ok := ctx.Value(txCtxKey{}).(*Store); ok && owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Ping always succeeds. It lets the store back readiness probes.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Publications
// ---------------------------------------------------------------------------

func (s *Store) Create(ctx context.Context, p domain.Publication) (domain.Publication, error) {
	defer s.lock(ctx)()

	if _, ok := s.publications[p.ID]; ok {
		return domain.Publication{}, fmt.Errorf("publication %s: %w", p.ID, domain.ErrAlreadyExists)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	s.publications[p.ID] = p
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (domain.Publication, error) {
	defer s.lock(ctx)()

	p, ok := s.publications[id]
	if !ok || p.IsDeleted() {
		return domain.Publication{}, fmt.Errorf("publication %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, filter domain.PublicationFilter) ([]domain.Publication, int, error) {
	defer s.lock(ctx)()

	var matched []domain.Publication
	for _, p := range s.publications {
		if p.IsDeleted() {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		matched = append(matched, p)
	}

	slices.SortFunc(matched, func(a, b domain.Publication) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return slices.Clone(matched[start:end]), total, nil
}

func (s *Store) ChangeStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange, now time.Time) (domain.Publication, error) {
	defer s.lock(ctx)()

	p, ok := s.publications[id]
	if !ok {
		return domain.Publication{}, fmt.Errorf("publication %s: %w", id, domain.ErrNotFound)
	}
	if err := p.Apply(change, now); err != nil {
		return domain.Publication{}, err
	}
	s.publications[id] = p
	return p, nil
}

func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	defer s.lock(ctx)()

	p, ok := s.publications[id]
	if !ok || p.IsDeleted() {
		return fmt.Errorf("publication %s: %w", id, domain.ErrNotFound)
	}
	now = now.UTC()
	p.DeletedAt = &now
	p.UpdatedAt = now
	s.publications[id] = p
	return nil
}

// PublishDue marks every due record published and returns their ids,
// earliest schedule first.
func (s *Store) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	defer s.lock(ctx)()

	var due []domain.Publication
	for _, p := range s.publications {
		if p.IsDue(now) {
			due = append(due, p)
		}
	}
	slices.SortFunc(due, func(a, b domain.Publication) int {
		if c := a.ScheduledAt.Compare(*b.ScheduledAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	ids := make([]uuid.UUID, 0, len(due))
	for _, p := range due {
		if p.MarkPublished(now) {
			s.publications[p.ID] = p
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

func (s *Store) Log(ctx context.Context, records ...domain.AuditRecord) error {
	defer s.lock(ctx)()

	for _, rec := range records {
		rec.Changes = maps.Clone(rec.Changes)
		s.audit = append(s.audit, rec)
	}
	return nil
}

func (s *Store) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	defer s.lock(ctx)()

	var out []domain.AuditRecord
	for _, rec := range s.audit {
		if rec.EntityType == entityType && rec.EntityID == entityID {
			out = append(out, rec)
		}
	}
	// Appended in commit order; newest first with a stable tie-break.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.AuditRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

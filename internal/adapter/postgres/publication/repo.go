// Package publication implements the publication repository using PostgreSQL.
// Every state change is a single conditional statement, so concurrent
// callers never need to coordinate outside the database.
package publication

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

const table = "publications"

var columns = []string{
	"id", "title", "kind", "status",
	"scheduled_at", "scheduled_timezone",
	"published_at", "deleted_at",
	"created_at", "updated_at",
}

// Repo provides publication persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new publication repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new publication and returns the persisted row.
func (r *Repo) Create(ctx context.Context, p domain.Publication) (domain.Publication, error) {
	query := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(
			p.ID, p.Title, p.Kind, string(p.Status),
			p.ScheduledAt, p.ScheduledTimezone,
			p.PublishedAt, p.DeletedAt,
			p.CreatedAt, p.UpdatedAt,
		).
		Suffix(returning())

	return r.queryOne(ctx, query, p.ID)
}

// ChangeStatus applies change to a live record in one statement and returns
// the updated row. Leaving SCHEDULED clears the schedule in the same UPDATE,
// and published_at is only ever filled, never overwritten.
// A missing or tombstoned record yields domain.ErrNotFound.
func (r *Repo) ChangeStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange, now time.Time) (domain.Publication, error) {
	if err := change.Validate(); err != nil {
		return domain.Publication{}, err
	}

	now = now.UTC()
	query := postgres.Builder.
		Update(table).
		Set("status", string(change.Status)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil}).
		Suffix(returning())

	switch change.Status {
	case domain.StatusScheduled:
		query = query.
			Set("scheduled_at", change.ScheduledAt.UTC()).
			Set("scheduled_timezone", change.ScheduledTimezone)
	case domain.StatusPublished:
		query = query.
			Set("scheduled_at", nil).
			Set("scheduled_timezone", domain.DefaultTimezone).
			Set("published_at", sq.Expr("COALESCE(published_at, ?)", now))
	case domain.StatusDraft, domain.StatusArchived:
		query = query.
			Set("scheduled_at", nil).
			Set("scheduled_timezone", domain.DefaultTimezone)
	default:
		return domain.Publication{}, fmt.Errorf("publication %s: %w", id, domain.ErrInvalidStatus)
	}

	return r.queryOne(ctx, query, id)
}

// SoftDelete sets the tombstone on a live record.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	now = now.UTC()
	sql, args, err := postgres.Builder.
		Update(table).
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "publication", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("publication %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PublishDue transitions every live SCHEDULED record with scheduled_at <= now
// to PUBLISHED and returns the ids changed by this statement only. A
// published_at left by an earlier publish is kept. The WHERE
// clause is re-checked under the row lock, so concurrent callers partition
// the due set and no id is ever returned twice.
func (r *Repo) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	now = now.UTC()
	sql, args, err := postgres.Builder.
		Update(table).
		Set("status", string(domain.StatusPublished)).
		Set("published_at", sq.Expr("COALESCE(published_at, ?)", now)).
		Set("scheduled_at", nil).
		Set("scheduled_timezone", domain.DefaultTimezone).
		Set("updated_at", now).
		Where(sq.Eq{"status": string(domain.StatusScheduled)}).
		Where(sq.LtOrEq{"scheduled_at": now}).
		Where(sq.Eq{"deleted_at": nil}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build publish due: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "publish due", uuid.Nil)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, postgres.MapError(err, "publish due", uuid.Nil)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a live publication. Tombstoned rows are reported as not found.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Publication, error) {
	query := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil})

	return r.queryOne(ctx, query, id)
}

// List returns a page of live publications, newest first, and the total
// number of rows matching the filter.
func (r *Repo) List(ctx context.Context, filter domain.PublicationFilter) ([]domain.Publication, int, error) {
	where := sq.And{sq.Eq{"deleted_at": nil}}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": string(*filter.Status)})
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	countSQL, countArgs, err := postgres.Builder.
		Select("count(*)").
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "publication list", uuid.Nil)
	}

	listSQL, listArgs, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, postgres.MapError(err, "publication list", uuid.Nil)
	}

	items, err := pgx.CollectRows(rows, scanPublication)
	if err != nil {
		return nil, 0, postgres.MapError(err, "publication list", uuid.Nil)
	}
	return items, total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func returning() string {
	s := "RETURNING "
	for i, c := range columns {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s
}

func (r *Repo) queryOne(ctx context.Context, query sq.Sqlizer, id uuid.UUID) (domain.Publication, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return domain.Publication{}, fmt.Errorf("build publication query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return domain.Publication{}, postgres.MapError(err, "publication", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPublication)
	if err != nil {
		if errors.Is(err, pgx.ErrTooManyRows) {
			return domain.Publication{}, fmt.Errorf("publication %s: %w", id, err)
		}
		return domain.Publication{}, postgres.MapError(err, "publication", id)
	}
	return p, nil
}

func scanPublication(row pgx.CollectableRow) (domain.Publication, error) {
	var (
		p      domain.Publication
		status string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Kind, &status,
		&p.ScheduledAt, &p.ScheduledTimezone,
		&p.PublishedAt, &p.DeletedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Publication{}, err
	}

	p.Status = domain.Status(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.ScheduledAt = utcPtr(p.ScheduledAt)
	p.PublishedAt = utcPtr(p.PublishedAt)
	p.DeletedAt = utcPtr(p.DeletedAt)
	return p, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Package audit implements the audit log repository using PostgreSQL.
// It provides append-only operations for audit log records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

const table = "audit_log"

var columns = []string{"id", "entity_type", "entity_id", "action", "changes", "created_at"}

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Log appends records in one multi-row INSERT. It joins the transaction in
// ctx when there is one, so a sweep and its audit rows commit together.
func (r *Repo) Log(ctx context.Context, records ...domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	insert := postgres.Builder.Insert(table).Columns(columns...)
	for _, rec := range records {
		changes, err := marshalChanges(rec.Changes)
		if err != nil {
			return fmt.Errorf("audit_record %s marshal changes: %w", rec.ID, err)
		}
		insert = insert.Values(rec.ID, string(rec.EntityType), rec.EntityID, string(rec.Action), changes, rec.CreatedAt)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_record", records[0].ID)
	}
	return nil
}

// GetByEntity returns the change history for a specific entity, ordered by
// created_at DESC, limited to `limit` records.
func (r *Repo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"entity_type": string(entityType), "entity_id": entityID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "audit_records", entityID)
	}

	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, postgres.MapError(err, "audit_records", entityID)
	}
	return records, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func marshalChanges(changes map[string]any) ([]byte, error) {
	if changes == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(changes)
}

func scanRecord(row pgx.CollectableRow) (domain.AuditRecord, error) {
	var (
		rec        domain.AuditRecord
		entityType string
		action     string
		raw        []byte
	)
	if err := row.Scan(&rec.ID, &entityType, &rec.EntityID, &action, &raw, &rec.CreatedAt); err != nil {
		return domain.AuditRecord{}, err
	}

	rec.EntityType = domain.EntityType(entityType)
	rec.Action = domain.AuditAction(action)
	rec.CreatedAt = rec.CreatedAt.UTC()

	if len(raw) > 0 {
		changes := make(map[string]any)
		if err := json.Unmarshal(raw, &changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit_record %s unmarshal changes: %w", rec.ID, err)
		}
		rec.Changes = changes
	}
	return rec, nil
}

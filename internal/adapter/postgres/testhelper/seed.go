package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedDraft inserts a DRAFT publication and returns it.
func SeedDraft(t *testing.T, pool *pgxpool.Pool) domain.Publication {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.NewPublication("Draft "+uniqueSuffix(), "", now)
	insert(t, pool, *p)
	return *p
}

// SeedScheduled inserts a SCHEDULED publication due at the given instant.
func SeedScheduled(t *testing.T, pool *pgxpool.Pool, at time.Time, zone string) domain.Publication {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := domain.NewPublication("Scheduled "+uniqueSuffix(), "", now)
	at = at.UTC().Truncate(time.Microsecond)
	p.Status = domain.StatusScheduled
	p.ScheduledAt = &at
	p.ScheduledTimezone = zone
	insert(t, pool, *p)
	return *p
}

// Tombstone marks id as deleted without touching its status.
func Tombstone(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`UPDATE publications SET deleted_at = now() WHERE id = $1`, id)
	if err != nil {
		t.Fatalf("testhelper: Tombstone: %v", err)
	}
}

// ReadStatus returns the stored status and published_at of id, tombstoned or not.
func ReadStatus(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) (domain.Status, *time.Time) {
	t.Helper()

	var (
		status      string
		publishedAt *time.Time
	)
	err := pool.QueryRow(context.Background(),
		`SELECT status, published_at FROM publications WHERE id = $1`, id,
	).Scan(&status, &publishedAt)
	if err != nil {
		t.Fatalf("testhelper: ReadStatus: %v", err)
	}
	return domain.Status(status), publishedAt
}

func insert(t *testing.T, pool *pgxpool.Pool, p domain.Publication) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO publications (id, title, kind, status, scheduled_at, scheduled_timezone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, p.Kind, string(p.Status), p.ScheduledAt, p.ScheduledTimezone, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: insert publication: %v", err)
	}
}

package publication

import (
	"context"
	"errors"
	"net"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

var publishDueSQL = regexp.QuoteMeta(
	"UPDATE publications SET status = $1, published_at = COALESCE(published_at, $2), scheduled_at = $3, scheduled_timezone = $4, updated_at = $5 " +
		"WHERE status = $6 AND scheduled_at <= $7 AND deleted_at IS NULL RETURNING id")

func TestRepo_PublishDue(t *testing.T) {
	now := time.Date(2026, 2, 28, 14, 0, 0, 0, time.UTC)
	id1, id2 := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    []uuid.UUID
		wantErr error
	}{
		{
			name: "returns ids changed by this statement",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(publishDueSQL).
					WithArgs("PUBLISHED", pgxmock.AnyArg(), nil, "UTC", pgxmock.AnyArg(), "SCHEDULED", pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id1).AddRow(id2))
			},
			want: []uuid.UUID{id1, id2},
		},
		{
			name: "nothing due",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(publishDueSQL).
					WithArgs("PUBLISHED", pgxmock.AnyArg(), nil, "UTC", pgxmock.AnyArg(), "SCHEDULED", pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"id"}))
			},
			want: []uuid.UUID{},
		},
		{
			name: "connection failure is transient",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(publishDueSQL).
					WithArgs("PUBLISHED", pgxmock.AnyArg(), nil, "UTC", pgxmock.AnyArg(), "SCHEDULED", pgxmock.AnyArg()).
					WillReturnError(&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET})
			},
			wantErr: domain.ErrTransientStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setup(mock)

			got, err := repo.PublishDue(context.Background(), now)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PublishDue() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("PublishDue() unexpected error: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("PublishDue() returned %d ids, want %d", len(got), len(tt.want))
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Errorf("id[%d] = %s, want %s", i, got[i], tt.want[i])
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRepo_PublishDue_UsesUTC(t *testing.T) {
	repo, mock := newMockRepo(t)

	loc := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, 2, 28, 9, 0, 0, 0, loc)
	utc := local.UTC()

	mock.ExpectQuery(publishDueSQL).
		WithArgs("PUBLISHED", utc, nil, "UTC", utc, "SCHEDULED", utc).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	if _, err := repo.PublishDue(context.Background(), local); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_ChangeStatus_LeavingScheduledClearsSchedule(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	sql := regexp.QuoteMeta("UPDATE publications SET status = $1, updated_at = $2, scheduled_at = $3, scheduled_timezone = $4 " +
		"WHERE id = $5 AND deleted_at IS NULL RETURNING id, title")

	mock.ExpectQuery(sql).
		WithArgs("DRAFT", now, nil, "UTC", id.String()).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(id, "Go basics", "formation", "DRAFT", (*time.Time)(nil), "UTC", (*time.Time)(nil), (*time.Time)(nil), now, now))

	got, err := repo.ChangeStatus(context.Background(), id, domain.StatusChange{Status: domain.StatusDraft}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusDraft || got.ScheduledAt != nil || got.ScheduledTimezone != "UTC" {
		t.Errorf("unexpected record: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_ChangeStatus_PublishKeepsFirstPublishedAt(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := now.Add(-48 * time.Hour)

	sql := regexp.QuoteMeta("published_at = COALESCE(published_at, $5)")

	mock.ExpectQuery(sql).
		WithArgs("PUBLISHED", now, nil, "UTC", now, id.String()).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(id, "Go basics", "formation", "PUBLISHED", (*time.Time)(nil), "UTC", &first, (*time.Time)(nil), now, now))

	got, err := repo.ChangeStatus(context.Background(), id, domain.StatusChange{Status: domain.StatusPublished}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(first) {
		t.Errorf("published_at = %v, want %v", got.PublishedAt, first)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_ChangeStatus_MissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("UPDATE publications").
		WithArgs("ARCHIVED", pgxmock.AnyArg(), nil, "UTC", id.String()).
		WillReturnRows(pgxmock.NewRows(columns))

	_, err := repo.ChangeStatus(context.Background(), id, domain.StatusChange{Status: domain.StatusArchived}, time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_ChangeStatus_ValidatesBeforeQuerying(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.ChangeStatus(context.Background(), uuid.New(), domain.StatusChange{Status: domain.StatusScheduled}, time.Now())
	if !errors.Is(err, domain.ErrMissingScheduleFields) {
		t.Fatalf("expected ErrMissingScheduleFields, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query expected: %v", err)
	}
}

func TestRepo_ChangeStatus_CheckViolationIsValidation(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("UPDATE publications").
		WithArgs("DRAFT", pgxmock.AnyArg(), nil, "UTC", id.String()).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "publications_schedule_check"})

	_, err := repo.ChangeStatus(context.Background(), id, domain.StatusChange{Status: domain.StatusDraft}, time.Now())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_SoftDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"live record", 1, nil},
		{"already deleted or missing", 0, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			id := uuid.New()

			mock.ExpectExec(regexp.QuoteMeta("UPDATE publications SET deleted_at = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL")).
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), id.String()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.SoftDelete(context.Background(), id, time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SoftDelete() error = %v, want %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRepo_List_FiltersLiveRecords(t *testing.T) {
	repo, mock := newMockRepo(t)
	status := domain.StatusScheduled
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	at := now.Add(time.Hour)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM publications WHERE (deleted_at IS NULL AND status = $1)")).
		WithArgs("SCHEDULED").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM publications WHERE (deleted_at IS NULL AND status = $1) ORDER BY created_at DESC, id LIMIT 10 OFFSET 0")).
		WithArgs("SCHEDULED").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(id, "Go basics", "formation", "SCHEDULED", &at, "America/Port-au-Prince", (*time.Time)(nil), (*time.Time)(nil), now, now))

	items, total, err := repo.List(context.Background(), domain.PublicationFilter{Status: &status, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("got total=%d items=%d, want 1/1", total, len(items))
	}
	if items[0].ScheduledTimezone != "America/Port-au-Prince" {
		t.Errorf("timezone = %q", items[0].ScheduledTimezone)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

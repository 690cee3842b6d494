package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a publication.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusScheduled Status = "SCHEDULED"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", NewFieldError(ErrInvalidStatus, "status", fmt.Sprintf("unknown status %q", raw))
	}
	return s, nil
}

const (
	// DefaultTimezone is the neutral zone stored while a record is not scheduled.
	DefaultTimezone = "UTC"
	// DefaultKind is used when a publication is created without a kind.
	DefaultKind = "formation"

	MaxTitleLength = 200
)

// Publication is a publishable record together with its scheduling state.
type Publication struct {
	ID                uuid.UUID
	Title             string
	Kind              string
	Status            Status
	ScheduledAt       *time.Time
	ScheduledTimezone string
	PublishedAt       *time.Time
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPublication returns a draft publication with a fresh ID.
func NewPublication(title, kind string, now time.Time) *Publication {
	if kind == "" {
		kind = DefaultKind
	}
	now = now.UTC()
	return &Publication{
		ID:                uuid.New(),
		Title:             title,
		Kind:              kind,
		Status:            StatusDraft,
		ScheduledTimezone: DefaultTimezone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsDeleted returns true if the publication carries a tombstone.
func (p *Publication) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsDue reports whether a sweep running at now selects p.
func (p *Publication) IsDue(now time.Time) bool {
	return p.DeletedAt == nil &&
		p.Status == StatusScheduled &&
		p.ScheduledAt != nil &&
		!p.ScheduledAt.After(now)
}

// StatusChange is an author-requested lifecycle move.
// ScheduledAt and ScheduledTimezone are only read for StatusScheduled.
type StatusChange struct {
	Status            Status
	ScheduledAt       *time.Time
	ScheduledTimezone string
}

// Validate checks the change is complete for its target status.
func (c StatusChange) Validate() error {
	switch c.Status {
	case StatusScheduled:
		var errs []FieldError
		if c.ScheduledAt == nil || c.ScheduledAt.IsZero() {
			errs = append(errs, FieldError{Field: "scheduled_at", Message: "required when status is SCHEDULED"})
		}
		if strings.TrimSpace(c.ScheduledTimezone) == "" {
			errs = append(errs, FieldError{Field: "scheduled_timezone", Message: "required when status is SCHEDULED"})
		}
		if len(errs) > 0 {
			return &ValidationError{Errors: errs, Cause: ErrMissingScheduleFields}
		}
		return nil
	case StatusDraft, StatusPublished, StatusArchived:
		return nil
	default:
		return NewFieldError(ErrInvalidStatus, "status", fmt.Sprintf("unknown status %q", c.Status))
	}
}

// Apply performs the change on p. Leaving SCHEDULED clears the schedule
// in the same step, and PublishedAt survives every later change.
func (p *Publication) Apply(c StatusChange, now time.Time) error {
	if p.IsDeleted() {
		return fmt.Errorf("publication %s: %w", p.ID, ErrNotFound)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	now = now.UTC()

	switch c.Status {
	case StatusScheduled:
		at := c.ScheduledAt.UTC()
		p.ScheduledAt = &at
		p.ScheduledTimezone = c.ScheduledTimezone
	case StatusPublished:
		p.clearSchedule()
		if p.PublishedAt == nil {
			p.PublishedAt = &now
		}
	case StatusDraft, StatusArchived:
		p.clearSchedule()
	}

	p.Status = c.Status
	p.UpdatedAt = now
	return nil
}

// MarkPublished is the sweep transition. It reports false and leaves p
// untouched when p is not due at now. A PublishedAt from an earlier
// publish is kept.
func (p *Publication) MarkPublished(now time.Time) bool {
	if !p.IsDue(now) {
		return false
	}
	now = now.UTC()
	p.Status = StatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.clearSchedule()
	p.UpdatedAt = now
	return true
}

func (p *Publication) clearSchedule() {
	p.ScheduledAt = nil
	p.ScheduledTimezone = DefaultTimezone
}

// PublicationFilter narrows a publication listing.
type PublicationFilter struct {
	Status *Status
	Limit  int
	Offset int
}

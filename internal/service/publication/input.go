package publication

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/timezone"
)

const maxKindLength = 50

// CreateInput holds the parameters for creating a publication.
type CreateInput struct {
	Title string
	Kind  string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	title := strings.TrimSpace(i.Title)
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 200 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(i.Kind)) > maxKindLength {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "max 50 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ChangeStatusInput holds an author's status change. For SCHEDULED the target
// is given either as an absolute ScheduledAt or as a wall-clock
// ScheduledLocal read in ScheduledTimezone.
type ChangeStatusInput struct {
	ID                uuid.UUID
	Status            string
	ScheduledAt       *time.Time
	ScheduledLocal    string
	ScheduledTimezone string
}

// Validate checks the id and the status name. Schedule fields are checked
// when the change is resolved.
func (i ChangeStatusInput) Validate() error {
	var errs []domain.FieldError
	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	if strings.TrimSpace(i.Status) == "" {
		errs = append(errs, domain.FieldError{Field: "status", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// statusChange resolves the input into a domain change, converting a local
// wall-clock value to UTC in the requested zone.
func (i ChangeStatusInput) statusChange() (domain.StatusChange, error) {
	status, err := domain.ParseStatus(i.Status)
	if err != nil {
		return domain.StatusChange{}, err
	}

	if status != domain.StatusScheduled {
		return domain.StatusChange{Status: status}, nil
	}

	zone := strings.TrimSpace(i.ScheduledTimezone)
	local := strings.TrimSpace(i.ScheduledLocal)

	var errs []domain.FieldError
	if i.ScheduledAt == nil && local == "" {
		errs = append(errs, domain.FieldError{Field: "scheduled_at", Message: "required when status is SCHEDULED"})
	}
	if zone == "" {
		errs = append(errs, domain.FieldError{Field: "scheduled_timezone", Message: "required when status is SCHEDULED"})
	}
	if len(errs) > 0 {
		return domain.StatusChange{}, &domain.ValidationError{Errors: errs, Cause: domain.ErrMissingScheduleFields}
	}
	if i.ScheduledAt != nil && local != "" {
		return domain.StatusChange{}, domain.NewFieldError(domain.ErrInvalidDateTime, "scheduled_local", "give scheduled_at or scheduled_local, not both")
	}

	if _, err := timezone.Load(zone); err != nil {
		return domain.StatusChange{}, err
	}

	at := i.ScheduledAt
	if local != "" {
		inst, err := timezone.ToInstant(local, zone)
		if err != nil {
			return domain.StatusChange{}, err
		}
		at = &inst
	}
	utc := at.UTC()

	return domain.StatusChange{Status: status, ScheduledAt: &utc, ScheduledTimezone: zone}, nil
}

// ListInput holds the parameters for listing publications.
type ListInput struct {
	Status string
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Status != "" {
		if _, err := domain.ParseStatus(i.Status); err != nil {
			errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
		}
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > MaxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "max 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Package timezone converts between wall-clock values entered in an IANA
// zone and absolute UTC instants.
//
// Wall-clock values that do not map to exactly one instant are resolved with
// one fixed rule:
//   - a repeated wall time (DST fall-back) resolves to its first occurrence;
//   - a skipped wall time (DST spring-forward gap) is read with the offset in
//     force before the transition, which moves it forward by the gap length
//     (02:30 in a 02:00→03:00 gap becomes 03:30).
package timezone

import (
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // zone database embedded so hosts without zoneinfo still resolve names

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// InputLayout is the minute-precision layout used by date-time-local controls.
const InputLayout = "2006-01-02T15:04"

const (
	longLayout    = "Monday, 2 January 2006 at 15:04 MST"
	compactLayout = "2006-01-02 15:04 MST"
	offsetLayout  = "-07:00"
)

var naiveLayouts = []string{
	InputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

var offsetLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339,
	time.RFC3339Nano,
}

var supported = []string{
	"UTC",
	"America/Port-au-Prince",
	"America/Santo_Domingo",
	"America/New_York",
	"America/Chicago",
	"America/Los_Angeles",
	"America/Toronto",
	"America/Sao_Paulo",
	"Europe/London",
	"Europe/Paris",
	"Africa/Abidjan",
	"Asia/Tokyo",
	"Australia/Sydney",
}

// Supported returns the curated zone list offered by zone selectors.
// Any valid IANA name is accepted by the converter, listed or not.
func Supported() []string {
	return slices.Clone(supported)
}

// Load resolves an IANA zone name. "Local" and the empty string are rejected
// because they depend on the host the process runs on.
func Load(zone string) (*time.Location, error) {
	name := strings.TrimSpace(zone)
	if name == "" || name == "Local" {
		return nil, domain.NewFieldError(domain.ErrInvalidTimeZone, "scheduled_timezone", "IANA zone name required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, domain.NewFieldError(domain.ErrInvalidTimeZone, "scheduled_timezone", fmt.Sprintf("unknown zone %q", zone))
	}
	return loc, nil
}

// ToInstant interprets local as a wall-clock value in zone and returns the
// matching UTC instant. A value carrying an explicit offset is accepted only
// when that offset is the one zone uses at the resulting instant.
func ToInstant(local, zone string) (time.Time, error) {
	loc, err := Load(zone)
	if err != nil {
		return time.Time{}, err
	}

	raw := strings.TrimSpace(local)
	if raw == "" {
		return time.Time{}, domain.NewFieldError(domain.ErrInvalidDateTime, "scheduled_local", "required")
	}

	for _, layout := range naiveLayouts {
		if wall, err := time.Parse(layout, raw); err == nil {
			return resolve(wall, loc), nil
		}
	}

	for _, layout := range offsetLayouts {
		inst, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		_, given := inst.Zone()
		if _, actual := inst.In(loc).Zone(); actual != given {
			return time.Time{}, domain.NewFieldError(domain.ErrInvalidDateTime, "scheduled_local",
				fmt.Sprintf("offset %s is not used by %s at that time", inst.Format(offsetLayout), loc))
		}
		return inst.UTC(), nil
	}

	return time.Time{}, domain.NewFieldError(domain.ErrInvalidDateTime, "scheduled_local",
		fmt.Sprintf("cannot parse %q, expected YYYY-MM-DDTHH:MM", local))
}

// FormatInZone renders instant as local time in zone. long selects the
// verbose form. The abbreviation is the one in force at instant.
func FormatInZone(instant time.Time, zone string, long bool) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	if long {
		return instant.In(loc).Format(longLayout), nil
	}
	return instant.In(loc).Format(compactLayout), nil
}

// LocalInputValue returns the minute-precision wall-clock value for instant
// in zone, the inverse of ToInstant. Instants in the second pass of a
// repeated hour carry their offset, since the bare wall value would resolve
// to the first pass.
func LocalInputValue(instant time.Time, zone string) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}

	l := instant.In(loc)
	wall := time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), 0, 0, time.UTC)
	value := wall.Format(InputLayout)

	_, off := l.Zone()
	if _, resolved := resolve(wall, loc).In(loc).Zone(); resolved != off {
		value += l.Format(offsetLayout)
	}
	return value, nil
}

// resolve maps wall (fields read as-is, location ignored) to an instant in loc.
func resolve(wall time.Time, loc *time.Location) time.Time {
	wall = time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)

	// Offsets in force within a day either side cover any single transition.
	var offsets []int
	for _, probe := range []time.Time{wall.Add(-24 * time.Hour), wall, wall.Add(24 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		if !slices.Contains(offsets, off) {
			offsets = append(offsets, off)
		}
	}

	var (
		best  time.Time
		found bool
	)
	for _, off := range offsets {
		inst := wall.Add(-time.Duration(off) * time.Second)
		if _, actual := inst.In(loc).Zone(); actual != off {
			continue
		}
		if !found || inst.Before(best) {
			best, found = inst, true
		}
	}
	if found {
		return best.UTC()
	}

	// Gap: read the wall value with the pre-transition offset.
	_, before := wall.Add(-24 * time.Hour).In(loc).Zone()
	return wall.Add(-time.Duration(before) * time.Second).UTC()
}

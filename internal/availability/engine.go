package availability

import (
	"context"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DefaultCatalog lists the bookable hours of a working day, ascending.
// Lunch hour is excluded.
var DefaultCatalog = []string{
	"08:00", "09:00", "10:00", "11:00",
	"13:00", "14:00", "15:00", "16:00", "17:00",
}

// BookedHoursSource reports the hours occupied by active appointments on a day.
// An appointment is active unless its status is cancelled or completed.
type BookedHoursSource interface {
	ActiveHours(ctx context.Context, day time.Time) ([]int, error)
}

// Engine computes open slots for a date against the ledger.
type Engine struct {
	catalog []string
	booked  BookedHoursSource
}

// NewEngine builds an engine over the given slot catalog. A nil or empty
// catalog falls back to DefaultCatalog.
func NewEngine(catalog []string, booked BookedHoursSource) *Engine {
	if booked == nil {
		panic("availability: booked hours source required")
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	return &Engine{catalog: catalog, booked: booked}
}

// Catalog returns the full slot catalog.
func (e *Engine) Catalog() []string {
	out := make([]string, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// AvailableSlots returns the catalog minus slots whose hour is occupied by an
// active appointment on the given date. Slot granularity is the hour: two
// appointments in the same hour occupy the same slot.
func (e *Engine) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	hours, err := e.booked.ActiveHours(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("availability: query booked hours: %w", err)
	}

	occupied := make(map[string]bool, len(hours))
	for _, h := range hours {
		occupied[fmt.Sprintf("%02d:00", h)] = true
	}

	open := make([]string, 0, len(e.catalog))
	for _, slot := range e.catalog {
		if !occupied[slot] {
			open = append(open, slot)
		}
	}
	return open, nil
}

// ParseDate validates and parses a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}

// DatesInRange expands an inclusive start/end date pair into individual days.
// maxDays bounds the expansion so a bad range cannot fan out unboundedly.
func DatesInRange(startDate, endDate string, maxDays int) ([]string, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
		if maxDays > 0 && len(days) >= maxDays {
			break
		}
	}
	return days, nil
}

package engine

import (
	"sort"
	"time"

	"github.com/tartampluch/candela/internal/config"
)

const hoursPerDay = 24

// Date is a civil calendar date without time of day or zone.
// Arithmetic on it is done in UTC so DST transitions never shift a day count.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysTo returns the number of whole days from d to o.
func (d Date) DaysTo(o Date) int {
	return int(o.Time().Sub(d.Time()).Hours()) / hoursPerDay
}

// daysIn returns the length of month in year.
func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDate reports whether (day, month) exists in the given year.
func ValidDate(year, day, month int) bool {
	if month < config.MinMonth || month > config.MaxMonth || day < config.MinDay {
		return false
	}
	return day <= daysIn(year, time.Month(month))
}

// Occurrence resolves (day, month) in year, substituting min(day, 28) when the
// date does not exist (Feb 29 outside leap years, Apr 31, Feb 30...).
// Months outside 1..12 and days below 1 are pulled into range first.
func Occurrence(year, day, month int) Date {
	month = min(max(month, config.MinMonth), config.MaxMonth)
	day = max(day, config.MinDay)
	if !ValidDate(year, day, month) {
		day = min(day, config.ClampDay)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}
}

// NextOccurrence returns the first occurrence of (day, month) on or after today.
func NextOccurrence(today Date, day, month int) Date {
	candidate := Occurrence(today.Year, day, month)
	if candidate.Before(today) {
		candidate = Occurrence(today.Year+1, day, month)
	}
	return candidate
}

// DaysUntil returns the number of days from today to the next occurrence of
// (day, month). A same-day match yields 0; the result is always in [0, 366).
func DaysUntil(today Date, day, month int) int {
	return today.DaysTo(NextOccurrence(today, day, month))
}

// IsUpcoming reports whether the next occurrence falls within threshold days.
func IsUpcoming(today Date, day, month, threshold int) bool {
	return DaysUntil(today, day, month) <= threshold
}

// Proximity binds the pure calculator to a Clock.
type Proximity struct {
	Clock Clock
}

// NewProximity returns a calculator bound to the real clock.
func NewProximity() *Proximity {
	return &Proximity{Clock: RealClock{}}
}

// Today returns the calendar date of the clock's current instant.
func (p *Proximity) Today() Date {
	return DateOf(p.Clock.Now())
}

// DaysUntil is DaysUntil relative to the clock's today.
func (p *Proximity) DaysUntil(day, month int) int {
	return DaysUntil(p.Today(), day, month)
}

// IsUpcoming is IsUpcoming relative to the clock's today.
// Callers without a configured threshold pass config.DefaultUpcomingThreshold.
func (p *Proximity) IsUpcoming(day, month, threshold int) bool {
	return IsUpcoming(p.Today(), day, month, threshold)
}

// Schedule annotates events with their proximity and orders them ascending.
// Ties keep the input order.
func Schedule(today Date, events []Event) []ScheduledEvent {
	out := make([]ScheduledEvent, 0, len(events))
	for _, e := range events {
		out = append(out, ScheduledEvent{
			Event:     e,
			DaysUntil: DaysUntil(today, e.Day, e.Month),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	return out
}

// Partition splits sorted events into the upcoming bucket (DaysUntil <= threshold)
// and the rest. Both slices keep the input order.
func Partition(events []ScheduledEvent, threshold int) (upcoming, others []ScheduledEvent) {
	for _, e := range events {
		if e.DaysUntil <= threshold {
			upcoming = append(upcoming, e)
		} else {
			others = append(others, e)
		}
	}
	return upcoming, others
}

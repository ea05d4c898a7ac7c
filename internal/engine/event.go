package engine

import "github.com/tartampluch/candela/internal/config"

// EventType classifies what an annual date commemorates.
type EventType string

const (
	Birthday    EventType = config.EventTypeBirthday
	Anniversary EventType = config.EventTypeAnniversary
	Special     EventType = config.EventTypeSpecial
)

// EventTypes lists the accepted event types in display order.
var EventTypes = []EventType{Birthday, Anniversary, Special}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case Birthday, Anniversary, Special:
		return true
	}
	return false
}

// AnniversaryType refines an Anniversary event.
type AnniversaryType string

const (
	Wedding      AnniversaryType = config.AnniversaryWedding
	Relationship AnniversaryType = config.AnniversaryRelationship
	Memorial     AnniversaryType = config.AnniversaryMemorial
	OtherAnniv   AnniversaryType = config.AnniversaryOther
)

// AnniversaryTypes lists the accepted anniversary kinds in display order.
var AnniversaryTypes = []AnniversaryType{Wedding, Relationship, Memorial, OtherAnniv}

// Valid reports whether a is one of the known anniversary kinds.
func (a AnniversaryType) Valid() bool {
	switch a {
	case Wedding, Relationship, Memorial, OtherAnniv:
		return true
	}
	return false
}

// Event is a persisted annually recurring date.
// Day and Month are stored as entered; they need not form a valid date.
type Event struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Day             int              `json:"day"`
	Month           int              `json:"month"`
	Year            *int             `json:"year"`
	Notes           string           `json:"notes"`
	EventType       EventType        `json:"event_type"`
	AnniversaryType *AnniversaryType `json:"anniversary_type"`
	CreatedAt       string           `json:"created_at"`
}

// YearKnown reports whether the event carries a reference year.
func (e Event) YearKnown() bool {
	return e.Year != nil
}

// ScheduledEvent is an Event annotated with its proximity to "today".
// It is what the display layer consumes.
type ScheduledEvent struct {
	Event

	// DaysUntil is the number of days until the next occurrence (0 = today).
	DaysUntil int `json:"days_until"`
}

// AgeNext returns the number of years completed at the next occurrence.
// The second value is false when the year is unknown.
func (s ScheduledEvent) AgeNext(today Date) (int, bool) {
	if s.Year == nil {
		return 0, false
	}
	next := today.AddDays(s.DaysUntil)
	return next.Year - *s.Year, true
}

// Draft carries the caller-supplied fields of a new event.
// The store assigns ID and CreatedAt.
type Draft struct {
	Name            string
	Day             int
	Month           int
	Year            *int
	Notes           string
	EventType       EventType
	AnniversaryType *AnniversaryType
}

// Matches reports whether e describes the same date for the same person as d.
func (d Draft) Matches(e Event) bool {
	return e.Name == d.Name && e.Day == d.Day && e.Month == d.Month && e.EventType == d.EventType
}

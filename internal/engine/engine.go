package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/candela/internal/config"
)

// Generator renders the event collection as an iCalendar document.
// The output feeds both the .ics export and the local calendar feed.
type Generator struct {
	Clock Clock // Interface for time mocking.

	// FormatSummary allows the UI to inject localized strings into the logic layer.
	FormatSummary func(e Event, age int, yearKnown bool) string
}

// Generate builds the calendar for events. When reminderDays is positive, every
// occurrence gets a DISPLAY alarm that many days before.
// It returns the ICS data and the number of events occurring today.
func (g *Generator) Generate(ctx context.Context, events []Event, reminderDays int) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Dates are resolved on the local calendar, the stamp is UTC.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := DateOf(now)
	countToday := 0

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		vevents, isToday := g.createEvents(e, today, reminderDays)
		if isToday {
			countToday++
		}
		for _, ve := range vevents {
			ve.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, ve.Component)
		}
	}

	if len(cal.Children) == 0 {
		g.logSuccess(len(events), 0, start)
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(len(events), countToday, start)
	return buf.Bytes(), countToday, nil
}

// logSuccess logs the final statistics of the generation process.
func (g *Generator) logSuccess(total, today int, start time.Time) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvents, total),
			slog.Int(config.LogKeyUpcoming, today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}

// createEvents generates occurrences for the previous, current and next year so
// calendar clients can scroll a little without a refresh.
// No occurrence is created before the reference year of the event.
func (g *Generator) createEvents(e Event, today Date, reminderDays int) ([]*ical.Event, bool) {
	targetYears := []int{today.Year - 1, today.Year, today.Year + 1}

	var events []*ical.Event
	isToday := false

	for _, y := range targetYears {
		if e.Year != nil && y < *e.Year {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, e.ID, y, config.ICalDomain))

		age := 0
		if e.Year != nil {
			age = y - *e.Year
		}

		summary := e.Name
		if g.FormatSummary != nil {
			summary = g.FormatSummary(e, age, e.Year != nil)
		} else if e.Year != nil && age > 0 {
			summary = fmt.Sprintf(config.FallbackSummaryAge, e.Name, age)
		}
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropCategories, string(e.EventType))
		if e.Notes != "" {
			event.Props.SetText(config.PropDescription, e.Notes)
		}

		occ := Occurrence(y, e.Day, e.Month)
		if occ == today {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(occ.Time())
		event.Props.Set(dtStartProp)

		if reminderDays > 0 {
			addAlarm(event, fmt.Sprintf(config.FormatTrigger, reminderDays), summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

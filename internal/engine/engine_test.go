package engine_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func yearPtr(y int) *int { return &y }

// -----------------------------------------------------------------------------
// Generator
// -----------------------------------------------------------------------------

func TestGenerate_BirthdayToday(t *testing.T) {
	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	events := []engine.Event{
		{ID: 1, Name: "John Doe", Day: 1, Month: 1, Year: yearPtr(2000), EventType: engine.Birthday},
	}

	ics, count, err := gen.Generate(context.Background(), events, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, count, "Should identify one event today")

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:John Doe (25)")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250101")
	assert.Contains(t, icsStr, "UID:event-1-2025@candela")
	assert.Contains(t, icsStr, "CATEGORIES:birthday")
	assert.NotContains(t, icsStr, "BEGIN:VALARM", "No reminder requested")
}

func TestGenerate_YearRange(t *testing.T) {
	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	events := []engine.Event{{ID: 7, Name: "Range Test", Day: 31, Month: 12, EventType: engine.Special}}

	ics, count, err := gen.Generate(context.Background(), events, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231", "Should include previous year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231", "Should include current year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231", "Should include next year")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
	assert.Contains(t, icsStr, "SUMMARY:Range Test", "Unknown year keeps the plain name")
}

func TestGenerate_SkipsYearsBeforeReference(t *testing.T) {
	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		FormatSummary: func(e engine.Event, age int, yearKnown bool) string {
			if age == 0 {
				return fmt.Sprintf("%s (new)", e.Name)
			}
			return fmt.Sprintf("%s (%d)", e.Name, age)
		},
	}
	events := []engine.Event{{ID: 2, Name: "Baby", Day: 1, Month: 5, Year: yearPtr(2025), EventType: engine.Birthday}}

	ics, _, err := gen.Generate(context.Background(), events, 0)
	require.NoError(t, err)

	icsStr := string(ics)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, icsStr, "SUMMARY:Baby (new)")
	assert.Contains(t, icsStr, "SUMMARY:Baby (1)")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestGenerate_ClampsInvalidDates(t *testing.T) {
	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	events := []engine.Event{{ID: 3, Name: "Leap", Day: 29, Month: 2, EventType: engine.Birthday}}

	ics, _, err := gen.Generate(context.Background(), events, 0)
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240229", "2024 is a leap year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250228")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20260228")
}

func TestGenerate_WithReminders(t *testing.T) {
	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	events := []engine.Event{{ID: 1, Name: "Alarm Test", Day: 1, Month: 1, Notes: "bring cake", EventType: engine.Birthday}}

	ics, _, err := gen.Generate(context.Background(), events, 3)
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VALARM")
	assert.Contains(t, icsStr, "TRIGGER:-P3D")
	assert.Contains(t, icsStr, "ACTION:DISPLAY")
	assert.Contains(t, icsStr, "DESCRIPTION:bring cake")
}

func TestGenerate_Empty(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	ics, count, err := gen.Generate(context.Background(), nil, 0)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, config.StubVCalendar, string(ics))
}

func TestGenerate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}
	_, _, err := gen.Generate(ctx, []engine.Event{{ID: 1, Name: "X", Day: 1, Month: 1}}, 0)

	assert.Equal(t, context.Canceled, err)
}

package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// june10 is the reference day used across these tests (2024 is a leap year).
var june10 = engine.Date{Year: 2024, Month: time.June, Day: 10}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		today engine.Date
		day   int
		month int
		want  int
	}{
		{"Later this month", june10, 15, 6, 5},
		{"Today", june10, 10, 6, 0},
		{"Tomorrow", june10, 11, 6, 1},
		{"Already passed rolls to next year", june10, 1, 1, 205},
		{"Yesterday is almost a year away", june10, 9, 6, 364},
		{"Feb 30 resolves to Feb 28 next year", june10, 30, 2, 263},
		{"Feb 29 on the eve in a leap year", engine.Date{Year: 2024, Month: time.February, Day: 28}, 29, 2, 1},
		{"Feb 29 falls on Feb 28 in a common year", engine.Date{Year: 2023, Month: time.February, Day: 28}, 29, 2, 0},
		{"Feb 29 after Feb 28 waits for the leap day", engine.Date{Year: 2023, Month: time.March, Day: 1}, 29, 2, 365},
		{"New year's eve to new year", engine.Date{Year: 2024, Month: time.December, Day: 31}, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DaysUntil(tt.today, tt.day, tt.month))
		})
	}
}

// TestDaysUntil_Range walks every day of two years against a spread of
// (day, month) pairs, including invalid ones.
func TestDaysUntil_Range(t *testing.T) {
	pairs := [][2]int{{1, 1}, {29, 2}, {30, 2}, {31, 4}, {15, 6}, {31, 12}, {0, 0}, {40, 13}}

	start := engine.Date{Year: 2023, Month: time.January, Day: 1}
	for i := 0; i < 731; i++ {
		today := start.AddDays(i)
		for _, p := range pairs {
			got := engine.DaysUntil(today, p[0], p[1])
			require.GreaterOrEqual(t, got, 0, "today=%v pair=%v", today, p)
			require.Less(t, got, 366, "today=%v pair=%v", today, p)
		}
		assert.Equal(t, 0, engine.DaysUntil(today, today.Day, int(today.Month)), "own date is today")
	}
}

func TestOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		day   int
		month int
		want  engine.Date
	}{
		{"Valid date", 2023, 15, 6, engine.Date{Year: 2023, Month: time.June, Day: 15}},
		{"Leap day in leap year", 2024, 29, 2, engine.Date{Year: 2024, Month: time.February, Day: 29}},
		{"Leap day in common year", 2023, 29, 2, engine.Date{Year: 2023, Month: time.February, Day: 28}},
		{"April 31 clamps to 28", 2023, 31, 4, engine.Date{Year: 2023, Month: time.April, Day: 28}},
		{"Month above range", 2023, 5, 13, engine.Date{Year: 2023, Month: time.December, Day: 5}},
		{"Day and month below range", 2023, 0, 0, engine.Date{Year: 2023, Month: time.January, Day: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Occurrence(tt.year, tt.day, tt.month))
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	assert.Equal(t, engine.Date{Year: 2024, Month: time.June, Day: 15}, engine.NextOccurrence(june10, 15, 6))
	assert.Equal(t, engine.Date{Year: 2025, Month: time.January, Day: 1}, engine.NextOccurrence(june10, 1, 1))
	assert.Equal(t, june10, engine.NextOccurrence(june10, 10, 6))
}

func TestIsUpcoming(t *testing.T) {
	assert.True(t, engine.IsUpcoming(june10, 15, 6, config.DefaultUpcomingThreshold))
	assert.True(t, engine.IsUpcoming(june10, 17, 6, 7), "Threshold is inclusive")
	assert.False(t, engine.IsUpcoming(june10, 18, 6, 7))
	assert.False(t, engine.IsUpcoming(june10, 1, 1, config.DefaultUpcomingThreshold))
	assert.True(t, engine.IsUpcoming(june10, 10, 6, 0), "Today is upcoming even with a zero threshold")
}

func TestProximity_UsesClock(t *testing.T) {
	p := &engine.Proximity{Clock: MockClock{CurrentTime: time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)}}

	assert.Equal(t, june10, p.Today())
	assert.Equal(t, 5, p.DaysUntil(15, 6))
	assert.True(t, p.IsUpcoming(15, 6, 7))
	assert.False(t, p.IsUpcoming(1, 1, 7))
}

func TestProximity_DSTIndependent(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// Clocks move forward on 2024-03-31 in Paris.
	p := &engine.Proximity{Clock: MockClock{CurrentTime: time.Date(2024, 3, 30, 12, 0, 0, 0, loc)}}

	assert.Equal(t, 2, p.DaysUntil(1, 4))
}

func TestSchedule(t *testing.T) {
	events := []engine.Event{
		{ID: 1, Name: "Far", Day: 1, Month: 1},
		{ID: 2, Name: "Soon A", Day: 15, Month: 6},
		{ID: 3, Name: "Today", Day: 10, Month: 6},
		{ID: 4, Name: "Soon B", Day: 15, Month: 6},
	}

	got := engine.Schedule(june10, events)

	require.Len(t, got, 4)
	names := make([]string, 0, len(got))
	for i, e := range got {
		names = append(names, e.Name)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].DaysUntil, e.DaysUntil, "Sorted ascending")
		}
	}
	assert.Equal(t, []string{"Today", "Soon A", "Soon B", "Far"}, names, "Ties keep file order")
	assert.Equal(t, 0, got[0].DaysUntil)
	assert.Equal(t, 205, got[3].DaysUntil)
}

func TestSchedule_Empty(t *testing.T) {
	assert.Empty(t, engine.Schedule(june10, nil))
}

func TestPartition(t *testing.T) {
	scheduled := engine.Schedule(june10, []engine.Event{
		{ID: 1, Name: "Today", Day: 10, Month: 6},
		{ID: 2, Name: "Week", Day: 17, Month: 6},
		{ID: 3, Name: "Later", Day: 18, Month: 6},
	})

	upcoming, others := engine.Partition(scheduled, 7)

	require.Len(t, upcoming, 2)
	require.Len(t, others, 1)
	assert.Equal(t, "Today", upcoming[0].Name)
	assert.Equal(t, "Week", upcoming[1].Name)
	assert.Equal(t, "Later", others[0].Name)
}

func TestScheduledEvent_AgeNext(t *testing.T) {
	scheduled := engine.Schedule(june10, []engine.Event{
		{ID: 1, Name: "June", Day: 15, Month: 6, Year: yearPtr(1990)},
		{ID: 2, Name: "January", Day: 1, Month: 1, Year: yearPtr(1990)},
		{ID: 3, Name: "Unknown", Day: 1, Month: 1},
	})

	age, ok := scheduled[0].AgeNext(june10)
	assert.True(t, ok)
	assert.Equal(t, 34, age)

	age, ok = scheduled[1].AgeNext(june10)
	assert.True(t, ok)
	assert.Equal(t, 35, age, "Next occurrence is in 2025")

	_, ok = scheduled[2].AgeNext(june10)
	assert.False(t, ok)
}

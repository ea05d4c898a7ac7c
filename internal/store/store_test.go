package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"github.com/tartampluch/candela/internal/store"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func newStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(dir)
	s.Clock = MockClock{CurrentTime: time.Date(2024, 6, 10, 9, 30, 0, 123456000, time.UTC)}
	return s, dir
}

func yearPtr(y int) *int { return &y }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func TestLoad_MissingFile(t *testing.T) {
	s, _ := newStore(t)

	events := s.Load()

	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestLoad_MalformedFile(t *testing.T) {
	s, dir := newStore(t)
	writeFile(t, filepath.Join(dir, config.EventsFileName), "{not json")

	assert.Empty(t, s.Load())
}

func TestLoad_DefaultsEventType(t *testing.T) {
	s, dir := newStore(t)
	writeFile(t, filepath.Join(dir, config.EventsFileName),
		`{"events":[{"id":3,"name":"Old","day":2,"month":3,"year":null,"notes":"","created_at":"x"}]}`)

	events := s.Load()

	require.Len(t, events, 1)
	assert.Equal(t, engine.Birthday, events[0].EventType)
	assert.Nil(t, events[0].Year)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, dir := newStore(t)
	wedding := engine.Wedding
	in := []engine.Event{
		{ID: 1, Name: "Zoë & Ali", Day: 4, Month: 5, Year: yearPtr(2011), Notes: "<3", EventType: engine.Anniversary, AnniversaryType: &wedding, CreatedAt: "2024-01-01T00:00:00.000000"},
		{ID: 2, Name: "Ana", Day: 31, Month: 2, EventType: engine.Special, CreatedAt: "2024-01-02T00:00:00.000000"},
	}

	require.NoError(t, s.Save(in))
	assert.Equal(t, in, s.Load())

	raw, err := os.ReadFile(filepath.Join(dir, config.EventsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Zoë & Ali", "Non-ASCII and HTML characters are written verbatim")
	assert.Contains(t, string(raw), `"anniversary_type": "wedding"`)
	assert.Contains(t, string(raw), `"year": null`)
}

func TestAdd_AssignsIDAndTimestamp(t *testing.T) {
	s, _ := newStore(t)

	first, err := s.Add(engine.Draft{Name: "  Ana  ", Day: 15, Month: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Ana", first.Name)
	assert.Equal(t, engine.Birthday, first.EventType)
	assert.Equal(t, "2024-06-10T09:30:00.123456", first.CreatedAt)

	events := s.Load()
	require.Len(t, events, 1)
	assert.Equal(t, first, events[0])
}

func TestAdd_IDIsMaxPlusOne(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Save([]engine.Event{
		{ID: 1, Name: "A", Day: 1, Month: 1, EventType: engine.Birthday},
		{ID: 3, Name: "B", Day: 1, Month: 1, EventType: engine.Birthday},
	}))

	e, err := s.Add(engine.Draft{Name: "C", Day: 1, Month: 1})

	require.NoError(t, err)
	assert.Equal(t, 4, e.ID)
}

func TestAdd_Validation(t *testing.T) {
	bogus := engine.AnniversaryType("bogus")
	memorial := engine.Memorial

	tests := []struct {
		name    string
		draft   engine.Draft
		wantErr error
	}{
		{"Empty name", engine.Draft{Name: "   ", Day: 1, Month: 1}, store.ErrEmptyName},
		{"Unknown type", engine.Draft{Name: "A", Day: 1, Month: 1, EventType: "holiday"}, store.ErrEventType},
		{"Unknown anniversary kind", engine.Draft{Name: "A", Day: 1, Month: 1, EventType: engine.Anniversary, AnniversaryType: &bogus}, store.ErrAnnivType},
		{"Valid anniversary", engine.Draft{Name: "A", Day: 1, Month: 1, EventType: engine.Anniversary, AnniversaryType: &memorial}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(t)
			_, err := s.Add(tt.draft)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Len(t, s.Load(), 1)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.Load(), "Rejected drafts are not persisted")
		})
	}
}

func TestAdd_DropsAnniversaryKindOnOtherTypes(t *testing.T) {
	s, _ := newStore(t)
	wedding := engine.Wedding

	e, err := s.Add(engine.Draft{Name: "A", Day: 1, Month: 1, EventType: engine.Birthday, AnniversaryType: &wedding})

	require.NoError(t, err)
	assert.Nil(t, e.AnniversaryType)
}

func TestAdd_KeepsInvalidDates(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Add(engine.Draft{Name: "Feb 30", Day: 30, Month: 2})

	require.NoError(t, err)
	events := s.Load()
	require.Len(t, events, 1)
	assert.Equal(t, 30, events[0].Day)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	for _, n := range []string{"A", "B", "C"} {
		_, err := s.Add(engine.Draft{Name: n, Day: 1, Month: 1})
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(2))
	require.NoError(t, s.Delete(42), "Missing id is a no-op")

	events := s.Load()
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].ID)
	assert.Equal(t, 3, events[1].ID)

	e, err := s.Add(engine.Draft{Name: "D", Day: 1, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, e.ID)
}

func TestUpdate(t *testing.T) {
	s, _ := newStore(t)
	orig, err := s.Add(engine.Draft{Name: "Ana", Day: 1, Month: 1})
	require.NoError(t, err)

	found, err := s.Update(orig.ID, func(e *engine.Event) {
		e.Notes = "updated"
		e.Day = 2
		e.ID = 99
		e.CreatedAt = "tampered"
	})

	require.NoError(t, err)
	assert.True(t, found)
	events := s.Load()
	require.Len(t, events, 1)
	assert.Equal(t, orig.ID, events[0].ID)
	assert.Equal(t, orig.CreatedAt, events[0].CreatedAt)
	assert.Equal(t, "updated", events[0].Notes)
	assert.Equal(t, 2, events[0].Day)
}

func TestUpdate_Missing(t *testing.T) {
	s, dir := newStore(t)

	found, err := s.Update(7, func(e *engine.Event) { e.Name = "X" })

	require.NoError(t, err)
	assert.False(t, found)
	assert.NoFileExists(t, filepath.Join(dir, config.EventsFileName))
}

func TestUpdate_RejectsInvalidResult(t *testing.T) {
	s, _ := newStore(t)
	orig, err := s.Add(engine.Draft{Name: "Ana", Day: 1, Month: 1})
	require.NoError(t, err)

	_, err = s.Update(orig.ID, func(e *engine.Event) { e.Name = "" })

	assert.ErrorIs(t, err, store.ErrEmptyName)
	assert.Equal(t, "Ana", s.Load()[0].Name)
}

func TestSortedEvents(t *testing.T) {
	s, _ := newStore(t)
	for _, d := range []engine.Draft{
		{Name: "New Year", Day: 1, Month: 1},
		{Name: "Soon", Day: 15, Month: 6},
		{Name: "Today", Day: 10, Month: 6},
	} {
		_, err := s.Add(d)
		require.NoError(t, err)
	}

	sorted := s.SortedEvents()

	require.Len(t, sorted, 3)
	assert.Equal(t, "Today", sorted[0].Name)
	assert.Equal(t, 0, sorted[0].DaysUntil)
	assert.Equal(t, "Soon", sorted[1].Name)
	assert.Equal(t, 5, sorted[1].DaysUntil)
	assert.Equal(t, "New Year", sorted[2].Name)
	assert.Equal(t, 205, sorted[2].DaysUntil)
}

func TestSortedEvents_Repeatable(t *testing.T) {
	s, _ := newStore(t)
	for _, d := range []engine.Draft{
		{Name: "Later", Day: 2, Month: 9},
		{Name: "Tie A", Day: 20, Month: 6},
		{Name: "Past", Day: 1, Month: 3},
		{Name: "Tie B", Day: 20, Month: 6, EventType: engine.Special},
		{Name: "Tie C", Day: 20, Month: 6},
	} {
		_, err := s.Add(d)
		require.NoError(t, err)
	}

	first := s.SortedEvents()
	second := s.SortedEvents()

	assert.Equal(t, first, second)
	require.Len(t, first, 5)
	names := make([]string, 0, len(first))
	for _, e := range first {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Tie A", "Tie B", "Tie C", "Later", "Past"}, names)
	assert.Equal(t, 10, first[0].DaysUntil)
	assert.Equal(t, 10, first[2].DaysUntil)
}

func TestAdd_Concurrent(t *testing.T) {
	s, _ := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Add(engine.Draft{Name: "N", Day: 1, Month: 1})
		}()
	}
	wg.Wait()

	events := s.Load()
	require.Len(t, events, 20)
	seen := map[int]bool{}
	for _, e := range events {
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
}

// -----------------------------------------------------------------------------
// Migration
// -----------------------------------------------------------------------------

func TestMigrate_LegacyFile(t *testing.T) {
	s, dir := newStore(t)
	legacy := `{"birthdays":[{"id":1,"name":"Ana","day":3,"month":4,"year":1990,"notes":"n","created_at":"c"}]}`
	writeFile(t, filepath.Join(dir, config.LegacyFileName), legacy)

	migrated, err := s.Migrate()

	require.NoError(t, err)
	assert.True(t, migrated)
	events := s.Load()
	require.Len(t, events, 1)
	assert.Equal(t, engine.Birthday, events[0].EventType)
	assert.Nil(t, events[0].AnniversaryType)
	require.NotNil(t, events[0].Year)
	assert.Equal(t, 1990, *events[0].Year)
	assert.Equal(t, "c", events[0].CreatedAt)

	raw, err := os.ReadFile(filepath.Join(dir, config.LegacyFileName))
	require.NoError(t, err)
	assert.Equal(t, legacy, string(raw), "Legacy file is kept as a backup")

	again, err := s.Migrate()
	require.NoError(t, err)
	assert.True(t, again, "A successful run is remembered")
}

func TestMigrate_LazyOnFirstAccess(t *testing.T) {
	s, dir := newStore(t)
	writeFile(t, filepath.Join(dir, config.LegacyFileName), `{"birthdays":[{"id":5,"name":"Bo","day":1,"month":2}]}`)

	events := s.Load()

	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].ID)
	assert.FileExists(t, filepath.Join(dir, config.EventsFileName))
}

func TestMigrate_SkippedWhenEventsExist(t *testing.T) {
	s, dir := newStore(t)
	writeFile(t, filepath.Join(dir, config.EventsFileName), `{"events":[]}`)
	writeFile(t, filepath.Join(dir, config.LegacyFileName), `{"birthdays":[{"id":1,"name":"Ana","day":3,"month":4}]}`)

	migrated, err := s.Migrate()

	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Empty(t, s.Load())
}

func TestMigrate_MalformedLegacy(t *testing.T) {
	s, dir := newStore(t)
	writeFile(t, filepath.Join(dir, config.LegacyFileName), `[1,2`)

	migrated, err := s.Migrate()

	require.Error(t, err)
	assert.False(t, migrated)
	assert.Empty(t, s.Load())
	assert.NoFileExists(t, filepath.Join(dir, config.EventsFileName))
}

func TestMigrate_RetriedAfterFailure(t *testing.T) {
	s, dir := newStore(t)
	legacyPath := filepath.Join(dir, config.LegacyFileName)
	writeFile(t, legacyPath, `{"birthdays":`)

	migrated, err := s.Migrate()
	require.Error(t, err)
	assert.False(t, migrated)

	writeFile(t, legacyPath, `{"birthdays":[{"id":2,"name":"Cy","day":7,"month":8}]}`)

	migrated, err = s.Migrate()
	require.NoError(t, err)
	assert.True(t, migrated)
	events := s.Load()
	require.Len(t, events, 1)
	assert.Equal(t, "Cy", events[0].Name)

	again, err := s.Migrate()
	require.NoError(t, err)
	assert.True(t, again)
}

func TestMigrate_Nothing(t *testing.T) {
	s, _ := newStore(t)

	migrated, err := s.Migrate()

	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	dir, err := store.DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".local", "share", config.DataDirName), dir)
}

func TestSave_EmptyWritesEmptyArray(t *testing.T) {
	s, dir := newStore(t)

	require.NoError(t, s.Save(nil))

	raw, err := os.ReadFile(filepath.Join(dir, config.EventsFileName))
	require.NoError(t, err)
	var doc map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotNil(t, doc["events"])
	assert.Empty(t, doc["events"])
}

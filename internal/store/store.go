// Package store persists events and settings as flat JSON files.
//
// Every mutation loads the whole collection, changes it and rewrites the file.
// Reads never fail: a missing or malformed file is an empty collection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// Validation errors returned by Add and Update.
var (
	ErrEmptyName   = errors.New(config.ErrEmptyName)
	ErrEventType   = errors.New(config.ErrEventType)
	ErrAnnivType   = errors.New(config.ErrAnnivType)
	errNoLegacyDoc = errors.New("legacy file holds no birthdays document")
)

// eventsDocument is the on-disk shape of events.json.
type eventsDocument struct {
	Events []engine.Event `json:"events"`
}

// legacyBirthday is a record of the birthdays-only schema.
type legacyBirthday struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Day       int    `json:"day"`
	Month     int    `json:"month"`
	Year      *int   `json:"year"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// legacyDocument is the on-disk shape of birthdays.json.
type legacyDocument struct {
	Birthdays *[]legacyBirthday `json:"birthdays"`
}

// Store owns events.json and settings.json inside one data directory.
type Store struct {
	Clock engine.Clock

	mu           sync.Mutex
	eventsPath   string
	legacyPath   string
	settingsPath string

	migrateDone bool
	migrated    bool
}

// New returns a store rooted at dir. Nothing is read or created until first use.
func New(dir string) *Store {
	return &Store{
		Clock:        engine.RealClock{},
		eventsPath:   filepath.Join(dir, config.EventsFileName),
		legacyPath:   filepath.Join(dir, config.LegacyFileName),
		settingsPath: filepath.Join(dir, config.SettingsFileName),
	}
}

// DefaultDir returns ~/.local/share/birthday_app, where earlier releases kept
// their data.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrDataDir, err)
	}
	parts := append([]string{home}, config.DataDirParents...)
	return filepath.Join(append(parts, config.DataDirName)...), nil
}

// Dir returns the data directory of the store.
func (s *Store) Dir() string {
	return filepath.Dir(s.eventsPath)
}

// Migrate converts the legacy birthdays.json into events.json when only the
// legacy file exists. The legacy file is left untouched as a backup.
// A successful run is remembered and later calls return its outcome; a failed
// run is retried on the next call.
// Every other operation calls it first, so explicit use is optional.
func (s *Store) Migrate() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.migrateDone {
		return s.migrated, nil
	}
	migrated, err := s.migrateLegacy()
	if err != nil {
		return false, err
	}
	s.migrateDone, s.migrated = true, migrated
	return migrated, nil
}

func (s *Store) migrateLegacy() (bool, error) {
	log := slog.With(config.LogKeyComponent, config.CompStore)

	if exists(s.eventsPath) || !exists(s.legacyPath) {
		log.Debug(config.MsgMigrateSkip, config.LogKeyPath, s.eventsPath)
		return false, nil
	}

	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		log.Error(config.ErrMigrate, config.LogKeyFile, s.legacyPath, config.LogKeyError, err)
		return false, fmt.Errorf("%s: %w", config.ErrMigrate, err)
	}

	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Error(config.ErrMigrate, config.LogKeyFile, s.legacyPath, config.LogKeyError, err)
		return false, fmt.Errorf("%s: %w", config.ErrMigrate, err)
	}
	if doc.Birthdays == nil {
		log.Error(config.ErrMigrate, config.LogKeyFile, s.legacyPath, config.LogKeyError, errNoLegacyDoc)
		return false, fmt.Errorf("%s: %w", config.ErrMigrate, errNoLegacyDoc)
	}

	events := make([]engine.Event, 0, len(*doc.Birthdays))
	for _, b := range *doc.Birthdays {
		events = append(events, engine.Event{
			ID:        b.ID,
			Name:      b.Name,
			Day:       b.Day,
			Month:     b.Month,
			Year:      b.Year,
			Notes:     b.Notes,
			EventType: engine.Birthday,
			CreatedAt: b.CreatedAt,
		})
	}

	if err := s.save(events); err != nil {
		return false, fmt.Errorf("%s: %w", config.ErrMigrate, err)
	}

	log.Info(config.MsgMigrated,
		config.LogKeyFile, s.legacyPath,
		config.LogKeyCount, len(events))
	return true, nil
}

// Load returns all events in file order. It never fails: a missing, unreadable
// or malformed file yields an empty collection.
func (s *Store) Load() []engine.Event {
	_, _ = s.Migrate()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []engine.Event {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyFile, s.eventsPath)

	data, err := os.ReadFile(s.eventsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug(config.MsgFileMissing)
		} else {
			log.Warn(config.ErrLoadEvents, config.LogKeyError, err)
		}
		return []engine.Event{}
	}

	var doc eventsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn(config.MsgFileMalformed, config.LogKeyError, err)
		return []engine.Event{}
	}

	events := make([]engine.Event, 0, len(doc.Events))
	for _, e := range doc.Events {
		if e.EventType == "" {
			e.EventType = engine.Birthday
		}
		events = append(events, e)
	}
	log.Debug(config.MsgEventsLoaded, config.LogKeyCount, len(events))
	return events
}

// Save replaces the whole collection on disk. Failures are logged and
// returned; callers that only need best effort may ignore the error.
func (s *Store) Save(events []engine.Event) error {
	_, _ = s.Migrate()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(events)
}

func (s *Store) save(events []engine.Event) error {
	if events == nil {
		events = []engine.Event{}
	}
	if err := writeJSON(s.eventsPath, eventsDocument{Events: events}); err != nil {
		slog.Error(config.ErrSaveEvents,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, s.eventsPath,
			config.LogKeyError, err)
		return fmt.Errorf("%s: %w", config.ErrSaveEvents, err)
	}
	slog.Debug(config.MsgEventsSaved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(events))
	return nil
}

// Add appends a new event with the next free id (max id + 1, 1 when empty)
// and the current creation timestamp. Day and month are not validated.
// When persisting fails the new record is still returned alongside the error.
func (s *Store) Add(d engine.Draft) (engine.Event, error) {
	_, _ = s.Migrate()

	e := engine.Event{
		Name:            strings.TrimSpace(d.Name),
		Day:             d.Day,
		Month:           d.Month,
		Year:            d.Year,
		Notes:           d.Notes,
		EventType:       d.EventType,
		AnniversaryType: d.AnniversaryType,
	}
	if err := normalize(&e); err != nil {
		return engine.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.load()
	e.ID = nextID(events)
	e.CreatedAt = s.Clock.Now().Format(config.CreatedAtLayout)
	events = append(events, e)

	slog.Info(config.MsgEventAdded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, e.ID,
		config.LogKeyName, e.Name)
	return e, s.save(events)
}

// Delete removes the event with the given id. A missing id is not an error.
func (s *Store) Delete(id int) error {
	_, _ = s.Migrate()
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.load()
	kept := events[:0]
	for _, e := range events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(events) {
		slog.Debug(config.MsgEventMissing, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
		return nil
	}

	slog.Info(config.MsgEventDeleted, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
	return s.save(kept)
}

// Update applies fn to the event with the given id and persists the result.
// ID and CreatedAt are restored after fn runs. It reports whether the id was
// found; a missing id is a no-op.
func (s *Store) Update(id int, fn func(e *engine.Event)) (bool, error) {
	_, _ = s.Migrate()
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.load()
	for i := range events {
		if events[i].ID != id {
			continue
		}

		updated := events[i]
		fn(&updated)
		updated.ID = events[i].ID
		updated.CreatedAt = events[i].CreatedAt
		updated.Name = strings.TrimSpace(updated.Name)
		if err := normalize(&updated); err != nil {
			return true, err
		}
		events[i] = updated

		slog.Info(config.MsgEventUpdated, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
		return true, s.save(events)
	}

	slog.Debug(config.MsgEventMissing, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
	return false, nil
}

// SortedEvents loads all events and returns them ascending by days until the
// next occurrence. Events on the same day keep their file order.
func (s *Store) SortedEvents() []engine.ScheduledEvent {
	return engine.Schedule(engine.DateOf(s.Clock.Now()), s.Load())
}

// normalize validates the type fields of e. An anniversary kind is only kept
// on anniversaries.
func normalize(e *engine.Event) error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.EventType == "" {
		e.EventType = engine.Birthday
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("%w: %q", ErrEventType, e.EventType)
	}
	if e.EventType != engine.Anniversary {
		e.AnniversaryType = nil
		return nil
	}
	if e.AnniversaryType != nil && !e.AnniversaryType.Valid() {
		return fmt.Errorf("%w: %q", ErrAnnivType, *e.AnniversaryType)
	}
	return nil
}

// nextID returns max(existing ids, 0) + 1.
func nextID(events []engine.Event) int {
	maxID := 0
	for _, e := range events {
		maxID = max(maxID, e.ID)
	}
	return maxID + 1
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/tartampluch/candela/internal/config"
)

// Settings holds the user preferences kept in settings.json.
type Settings struct {
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	NotificationDays     int    `json:"notification_days"`
	FeedEnabled          bool   `json:"calendar_feed_enabled"`
	FeedPort             string `json:"calendar_feed_port"`
}

// DefaultSettings returns the preferences used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		Theme:                config.DefaultTheme,
		Language:             config.DefaultLanguage,
		NotificationsEnabled: config.DefaultNotificationsEnabled,
		NotificationDays:     config.DefaultNotificationDays,
		FeedEnabled:          config.DefaultFeedEnabled,
		FeedPort:             config.DefaultPort,
	}
}

// Normalized replaces unknown or out-of-range values with usable ones.
func (s Settings) Normalized() Settings {
	def := DefaultSettings()
	if !slices.Contains(config.SupportedThemes, s.Theme) {
		s.Theme = def.Theme
	}
	if !slices.Contains(config.SupportedLanguages, s.Language) {
		s.Language = def.Language
	}
	s.NotificationDays = min(max(s.NotificationDays, config.MinNotificationDays), config.MaxNotificationDays)
	if p, err := strconv.Atoi(s.FeedPort); err != nil || p < config.MinPort || p > config.MaxPort {
		s.FeedPort = def.FeedPort
	}
	return s
}

// LoadSettings returns the stored preferences merged over the defaults, so
// keys missing from the file keep their default. It never fails.
func (s *Store) LoadSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyFile, s.settingsPath)
	settings := DefaultSettings()

	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn(config.ErrLoadSettings, config.LogKeyError, err)
		}
		return settings
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		log.Warn(config.MsgFileMalformed, config.LogKeyError, err)
		return DefaultSettings()
	}
	return settings.Normalized()
}

// SaveSettings writes the preferences. Keys in the file that Settings does not
// know about are preserved.
func (s *Store) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]json.RawMessage{}
	if data, err := os.ReadFile(s.settingsPath); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			doc = map[string]json.RawMessage{}
		}
	}

	known, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	for k, v := range fields {
		doc[k] = v
	}

	if err := writeJSON(s.settingsPath, doc); err != nil {
		slog.Error(config.ErrSaveSettings,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, s.settingsPath,
			config.LogKeyError, err)
		return fmt.Errorf("%s: %w", config.ErrSaveSettings, err)
	}

	slog.Info(config.MsgSettingsSaved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyTheme, settings.Theme,
		config.LogKeyLang, settings.Language)
	return nil
}

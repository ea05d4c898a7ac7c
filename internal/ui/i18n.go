package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localesDir   = "locales"
	localePrefix = "active."
	localeExt    = ".json"
)

var eventTypeKeys = map[engine.EventType]string{
	engine.Birthday:    config.TKeyTypeBirthday,
	engine.Anniversary: config.TKeyTypeAnniversary,
	engine.Special:     config.TKeyTypeSpecial,
}

var annivTypeKeys = map[engine.AnniversaryType]string{
	engine.Wedding:      config.TKeyAnnivWedding,
	engine.Relationship: config.TKeyAnnivRelation,
	engine.Memorial:     config.TKeyAnnivMemorial,
	engine.OtherAnniv:   config.TKeyAnnivOther,
}

var themeKeys = map[string]string{
	config.ThemeSystem: config.TKeyThemeSystem,
	config.ThemeLight:  config.TKeyThemeLight,
	config.ThemeDark:   config.TKeyThemeDark,
}

var languageKeys = map[string]string{
	config.LanguageAuto: config.TKeyLangAuto,
	config.LanguageTR:   config.TKeyLangTR,
	config.LanguageEN:   config.TKeyLangEN,
	config.LanguageES:   config.TKeyLangES,
}

// SetupI18n initializes the translation bundle and detects available languages.
func (app *CandelaApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localesDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			slog.Debug(config.MsgLocaleSkip, config.LogKeyComponent, config.CompI18n, config.LogKeyFile, name)
			continue
		}
		langCode, ok := strings.CutPrefix(name, localePrefix)
		langCode, hasExt := strings.CutSuffix(langCode, localeExt)
		if !ok || !hasExt || langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localesDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.AvailableLanguages = detectedLangs
	app.I18nBundle = bundle
}

// ResolveLanguage maps a language setting to a loaded translation. "auto"
// follows the operating system; anything unavailable falls back to English.
func (app *CandelaApp) ResolveLanguage(setting string) string {
	if setting != config.LanguageAuto {
		if slices.Contains(app.AvailableLanguages, setting) {
			return setting
		}
		return config.FallbackLanguage
	}

	if app.SystemLanguage == nil {
		return config.FallbackLanguage
	}
	sys, err := app.SystemLanguage()
	if err != nil || sys == "" {
		return config.FallbackLanguage
	}

	lang := matchLanguage(sys, app.AvailableLanguages)
	slog.Debug(config.MsgLangResolved,
		config.LogKeyComponent, config.CompI18n,
		config.LogKeyValue, sys,
		config.LogKeyLang, lang)
	return lang
}

// matchLanguage picks the closest available language for a BCP 47 or POSIX
// locale name such as "es-MX" or "tr_TR.UTF-8".
func matchLanguage(requested string, available []string) string {
	if len(available) == 0 {
		return config.FallbackLanguage
	}
	tags := make([]language.Tag, 0, len(available))
	for _, code := range available {
		tags = append(tags, language.Make(code))
	}

	requested, _, _ = strings.Cut(requested, ".")
	want, err := language.Parse(strings.ReplaceAll(requested, "_", "-"))
	if err != nil {
		return config.FallbackLanguage
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return config.FallbackLanguage
	}
	return available[idx]
}

// -----------------------------------------------------------------------------
// Lookups
// -----------------------------------------------------------------------------

// GetMsg is a helper to translate a key safely.
func (app *CandelaApp) GetMsg(key string) string {
	return app.localize(&i18n.LocalizeConfig{MessageID: key}, key)
}

// GetMsgWith translates a templated key.
func (app *CandelaApp) GetMsgWith(key string, data map[string]any) string {
	return app.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data}, key)
}

// localize runs lc against the current localizer, returning fallback when the
// key or a plural form is missing.
func (app *CandelaApp) localize(lc *i18n.LocalizeConfig, fallback string) string {
	loc := app.Display().Localizer
	if loc == nil {
		return fallback
	}
	msg, err := loc.Localize(lc)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return fallback
	}
	return msg
}

// ProximityLabel renders a day count: "Today!", "Tomorrow" or "N days left".
func (app *CandelaApp) ProximityLabel(days int) string {
	switch days {
	case 0:
		return app.GetMsg(config.TKeyToday)
	case 1:
		return app.GetMsg(config.TKeyTomorrow)
	}
	return app.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyDaysLeft,
		TemplateData: map[string]any{"Count": days},
		PluralCount:  days,
	}, fmt.Sprintf(config.FallbackDaysLeft, days))
}

// TurningLabel renders the age reached at the next occurrence.
func (app *CandelaApp) TurningLabel(age int) string {
	return app.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyTurning,
		TemplateData: map[string]any{"Age": age},
	}, fmt.Sprint(age))
}

// MonthName returns the localized name of month (1..12).
func (app *CandelaApp) MonthName(month int) string {
	month = min(max(month, config.MinMonth), config.MaxMonth)
	return app.GetMsg(config.MonthKeys[month-1])
}

// MonthNames returns the localized month names, January first.
func (app *CandelaApp) MonthNames() []string {
	names := make([]string, 0, len(config.MonthKeys))
	for m := config.MinMonth; m <= config.MaxMonth; m++ {
		names = append(names, app.MonthName(m))
	}
	return names
}

// DateLabel renders "15 June" or "15 June 1990".
func (app *CandelaApp) DateLabel(e engine.Event) string {
	label := fmt.Sprintf("%d %s", e.Day, app.MonthName(e.Month))
	if e.Year != nil {
		label += fmt.Sprintf(" %d", *e.Year)
	}
	return label
}

// TypeName returns the localized name of an event type.
func (app *CandelaApp) TypeName(t engine.EventType) string {
	if key, ok := eventTypeKeys[t]; ok {
		return app.GetMsg(key)
	}
	return string(t)
}

// AnnivName returns the localized name of an anniversary kind.
func (app *CandelaApp) AnnivName(a engine.AnniversaryType) string {
	if key, ok := annivTypeKeys[a]; ok {
		return app.GetMsg(key)
	}
	return string(a)
}

// upcomingMessage builds the body of the startup reminder.
func (app *CandelaApp) upcomingMessage(events []engine.ScheduledEvent) string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	joined := strings.Join(names, ", ")
	return app.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyUpcomingNotif,
		TemplateData: map[string]any{"Count": len(events), "Names": joined},
		PluralCount:  len(events),
	}, joined)
}

// summaryFormatter returns a closure that localizes calendar summaries.
// It reads the display state at call time so language changes apply to the
// next generation.
func (app *CandelaApp) summaryFormatter() func(e engine.Event, age int, yearKnown bool) string {
	return func(e engine.Event, age int, yearKnown bool) string {
		if !yearKnown || age <= 0 {
			return fmt.Sprintf(config.FallbackSummary, e.Name)
		}
		if e.EventType != engine.Birthday {
			return fmt.Sprintf(config.FallbackSummaryAge, e.Name, age)
		}
		return app.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeySummaryAge,
			TemplateData: map[string]any{"Name": e.Name, "Age": age},
		}, fmt.Sprintf(config.FallbackSummaryAge, e.Name, age))
	}
}

package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/store"
)

// DisplayConfig is the presentation state derived from the settings.
// It is replaced as a whole by ReloadDisplay and never mutated in place.
type DisplayConfig struct {
	Settings  store.Settings
	Language  string // resolved language code, never "auto"
	Localizer *i18n.Localizer
}

// variantTheme pins the default theme to one variant regardless of the OS.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

// themeFor maps a theme setting to a Fyne theme. "system" follows the OS.
func themeFor(setting string) fyne.Theme {
	switch setting {
	case config.ThemeLight:
		return &variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantLight}
	case config.ThemeDark:
		return &variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantDark}
	default:
		return theme.DefaultTheme()
	}
}

func (app *CandelaApp) applyTheme(setting string) {
	app.App.Settings().SetTheme(themeFor(setting))
	slog.Debug(config.MsgThemeApplied,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyTheme, setting)
}

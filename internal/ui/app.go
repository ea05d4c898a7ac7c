package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/jeandeaual/go-locale"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"github.com/tartampluch/candela/internal/server"
	"github.com/tartampluch/candela/internal/store"
)

// CandelaApp encapsulates the UI state and wires the store, the calculator
// and the calendar services together.
type CandelaApp struct {
	App    fyne.App
	Window fyne.Window
	Ctx    context.Context

	Store     *store.Store
	Proximity *engine.Proximity
	Generator *engine.Generator
	Importer  *engine.Importer
	Clock     engine.Clock

	Tray desktop.App
	Menu *fyne.Menu

	TrayShowItem     *fyne.MenuItem
	TrayAddItem      *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	I18nBundle         *i18n.Bundle
	AvailableLanguages []string

	// Secrets stores web import credentials. Nil means the OS keyring.
	Secrets Secrets

	// SystemLanguage reports the OS language for the "auto" setting.
	SystemLanguage func() (string, error)

	display atomic.Pointer[DisplayConfig]

	// Calendar feed state, guarded by feedMu.
	feedMu     sync.Mutex
	Feed       *server.FeedServer
	feedCancel context.CancelFunc
	feedDone   chan struct{}

	// Main window widgets.
	listBox *fyne.Container
	status  *widget.Label

	eventWindow    fyne.Window
	detailsWindow  fyne.Window
	settingsWindow fyne.Window
	importWindow   fyne.Window
}

// NewCandelaApp constructs the application and wires dependencies.
func NewCandelaApp(a fyne.App, ctx context.Context, st *store.Store, fetcher engine.VCardFetcher) *CandelaApp {
	a.SetIcon(theme.CalendarIcon())

	app := &CandelaApp{
		App:            a,
		Ctx:            ctx,
		Store:          st,
		Proximity:      engine.NewProximity(),
		Importer:       &engine.Importer{Fetcher: fetcher},
		SystemLanguage: locale.GetLanguage,
	}
	app.Generator = &engine.Generator{FormatSummary: app.summaryFormatter()}
	app.SetClock(engine.RealClock{})
	return app
}

// SetClock injects the time source into every component that reads "today".
func (app *CandelaApp) SetClock(c engine.Clock) {
	app.Clock = c
	app.Proximity.Clock = c
	app.Generator.Clock = c
	app.Store.Clock = c
}

// Display returns the current presentation state.
func (app *CandelaApp) Display() *DisplayConfig {
	if d := app.display.Load(); d != nil {
		return d
	}
	return &DisplayConfig{Settings: store.DefaultSettings(), Language: config.FallbackLanguage}
}

// Run launches the application services and the main UI loop.
func (app *CandelaApp) Run() {
	if _, err := app.Store.Migrate(); err != nil {
		slog.Warn(config.ErrMigrate,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}

	app.SetupI18n()
	app.ReloadDisplay()
	app.BuildMainWindow()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
		app.Window.SetCloseIntercept(app.Window.Hide)
	} else {
		slog.Warn(config.ErrTrayNotSupported, config.LogKeyComponent, config.CompUI)
	}

	app.syncFeed()
	app.NotifyUpcoming()

	app.Window.Show()
	app.App.Run()
	app.stopFeed()
}

// ReloadDisplay rebuilds the presentation state from the stored settings and
// applies the theme. Widgets built afterwards use the new language.
func (app *CandelaApp) ReloadDisplay() *DisplayConfig {
	settings := app.Store.LoadSettings()
	lang := app.ResolveLanguage(settings.Language)

	d := &DisplayConfig{Settings: settings, Language: lang}
	if app.I18nBundle != nil {
		d.Localizer = i18n.NewLocalizer(app.I18nBundle, lang, config.FallbackLanguage)
	}
	app.display.Store(d)
	app.applyTheme(settings.Theme)
	return d
}

// setupTrayMenu constructs the system tray menu.
func (app *CandelaApp) setupTrayMenu() {
	app.TrayShowItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuShow), func() {
		app.Window.Show()
		app.Window.RequestFocus()
	})
	app.TrayAddItem = fyne.NewMenuItem(app.GetMsg(config.TKeyAddEvent), func() {
		app.Window.Show()
		app.ShowEventDialog(nil)
	})
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeySettings), app.ShowSettingsWindow)

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayShowItem,
		fyne.NewMenuItemSeparator(),
		app.TrayAddItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *CandelaApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayShowItem.Label = app.GetMsg(config.TKeyMenuShow)
	app.TrayAddItem.Label = app.GetMsg(config.TKeyAddEvent)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeySettings)
	app.Menu.Refresh()
}

// NotifyUpcoming sends one desktop notification listing the events due within
// the configured reminder window. It reports whether a notification was sent.
func (app *CandelaApp) NotifyUpcoming() bool {
	settings := app.Display().Settings
	if !settings.NotificationsEnabled {
		return false
	}

	upcoming, _ := engine.Partition(app.Store.SortedEvents(), settings.NotificationDays)
	if len(upcoming) == 0 {
		return false
	}

	content := app.upcomingMessage(upcoming)
	app.App.SendNotification(fyne.NewNotification(app.GetMsg(config.TKeyAppTitle), content))

	slog.Info(config.MsgNotifySent,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(upcoming))
	return true
}

// -----------------------------------------------------------------------------
// Calendar Feed
// -----------------------------------------------------------------------------

// syncFeed starts, restarts or stops the local calendar feed to match the
// settings, then publishes the current events.
func (app *CandelaApp) syncFeed() {
	settings := app.Display().Settings

	app.feedMu.Lock()
	running := app.Feed != nil
	samePort := running && app.Feed.Port == settings.FeedPort
	app.feedMu.Unlock()

	if running && (!settings.FeedEnabled || !samePort) {
		app.stopFeed()
	}
	if !settings.FeedEnabled {
		return
	}

	app.feedMu.Lock()
	if app.Feed == nil {
		app.startFeedLocked(settings.FeedPort)
	}
	app.feedMu.Unlock()

	app.publishFeed()
}

func (app *CandelaApp) startFeedLocked(port string) {
	feed := server.NewFeedServer(port)
	feed.Clock = app.Clock

	ctx, cancel := context.WithCancel(app.Ctx)
	done := make(chan struct{})
	app.Feed, app.feedCancel, app.feedDone = feed, cancel, done

	go func() {
		defer close(done)
		if err := feed.Start(ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyPort, port,
				config.LogKeyError, err)
			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, port)))

			app.feedMu.Lock()
			if app.Feed == feed {
				app.Feed, app.feedCancel, app.feedDone = nil, nil, nil
			}
			app.feedMu.Unlock()
			cancel()
		}
	}()
}

// stopFeed shuts the feed down and waits for the port to be released.
func (app *CandelaApp) stopFeed() {
	app.feedMu.Lock()
	cancel, done := app.feedCancel, app.feedDone
	app.Feed, app.feedCancel, app.feedDone = nil, nil, nil
	app.feedMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(config.ShutdownTimeout):
	}
}

// publishFeed renders the calendar into the running feed, if any.
func (app *CandelaApp) publishFeed() {
	app.feedMu.Lock()
	feed := app.Feed
	app.feedMu.Unlock()
	if feed == nil {
		return
	}

	data, err := app.renderCalendar(app.Ctx)
	if err != nil {
		slog.Error(config.ErrICalEncode, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		return
	}
	feed.Publish(data)
}

// renderCalendar generates the iCalendar document of all events. Alarms are
// attached only when notifications are enabled.
func (app *CandelaApp) renderCalendar(ctx context.Context) ([]byte, error) {
	settings := app.Display().Settings
	reminder := 0
	if settings.NotificationsEnabled {
		reminder = settings.NotificationDays
	}
	data, _, err := app.Generator.Generate(ctx, app.Store.Load(), reminder)
	return data, err
}

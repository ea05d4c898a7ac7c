package ui

import (
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/store"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	themeSelect   *widget.Select
	langSelect    *widget.Select
	checkNotif    *widget.Check
	entryNotifDay *NumericalEntry
	checkFeed     *widget.Check
	entryPort     *NumericalEntry
}

// newSettingsWidgets builds the widgets pre-filled from s.
func (app *CandelaApp) newSettingsWidgets(s store.Settings) *settingsWidgets {
	sw := &settingsWidgets{}

	sw.themeSelect = widget.NewSelect(app.optionLabels(config.SupportedThemes, themeKeys), nil)
	sw.themeSelect.SetSelectedIndex(indexOf(config.SupportedThemes, s.Theme))

	sw.langSelect = widget.NewSelect(app.optionLabels(config.SupportedLanguages, languageKeys), nil)
	sw.langSelect.SetSelectedIndex(indexOf(config.SupportedLanguages, s.Language))

	sw.checkNotif = widget.NewCheck(app.GetMsg(config.TKeyEnableNotif), nil)
	sw.checkNotif.SetChecked(s.NotificationsEnabled)
	sw.entryNotifDay = app.newRangeEntry(config.MinNotificationDays, config.MaxNotificationDays, false)
	sw.entryNotifDay.SetText(strconv.Itoa(s.NotificationDays))

	sw.checkFeed = widget.NewCheck(app.GetMsg(config.TKeyEnableFeed), nil)
	sw.checkFeed.SetChecked(s.FeedEnabled)
	sw.entryPort = app.newRangeEntry(config.MinPort, config.MaxPort, false)
	sw.entryPort.SetText(s.FeedPort)

	return sw
}

// optionLabels translates setting values for a Select, keeping their order.
func (app *CandelaApp) optionLabels(values []string, keys map[string]string) []string {
	labels := make([]string, 0, len(values))
	for _, v := range values {
		labels = append(labels, app.GetMsg(keys[v]))
	}
	return labels
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

// collect validates the widgets and returns the settings they describe.
func (sw *settingsWidgets) collect() (store.Settings, error) {
	if err := sw.entryNotifDay.Validate(); err != nil {
		return store.Settings{}, err
	}
	if err := sw.entryPort.Validate(); err != nil {
		return store.Settings{}, err
	}

	s := store.Settings{
		Theme:                config.SupportedThemes[max(sw.themeSelect.SelectedIndex(), 0)],
		Language:             config.SupportedLanguages[max(sw.langSelect.SelectedIndex(), 0)],
		NotificationsEnabled: sw.checkNotif.Checked,
		FeedEnabled:          sw.checkFeed.Checked,
		FeedPort:             sw.entryPort.Text,
	}
	s.NotificationDays, _ = sw.entryNotifDay.Value()
	return s.Normalized(), nil
}

// ShowSettingsWindow displays the preferences window. Only one instance is open at a time.
func (app *CandelaApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeySettings))
	app.settingsWindow = w

	sw := app.newSettingsWidgets(app.Display().Settings)

	// --- Appearance ---
	generalForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyTheme), sw.themeSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLanguage), sw.langSelect),
	)

	// --- Notifications ---
	itemDays := widget.NewFormItem(app.GetMsg(config.TKeyReminderDays), sw.entryNotifDay)
	itemDays.HintText = app.GetMsg(config.TKeyHelpReminderDays)
	notifCard := widget.NewCard(app.GetMsg(config.TKeyNotifications), "",
		container.NewVBox(sw.checkNotif, widget.NewForm(itemDays)))

	// --- Calendar feed ---
	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyFeedPort), sw.entryPort)
	itemPort.HintText = app.GetMsg(config.TKeyHelpFeed)
	feedCard := widget.NewCard(app.GetMsg(config.TKeyFeed), "",
		container.NewVBox(sw.checkFeed, widget.NewForm(itemPort)))

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeySave), theme.DocumentSaveIcon(), func() {
		s, err := sw.collect()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := app.applySettings(s); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyCancel), theme.CancelIcon(), w.Close)

	footer := widget.NewLabel(app.GetMsgWith(config.TKeyFooter, map[string]any{"Version": config.Version}))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		generalForm,
		notifCard,
		feedCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footer,
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.SettingsWinWidth, content.MinSize().Height))
	w.SetFixedSize(true)
	w.SetOnClosed(func() { app.settingsWindow = nil })
	w.Show()
}

// applySettings persists s and propagates it to every view and service.
func (app *CandelaApp) applySettings(s store.Settings) error {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	if err := app.Store.SaveSettings(s); err != nil {
		return err
	}

	app.ReloadDisplay()
	if app.Window != nil {
		app.BuildMainWindow()
	}
	app.RefreshTrayMenu()
	app.syncFeed()
	return nil
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"github.com/tartampluch/candela/internal/store"
	"github.com/zalando/go-keyring"
)

// Secrets abstracts the OS keyring so tests can run without a session bus.
type Secrets interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
}

// osKeyring stores credentials in the platform keyring.
type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, pass string) error     { return keyring.Set(service, user, pass) }

// importWidgets holds the import form.
type importWidgets struct {
	modeSelect *widget.Select
	pathEntry  *widget.Entry
	urlEntry   *widget.Entry
	userEntry  *widget.Entry
	passEntry  *widget.Entry
}

// ShowImportWindow displays the vCard import form.
func (app *CandelaApp) ShowImportWindow() {
	if app.importWindow != nil {
		app.importWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyImport))
	app.importWindow = w

	iw := &importWidgets{
		pathEntry: widget.NewEntry(),
		urlEntry:  widget.NewEntry(),
		userEntry: widget.NewEntry(),
		passEntry: widget.NewPasswordEntry(),
	}
	iw.urlEntry.PlaceHolder = config.PlaceholderURL

	prefs := app.App.Preferences()
	iw.pathEntry.SetText(prefs.String(config.PrefImportPath))
	iw.urlEntry.SetText(prefs.String(config.PrefImportURL))
	iw.userEntry.SetText(prefs.String(config.PrefImportUser))
	fillPassword := func(user string) {
		if user == "" {
			return
		}
		if pwd, err := app.secrets().Get(config.KeyringService, user); err == nil {
			iw.passEntry.SetText(pwd)
		} else {
			slog.Debug(config.MsgPassFail, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		}
	}
	fillPassword(iw.userEntry.Text)
	iw.userEntry.OnSubmitted = fillPassword

	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				iw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})
	localForm := container.NewBorder(nil, nil, nil, browseBtn, iw.pathEntry)
	webForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyURL), iw.urlEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyUser), iw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyPass), iw.passEntry),
	)

	localLabel := app.GetMsg(config.TKeyModeLocal)
	iw.modeSelect = widget.NewSelect([]string{localLabel, app.GetMsg(config.TKeyModeWeb)}, func(mode string) {
		if mode == localLabel {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	})
	if prefs.String(config.PrefImportMode) == engine.SourceModeWeb {
		iw.modeSelect.SetSelectedIndex(1)
	} else {
		iw.modeSelect.SetSelectedIndex(0)
	}

	progress := widget.NewProgressBarInfinite()
	progress.Hide()

	var btnImport *widget.Button
	btnImport = widget.NewButtonWithIcon(app.GetMsg(config.TKeyImport), theme.DownloadIcon(), func() {
		cfg := iw.importConfig()
		btnImport.Disable()
		progress.Show()

		go func() {
			_, err := app.RunImport(app.Ctx, cfg)
			fyne.Do(func() {
				progress.Hide()
				btnImport.Enable()
				if err != nil {
					dialog.ShowError(fmt.Errorf("%s: %w", app.GetMsg(config.TKeyImportFailed), err), w)
					return
				}
				w.Close()
			})
		}()
	})
	btnImport.Importance = widget.HighImportance

	w.SetContent(container.NewPadded(container.NewVBox(
		iw.modeSelect, localForm, webForm, progress,
		container.NewGridWithColumns(config.LayoutColumnsDouble,
			widget.NewButtonWithIcon(app.GetMsg(config.TKeyCancel), theme.CancelIcon(), w.Close),
			btnImport),
	)))
	w.Resize(fyne.NewSize(config.ImportWinWidth, 0))
	w.SetOnClosed(func() { app.importWindow = nil })
	w.Show()
}

func (iw *importWidgets) importConfig() engine.ImportConfig {
	if iw.modeSelect.SelectedIndex() == 0 {
		return engine.ImportConfig{Mode: engine.SourceModeLocal, LocalPath: iw.pathEntry.Text}
	}
	return engine.ImportConfig{
		Mode:    engine.SourceModeWeb,
		WebURL:  iw.urlEntry.Text,
		WebUser: iw.userEntry.Text,
		WebPass: iw.passEntry.Text,
	}
}

func (app *CandelaApp) secrets() Secrets {
	if app.Secrets != nil {
		return app.Secrets
	}
	return osKeyring{}
}

// RunImport reads the configured address book and adds its dates to the
// store. It is safe to call off the UI goroutine; views are refreshed with
// fyne.Do. Web credentials are remembered in the keyring after a successful
// fetch.
func (app *CandelaApp) RunImport(ctx context.Context, cfg engine.ImportConfig) (int, error) {
	drafts, err := app.Importer.Run(ctx, cfg)
	if err != nil {
		slog.Error(config.ErrImport, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		return 0, fmt.Errorf("%s: %w", config.ErrImport, err)
	}

	app.rememberSource(cfg)
	if cfg.Mode == engine.SourceModeWeb && cfg.WebUser != "" && cfg.WebPass != "" {
		if err := app.secrets().Set(config.KeyringService, cfg.WebUser, cfg.WebPass); err != nil {
			slog.Error(config.ErrKeyringSave,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err)
		}
	}

	added, skipped, err := app.importDrafts(drafts)
	slog.Info(config.MsgImportResult,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyImported, added,
		config.LogKeySkipped, skipped)

	fyne.Do(func() {
		app.afterChange(app.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyImportDone,
			TemplateData: map[string]any{"Count": added},
			PluralCount:  added,
		}, fmt.Sprint(added)))
	})
	return added, err
}

// rememberSource stores the last successful source, without the password.
func (app *CandelaApp) rememberSource(cfg engine.ImportConfig) {
	prefs := app.App.Preferences()
	prefs.SetString(config.PrefImportMode, cfg.Mode)
	if cfg.Mode == engine.SourceModeLocal {
		prefs.SetString(config.PrefImportPath, cfg.LocalPath)
		return
	}
	prefs.SetString(config.PrefImportURL, cfg.WebURL)
	prefs.SetString(config.PrefImportUser, cfg.WebUser)
}

// importDrafts adds every draft that is not already stored. Drafts matching
// an existing event, or an earlier draft of the same batch, are skipped.
func (app *CandelaApp) importDrafts(drafts []engine.Draft) (added, skipped int, err error) {
	existing := app.Store.Load()
	var errs []error

	for _, d := range drafts {
		d.Name = strings.TrimSpace(d.Name)
		if containsMatch(existing, d) {
			skipped++
			continue
		}
		e, addErr := app.Store.Add(d)
		if errors.Is(addErr, store.ErrEmptyName) {
			skipped++
			continue
		}
		if addErr != nil {
			errs = append(errs, addErr)
			continue
		}
		existing = append(existing, e)
		added++
	}
	return added, skipped, errors.Join(errs...)
}

func containsMatch(events []engine.Event, d engine.Draft) bool {
	for _, e := range events {
		if d.Matches(e) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Export
// -----------------------------------------------------------------------------

// ExportCalendar writes the iCalendar document of every event to w.
func (app *CandelaApp) ExportCalendar(w io.Writer) error {
	data, err := app.renderCalendar(app.Ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrExport, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrExport, err)
	}
	return nil
}

// ShowExportDialog asks for a destination and exports the calendar there.
func (app *CandelaApp) ShowExportDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer func() { _ = wc.Close() }()

		if err := app.ExportCalendar(wc); err != nil {
			slog.Error(config.ErrExport, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
			dialog.ShowError(err, app.Window)
			return
		}
		app.showStatus(app.GetMsg(config.TKeyExportDone))
	}, app.Window)
	d.SetFileName(config.ExportFileName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtICS}))
	d.Show()
}

package ui

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// eventForm holds the widgets of the add/edit window.
type eventForm struct {
	app      *CandelaApp
	existing *engine.Event

	name      *widget.Entry
	day       *NumericalEntry
	month     *widget.Select
	year      *NumericalEntry
	notes     *widget.Entry
	eventType *widget.Select
	annivType *widget.Select
	annivForm *widget.Form
}

// newEventForm builds the form, pre-filled from existing when editing.
func (app *CandelaApp) newEventForm(existing *engine.Event) *eventForm {
	f := &eventForm{app: app, existing: existing}

	f.name = widget.NewEntry()
	f.name.PlaceHolder = app.GetMsg(config.TKeyNamePlaceholder)

	f.day = app.newRangeEntry(config.MinDay, config.MaxDay, false)
	f.year = app.newRangeEntry(config.MinYear, config.MaxYear, true)

	f.month = widget.NewSelect(app.MonthNames(), nil)

	f.notes = widget.NewMultiLineEntry()
	f.notes.PlaceHolder = app.GetMsg(config.TKeyNotesPlaceholder)
	f.notes.SetMinRowsVisible(config.MultiLineRows)

	typeNames := make([]string, 0, len(engine.EventTypes))
	for _, t := range engine.EventTypes {
		typeNames = append(typeNames, app.TypeName(t))
	}
	annivNames := make([]string, 0, len(engine.AnniversaryTypes))
	for _, a := range engine.AnniversaryTypes {
		annivNames = append(annivNames, app.AnnivName(a))
	}
	f.annivType = widget.NewSelect(annivNames, nil)
	f.annivForm = widget.NewForm(widget.NewFormItem(app.GetMsg(config.TKeyAnnivType), f.annivType))
	f.eventType = widget.NewSelect(typeNames, func(string) { f.syncAnnivVisibility() })

	today := app.Proximity.Today()
	if existing == nil {
		f.day.SetText(strconv.Itoa(today.Day))
		f.month.SetSelectedIndex(int(today.Month) - 1)
		f.eventType.SetSelectedIndex(0)
		f.annivType.SetSelectedIndex(0)
		return f
	}

	f.name.SetText(existing.Name)
	f.day.SetText(strconv.Itoa(existing.Day))
	f.month.SetSelectedIndex(min(max(existing.Month, config.MinMonth), config.MaxMonth) - 1)
	if existing.Year != nil {
		f.year.SetText(strconv.Itoa(*existing.Year))
	}
	f.notes.SetText(existing.Notes)
	f.annivType.SetSelectedIndex(0)
	if existing.AnniversaryType != nil {
		f.annivType.SetSelected(app.AnnivName(*existing.AnniversaryType))
	}
	f.eventType.SetSelected(app.TypeName(existing.EventType))
	return f
}

func (app *CandelaApp) newRangeEntry(minVal, maxVal int, optional bool) *NumericalEntry {
	e := NewRangeEntry(minVal, maxVal, optional)
	e.NotANumberMsg = app.GetMsg(config.TKeyErrNumber)
	e.OutOfRangeMsg = app.GetMsg(config.TKeyErrRange)
	return e
}

func (f *eventForm) syncAnnivVisibility() {
	if f.selectedType() == engine.Anniversary {
		f.annivForm.Show()
	} else {
		f.annivForm.Hide()
	}
}

func (f *eventForm) selectedType() engine.EventType {
	i := f.eventType.SelectedIndex()
	if i < 0 || i >= len(engine.EventTypes) {
		return engine.Birthday
	}
	return engine.EventTypes[i]
}

// draft validates the widgets and returns the entered event.
func (f *eventForm) draft() (engine.Draft, error) {
	name := strings.TrimSpace(f.name.Text)
	if name == "" {
		return engine.Draft{}, errors.New(f.app.GetMsg(config.TKeyErrNameRequired))
	}
	if err := f.day.Validate(); err != nil {
		return engine.Draft{}, err
	}
	if err := f.year.Validate(); err != nil {
		return engine.Draft{}, err
	}
	if f.month.SelectedIndex() < 0 {
		return engine.Draft{}, errors.New(f.app.GetMsg(config.TKeyErrRange))
	}

	d := engine.Draft{
		Name:      name,
		Month:     f.month.SelectedIndex() + 1,
		Notes:     strings.TrimSpace(f.notes.Text),
		EventType: f.selectedType(),
	}
	d.Day, _ = f.day.Value()
	if y, ok := f.year.Value(); ok {
		d.Year = &y
	}
	if d.EventType == engine.Anniversary {
		if i := f.annivType.SelectedIndex(); i >= 0 && i < len(engine.AnniversaryTypes) {
			a := engine.AnniversaryTypes[i]
			d.AnniversaryType = &a
		}
	}
	return d, nil
}

// savedToast is the status message shown once submit has stored name.
func (f *eventForm) savedToast(name string) string {
	key := config.TKeyAddedToast
	if f.existing != nil {
		key = config.TKeyUpdatedToast
	}
	return f.app.GetMsgWith(key, map[string]any{"Name": name})
}

// submit persists the form. It returns the saved name.
func (f *eventForm) submit() (string, error) {
	d, err := f.draft()
	if err != nil {
		return "", err
	}

	if f.existing == nil {
		e, err := f.app.Store.Add(d)
		return e.Name, err
	}

	_, err = f.app.Store.Update(f.existing.ID, func(e *engine.Event) {
		e.Name = d.Name
		e.Day = d.Day
		e.Month = d.Month
		e.Year = d.Year
		e.Notes = d.Notes
		e.EventType = d.EventType
		e.AnniversaryType = d.AnniversaryType
	})
	return d.Name, err
}

// -----------------------------------------------------------------------------
// Windows
// -----------------------------------------------------------------------------

// ShowEventDialog opens the add window, or the edit window when existing is set.
func (app *CandelaApp) ShowEventDialog(existing *engine.Event) {
	if app.eventWindow != nil {
		app.eventWindow.Close()
	}

	titleKey, actionKey := config.TKeyNewEvent, config.TKeyAdd
	if existing != nil {
		titleKey, actionKey = config.TKeyEditEvent, config.TKeySave
	}

	w := app.App.NewWindow(app.GetMsg(titleKey))
	app.eventWindow = w
	f := app.newEventForm(existing)

	yearLabel := app.GetMsg(config.TKeyYearOptional)
	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyName), f.name),
		widget.NewFormItem(app.GetMsg(config.TKeyEventType), f.eventType),
		widget.NewFormItem(app.GetMsg(config.TKeyDay), f.day),
		widget.NewFormItem(app.GetMsg(config.TKeyMonth), f.month),
		widget.NewFormItem(yearLabel, f.year),
		widget.NewFormItem(app.GetMsg(config.TKeyNotes), f.notes),
	)
	f.syncAnnivVisibility()

	btnSave := widget.NewButtonWithIcon(app.GetMsg(actionKey), theme.ConfirmIcon(), func() {
		name, err := f.submit()
		if err != nil {
			slog.Warn(config.ErrSaveEvents, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
			dialog.ShowError(err, w)
			return
		}
		w.Close()
		app.afterChange(f.savedToast(name))
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyCancel), theme.CancelIcon(), w.Close)

	w.SetContent(container.NewPadded(container.NewVBox(
		form,
		f.annivForm,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
	)))
	w.Resize(fyne.NewSize(config.DetailsWinWidth, 0))
	w.SetOnClosed(func() {
		if app.eventWindow == w {
			app.eventWindow = nil
		}
	})
	w.Canvas().Focus(f.name)
	w.Show()
}

// ShowDetails opens a read-only view of e with edit and delete actions.
func (app *CandelaApp) ShowDetails(e engine.ScheduledEvent) {
	if app.detailsWindow != nil {
		app.detailsWindow.Close()
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyDetails))
	app.detailsWindow = w

	_, subtitle, badge := app.RowText(e, app.Proximity.Today(), false)
	typeLine := app.TypeName(e.EventType)
	if e.AnniversaryType != nil {
		typeLine += " · " + app.AnnivName(*e.AnniversaryType)
	}

	notes := e.Notes
	if notes == "" {
		notes = app.GetMsg(config.TKeyNoNotes)
	}
	notesLabel := widget.NewLabel(notes)
	notesLabel.Wrapping = fyne.TextWrapWord

	btnEdit := widget.NewButtonWithIcon(app.GetMsg(config.TKeyEdit), theme.DocumentCreateIcon(), func() {
		w.Close()
		ev := e.Event
		app.ShowEventDialog(&ev)
	})
	btnDelete := widget.NewButtonWithIcon(app.GetMsg(config.TKeyDelete), theme.DeleteIcon(), func() {
		dialog.ShowConfirm(app.GetMsg(config.TKeyDelete), e.Name, func(ok bool) {
			if !ok {
				return
			}
			if err := app.deleteEvent(e.Event); err != nil {
				dialog.ShowError(errors.New(app.GetMsg(config.TKeyErrSave)), w)
				return
			}
			w.Close()
		}, w)
	})
	btnDelete.Importance = widget.DangerImportance

	w.SetContent(container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle(e.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(typeLine),
		widget.NewLabel(subtitle),
		widget.NewLabel(badge),
		widget.NewSeparator(),
		notesLabel,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnEdit, btnDelete),
	)))
	w.Resize(fyne.NewSize(config.DetailsWinWidth, config.DetailsWinHeight))
	w.SetOnClosed(func() {
		if app.detailsWindow == w {
			app.detailsWindow = nil
		}
	})
	w.Show()
}

// deleteEvent removes e from the store and refreshes the views.
func (app *CandelaApp) deleteEvent(e engine.Event) error {
	if err := app.Store.Delete(e.ID); err != nil {
		slog.Error(config.ErrSaveEvents, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		return err
	}
	app.afterChange(app.GetMsgWith(config.TKeyDeletedToast, map[string]any{"Name": e.Name}))
	return nil
}

// afterChange refreshes every view derived from the store.
func (app *CandelaApp) afterChange(status string) {
	app.RefreshEvents()
	app.NotifyUpcoming()
	app.showStatus(status)
}

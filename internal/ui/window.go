package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// BuildMainWindow creates the main window, or rebuilds its content in the
// current language when it already exists.
func (app *CandelaApp) BuildMainWindow() {
	if app.Window == nil {
		app.Window = app.App.NewWindow(app.GetMsg(config.TKeyAppTitle))
		app.Window.Resize(fyne.NewSize(config.MainWinWidth, config.MainWinHeight))
		app.Window.SetMaster()
	} else {
		app.Window.SetTitle(app.GetMsg(config.TKeyAppTitle))
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), func() { app.ShowEventDialog(nil) }),
		widget.NewToolbarAction(theme.DownloadIcon(), app.ShowImportWindow),
		widget.NewToolbarAction(theme.UploadIcon(), app.ShowExportDialog),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), app.ShowSettingsWindow),
	)

	app.listBox = container.NewVBox()
	app.status = widget.NewLabel("")
	app.status.Alignment = fyne.TextAlignCenter
	app.status.Hide()

	app.Window.SetContent(container.NewBorder(
		toolbar,
		app.status,
		nil, nil,
		container.NewVScroll(app.listBox),
	))

	slog.Info(config.LogMsgOpenWin, config.LogKeyComponent, config.CompUI)
	app.RefreshEvents()
}

// RefreshEvents reloads the store into the list and republishes the feed.
func (app *CandelaApp) RefreshEvents() {
	events := app.Store.SortedEvents()
	if app.listBox != nil {
		app.listBox.Objects = app.buildListContent(events)
		app.listBox.Refresh()
	}
	app.publishFeed()

	slog.Debug(config.LogMsgRefresh,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(events))
}

// buildListContent lays out the empty state, or an upcoming section followed
// by every event.
func (app *CandelaApp) buildListContent(events []engine.ScheduledEvent) []fyne.CanvasObject {
	if len(events) == 0 {
		title := widget.NewLabelWithStyle(app.GetMsg(config.TKeyEmptyTitle), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		title.Wrapping = fyne.TextWrapWord
		subtitle := widget.NewLabelWithStyle(app.GetMsg(config.TKeyEmptySubtitle), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		return []fyne.CanvasObject{layout.NewSpacer(), title, subtitle, layout.NewSpacer()}
	}

	threshold := app.Display().Settings.NotificationDays
	upcoming, _ := engine.Partition(events, threshold)
	today := app.Proximity.Today()

	var objs []fyne.CanvasObject
	if len(upcoming) > 0 {
		objs = append(objs, widget.NewLabelWithStyle(app.GetMsg(config.TKeyUpcoming), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		for _, e := range upcoming {
			objs = append(objs, app.newEventRow(e, today, threshold, true))
		}
		objs = append(objs, widget.NewSeparator())
	}

	heading := fmt.Sprintf("%s (%d)", app.GetMsg(config.TKeyAllEvents), len(events))
	objs = append(objs, widget.NewLabelWithStyle(heading, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, e := range events {
		objs = append(objs, app.newEventRow(e, today, threshold, false))
	}
	return objs
}

// RowText returns the title, the date line and the proximity badge of a row.
func (app *CandelaApp) RowText(e engine.ScheduledEvent, today engine.Date, highlight bool) (title, subtitle, badge string) {
	title = e.Name
	if e.DaysUntil == 0 {
		title += config.TodaySuffix
	}
	if highlight {
		title += config.UpcomingSuffixIcon
	}

	subtitle = app.DateLabel(e.Event)
	if age, ok := e.AgeNext(today); ok && age > 0 {
		subtitle += " · " + app.TurningLabel(age)
	}
	return title, subtitle, app.ProximityLabel(e.DaysUntil)
}

// -----------------------------------------------------------------------------
// Event Row
// -----------------------------------------------------------------------------

// eventRow is a tappable list entry that opens the event details.
type eventRow struct {
	widget.BaseWidget

	content  fyne.CanvasObject
	onTapped func()
}

func (app *CandelaApp) newEventRow(e engine.ScheduledEvent, today engine.Date, threshold int, highlight bool) *eventRow {
	title, subtitle, badge := app.RowText(e, today, highlight)

	name := widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: highlight})
	date := widget.NewLabel(subtitle)
	date.Importance = widget.LowImportance

	days := widget.NewLabel(badge)
	if e.DaysUntil <= threshold {
		days.Importance = widget.HighImportance
	}

	row := &eventRow{
		content:  container.NewBorder(nil, nil, nil, days, container.NewVBox(name, date)),
		onTapped: func() { app.ShowDetails(e) },
	}
	row.ExtendBaseWidget(row)
	return row
}

func (r *eventRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}

func (r *eventRow) Tapped(*fyne.PointEvent) {
	if r.onTapped != nil {
		r.onTapped()
	}
}

// showStatus displays a short confirmation below the list.
func (app *CandelaApp) showStatus(msg string) {
	if app.status == nil {
		return
	}
	app.status.SetText(msg)
	app.status.Show()
}

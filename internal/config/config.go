package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Candela/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Candela"
	AppID             = "com.github.candela"
	KeyringService    = "com.github.candela"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the JSON data files.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Storage Layout
// -----------------------------------------------------------------------------

const (
	// DataDirName is kept from the first release so existing data is found.
	DataDirName      = "birthday_app"
	EventsFileName   = "events.json"
	LegacyFileName   = "birthdays.json"
	SettingsFileName = "settings.json"

	JSONIndent = "  "

	// CreatedAtLayout mirrors the timestamps written by earlier versions.
	CreatedAtLayout = "2006-01-02T15:04:05.000000"
)

// DataDirParents is the path below the home directory holding DataDirName.
var DataDirParents = []string{".local", "share"}

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDataDir      = "data-dir"
	FlagList         = "list"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescDataDir  = "Directory holding events.json and settings.json"
	FlagDescList     = "Print events sorted by proximity and exit"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Event Model Values
// -----------------------------------------------------------------------------

const (
	EventTypeBirthday    = "birthday"
	EventTypeAnniversary = "anniversary"
	EventTypeSpecial     = "special"

	AnniversaryWedding      = "wedding"
	AnniversaryRelationship = "relationship"
	AnniversaryMemorial     = "memorial"
	AnniversaryOther        = "other"
)

// -----------------------------------------------------------------------------
// Settings Keys, Values & Defaults
// -----------------------------------------------------------------------------

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"

	LanguageAuto = "auto"
	LanguageTR   = "tr"
	LanguageEN   = "en"
	LanguageES   = "es"

	DefaultTheme                = ThemeSystem
	DefaultLanguage             = LanguageAuto
	DefaultNotificationsEnabled = true
	DefaultNotificationDays     = 7
	DefaultFeedEnabled          = false
	DefaultPort                 = "18080"

	// FallbackLanguage is used when "auto" cannot be resolved.
	FallbackLanguage = LanguageEN

	MinNotificationDays = 1
	MaxNotificationDays = 30

	// DefaultUpcomingThreshold is the bucket size used when no settings exist.
	DefaultUpcomingThreshold = 7

	// ClampDay replaces a day that does not exist in the target month.
	ClampDay = 28

	// Toolkit preferences, kept out of settings.json.
	PrefLastRun    = "last_run_version"
	PrefImportMode = "import_mode"
	PrefImportPath = "import_path"
	PrefImportURL  = "import_url"
	PrefImportUser = "import_user"
)

// SupportedThemes lists the accepted values of the theme setting.
var SupportedThemes = []string{ThemeSystem, ThemeLight, ThemeDark}

// SupportedLanguages lists the accepted values of the language setting.
var SupportedLanguages = []string{LanguageAuto, LanguageTR, LanguageEN, LanguageES}

// -----------------------------------------------------------------------------
// UI Constants
// -----------------------------------------------------------------------------

const (
	MainWinWidth        = 420
	MainWinHeight       = 620
	SettingsWinWidth    = 460
	ImportWinWidth      = 520
	DetailsWinWidth     = 360
	UpcomingSuffixIcon  = " ★"
	TodaySuffix         = " 🎂"
	LogMsgOpenWin       = "Opening main window"
	LogMsgRefresh       = "Event list refreshed"
	LayoutColumnsDouble = 2
	MinDay              = 1
	MaxDay              = 31
	MinMonth            = 1
	MaxMonth            = 12
	MinYear             = 1
	MaxYear             = 9999
	DetailsWinHeight    = 320
	MultiLineRows       = 3
	PlaceholderURL      = "https://example.com/contacts.vcf"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyAppTitle         = "app_title"
	TKeyAddEvent         = "add_event"
	TKeySettings         = "settings"
	TKeyImport           = "import_contacts"
	TKeyExport           = "export_calendar"
	TKeyEmptyTitle       = "empty_title"
	TKeyEmptySubtitle    = "empty_subtitle"
	TKeyUpcoming         = "upcoming_events"
	TKeyAllEvents        = "all_events"
	TKeyToday            = "today"
	TKeyTomorrow         = "tomorrow"
	TKeyDaysLeft         = "days_left"   // Requires Count
	TKeyTurning          = "turning"     // Requires Age
	TKeySummaryAge       = "summary_age" // Requires Name, Age
	TKeyNewEvent         = "new_event"
	TKeyEditEvent        = "edit_event"
	TKeyName             = "name"
	TKeyNamePlaceholder  = "name_placeholder"
	TKeyDay              = "day"
	TKeyMonth            = "month"
	TKeyYear             = "year"
	TKeyYearOptional     = "year_optional"
	TKeyNotes            = "notes"
	TKeyNotesPlaceholder = "notes_placeholder"
	TKeyEventType        = "event_type"
	TKeyAnnivType        = "anniversary_type"
	TKeyTypeBirthday     = "type_birthday"
	TKeyTypeAnniversary  = "type_anniversary"
	TKeyTypeSpecial      = "type_special"
	TKeyAnnivWedding     = "anniv_wedding"
	TKeyAnnivRelation    = "anniv_relationship"
	TKeyAnnivMemorial    = "anniv_memorial"
	TKeyAnnivOther       = "anniv_other"
	TKeyCancel           = "cancel"
	TKeyAdd              = "add"
	TKeySave             = "save"
	TKeyEdit             = "edit"
	TKeyDelete           = "delete"
	TKeyNoNotes          = "no_notes"
	TKeyDetails          = "event_details"
	TKeyAddedToast       = "added_toast"   // Requires Name
	TKeyUpdatedToast     = "updated_toast" // Requires Name
	TKeyDeletedToast     = "deleted_toast" // Requires Name
	TKeyTheme            = "theme"
	TKeyThemeSystem      = "theme_system"
	TKeyThemeLight       = "theme_light"
	TKeyThemeDark        = "theme_dark"
	TKeyLanguage         = "language"
	TKeyLangAuto         = "lang_auto"
	TKeyLangTR           = "lang_turkish"
	TKeyLangEN           = "lang_english"
	TKeyLangES           = "lang_spanish"
	TKeyNotifications    = "notifications"
	TKeyEnableNotif      = "enable_notifications"
	TKeyReminderDays     = "reminder_days"
	TKeyHelpReminderDays = "help_reminder_days"
	TKeyFeed             = "calendar_feed"
	TKeyEnableFeed       = "enable_feed"
	TKeyFeedPort         = "feed_port"
	TKeyHelpFeed         = "help_feed"
	TKeyUpcomingNotif    = "upcoming_notification" // Requires Count, Names
	TKeyModeLocal        = "mode_local"
	TKeyModeWeb          = "mode_web"
	TKeyBrowse           = "browse"
	TKeyURL              = "url"
	TKeyUser             = "user"
	TKeyPass             = "password"
	TKeyImportDone       = "import_done" // Requires Count
	TKeyImportFailed     = "import_failed"
	TKeyExportDone       = "export_done"
	TKeyFooter           = "footer" // Requires Version
	TKeyErrNameRequired  = "err_name_required"
	TKeyErrNumber        = "err_number"
	TKeyErrRange         = "err_range"
	TKeyErrSave          = "err_save"
	TKeyMenuShow         = "menu_show"
)

// MonthKeys are the translation keys of the month names, January first.
var MonthKeys = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Candela//Engine//EN"
	ICalCalName   = "Candela"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "candela"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"
	VCardNote        = "NOTE"

	DefaultICalRefresh = 24 * time.Hour

	// FormatTrigger builds a "N days before" VALARM trigger.
	FormatTrigger = "-P%dD"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY/ANNIVERSARY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatUID = "event-%d-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtICS   = ".ics"

	ExportFileName = "candela.ics"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLoadEvents       = "failed to load events"
	ErrSaveEvents       = "failed to save events"
	ErrLoadSettings     = "failed to load settings"
	ErrSaveSettings     = "failed to save settings"
	ErrMigrate          = "legacy migration failed"
	ErrEncodeJSON       = "failed to encode JSON"
	ErrWriteFile        = "failed to write file"
	ErrEmptyName        = "event name is empty"
	ErrEventType        = "unsupported event type"
	ErrAnnivType        = "unsupported anniversary type"
	ErrDataDir          = "could not determine data directory"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrExport           = "calendar export failed"
	ErrImport           = "contact import failed"
	ErrKeyringSave      = "failed to save credentials to keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary    = "%s"
	FallbackSummaryAge = "%s (%d)"
	FallbackDaysLeft   = "%d days left"
	FallbackName       = "Unknown"
	FallbackListLine   = "%3d  %02d/%02d  %s\n"
	FallbackListHead   = "-- %s --\n"
	ListHeadUpcoming   = "upcoming"
	ListHeadAll        = "all"

	// StubVCalendar is the minimal valid iCalendar object used when no events exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"

	MsgPortBusy      = "Port %s is busy or unavailable."
	MsgAppStop       = "Application stopped gracefully"
	MsgCtxCancel     = "Context cancelled, shutting down UI"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgEventsLoaded  = "Events loaded"
	MsgEventsSaved   = "Events saved"
	MsgEventAdded    = "Event added"
	MsgEventDeleted  = "Event deleted"
	MsgEventUpdated  = "Event updated"
	MsgEventMissing  = "No event with this id, nothing to do"
	MsgFileMissing   = "Data file not found, starting empty"
	MsgFileMalformed = "Data file malformed, treating as empty"
	MsgMigrated      = "Legacy birthdays migrated to events"
	MsgMigrateSkip   = "Legacy migration not needed"
	MsgSettingsSaved = "Settings saved"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgImportResult  = "vCard import finished"
	MsgGenSuccess    = "Calendar generation successful"
	MsgNotifySent    = "Upcoming reminder sent"
	MsgLangResolved  = "Automatic language resolved"
	MsgThemeApplied  = "Theme applied"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyPath      = "path"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyTheme     = "theme"
	LogKeyUser      = "user"
	LogKeyID        = "id"
	LogKeyName      = "name"
	LogKeyCount     = "count"
	LogKeyUpcoming  = "upcoming"
	LogKeyImported  = "imported"
	LogKeySkipped   = "skipped"
	LogKeyTotal     = "total_cards"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyEvents    = "events"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompEngine   = "engine"
	CompStore    = "store"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompImporter = "importer"
	CompMain     = "main"
	CompI18n     = "i18n"
)

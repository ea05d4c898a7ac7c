package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
	"github.com/tartampluch/candela/internal/store"
	"github.com/tartampluch/candela/internal/ui"
)

// options holds the parsed command line.
type options struct {
	version bool
	debug   bool
	list    bool
	dataDir string
}

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout))
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string, stdout io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		return config.ExitCodeError
	}

	if opts.version {
		printVersion(stdout)
		return config.ExitCodeSuccess
	}

	// The listing owns stdout, so its logs go to stderr.
	console := stdout
	if opts.list {
		console = os.Stderr
	}
	logCloser := setupLogging(opts.debug, console)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	dir := opts.dataDir
	if dir == "" {
		if dir, err = store.DefaultDir(); err != nil {
			slog.Error(config.ErrAppFailed, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
			return config.ExitCodeError
		}
	}
	st := store.New(dir)

	if opts.list {
		if err := printEvents(stdout, st); err != nil {
			slog.Error(config.ErrAppFailed, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
			return config.ExitCodeError
		}
		return config.ExitCodeSuccess
	}

	run(ctx, st)

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

func parseArgs(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.BoolVar(&opts.version, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.BoolVar(&opts.list, config.FlagList, false, config.FlagDescList)
	fs.StringVar(&opts.dataDir, config.FlagDataDir, "", config.FlagDescDataDir)
	err := fs.Parse(args)
	return opts, err
}

// run initializes the Fyne application, wires dependencies, and blocks in the UI loop.
func run(ctx context.Context, st *store.Store) {
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	gui := ui.NewCandelaApp(a, ctx, st, engine.NewHTTPFetcher())

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
}

// printEvents writes the upcoming bucket and then every event, soonest first.
func printEvents(w io.Writer, st *store.Store) error {
	if _, err := st.Migrate(); err != nil {
		slog.Warn(config.ErrMigrate, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
	}

	events := st.SortedEvents()
	upcoming, _ := engine.Partition(events, st.LoadSettings().NotificationDays)

	sections := []struct {
		head   string
		events []engine.ScheduledEvent
	}{
		{config.ListHeadUpcoming, upcoming},
		{config.ListHeadAll, events},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, config.FallbackListHead, s.head); err != nil {
			return err
		}
		for _, e := range s.events {
			if _, err := fmt.Fprintf(w, config.FallbackListLine, e.DaysUntil, e.Day, e.Month, e.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and, when the
// cache directory is usable, to a log file truncated on every start.
func setupLogging(debugMode bool, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath returns <UserCacheDir>/<AppID>/app.log, creating the directory.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}

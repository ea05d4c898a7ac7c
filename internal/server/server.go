// Package server publishes the event calendar on localhost so desktop
// calendar clients can subscribe to it instead of importing a one-off file.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/candela/internal/config"
	"github.com/tartampluch/candela/internal/engine"
)

// snapshot is one published rendering of the calendar.
type snapshot struct {
	data    []byte
	etag    string
	modTime time.Time
}

// FeedServer serves the latest published calendar over HTTP.
type FeedServer struct {
	Port  string
	Clock engine.Clock

	// Reads happen on every client poll, writes only when events change.
	current atomic.Pointer[snapshot]
	addr    atomic.Pointer[string]
}

// NewFeedServer creates a server that will listen on 127.0.0.1:port.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port:  port,
		Clock: engine.RealClock{},
	}
}

// Handler returns the HTTP handler serving the feed on every path.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.serveFeed)
	return mux
}

// Start binds the configured port and serves until ctx is cancelled.
// A busy port is reported immediately.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(config.LocalhostBindAddr, s.Port))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. The listener is closed on return.
func (s *FeedServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	addr := ln.Addr().String()
	s.addr.Store(&addr)
	defer s.addr.Store(nil)

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyURL, s.URL(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// URL returns the subscription address, or "" when the server is not listening.
func (s *FeedServer) URL() string {
	addr := s.addr.Load()
	if addr == nil {
		return ""
	}
	return config.SchemeHTTP + "://" + *addr + config.RouteRoot + config.ExportFileName
}

// Publish atomically replaces the served calendar.
func (s *FeedServer) Publish(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// HTTP dates have second precision.
	s.current.Store(&snapshot{
		data:    data,
		etag:    etag,
		modTime: s.Clock.Now().UTC().Truncate(time.Second),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// serveFeed answers GET and HEAD with the current snapshot. Conditional and
// range requests are handled by http.ServeContent.
func (s *FeedServer) serveFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	snap := s.current.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, snap.etag)

	http.ServeContent(w, r, config.ExportFileName, snap.modTime, bytes.NewReader(snap.data))
}

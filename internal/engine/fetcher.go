package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/candela/internal/config"
)

// VCardFetcher retrieves a remote address book for import.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher over plain HTTP(S) with optional Basic Auth.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured timeouts.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch downloads the address book at targetURL. The body is capped at
// config.MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	safe, err := redactURL(targetURL)
	if err != nil {
		return nil, err
	}
	log := slog.With(config.LogKeyComponent, config.CompFetcher, config.LogKeyURL, safe)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	log.Debug("Downloading address book")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn("Server returned error status", config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("server returned unexpected status: %s", resp.Status)
	}

	return limitedBody{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

// redactURL validates the scheme and strips the query, which may carry tokens,
// so the result is safe to log.
func redactURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	return u.Scheme + "://" + u.Host + u.Path, nil
}

// limitedBody pairs a size-limited reader with the original body's Close.
type limitedBody struct {
	io.Reader
	io.Closer
}

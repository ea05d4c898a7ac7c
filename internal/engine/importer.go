package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/candela/internal/config"
)

// Import source modes.
const (
	SourceModeLocal = "local"
	SourceModeWeb   = "web"
)

// ImportConfig contains all parameters required to import contacts.
type ImportConfig struct {
	Mode      string // SourceModeLocal or SourceModeWeb
	LocalPath string // Absolute path to the .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// Importer turns vCard address books into event drafts.
type Importer struct {
	Fetcher VCardFetcher // Interface for network abstraction.
}

// Run opens the configured source and decodes every card carrying a BDAY or
// ANNIVERSARY property.
func (im *Importer) Run(ctx context.Context, cfg ImportConfig) ([]Draft, error) {
	reader, err := im.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseVCards(ctx, reader)
}

// acquireStream opens the appropriate data source based on configuration.
func (im *Importer) acquireStream(ctx context.Context, cfg ImportConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("unsupported source mode: %q", cfg.Mode)
	}
}

// ParseVCards decodes a vCard stream. Malformed cards and unparsable dates are
// skipped so one bad entry does not lose the rest of the address book.
func ParseVCards(ctx context.Context, r io.Reader) ([]Draft, error) {
	log := slog.With(config.LogKeyComponent, config.CompImporter)
	decoder := vcard.NewDecoder(r)

	var drafts []Draft
	processed := 0

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}
		processed++

		name := cardName(card)
		notes := ""
		if n := card.Get(config.VCardNote); n != nil {
			notes = n.Value
		}

		if d, ok := draftFromField(card, config.VCardBDAY, name, notes, Birthday); ok {
			drafts = append(drafts, d)
		}
		if d, ok := draftFromField(card, config.VCardAnniversary, name, notes, Anniversary); ok {
			other := OtherAnniv
			d.AnniversaryType = &other
			drafts = append(drafts, d)
		}
	}

	log.Info(config.MsgImportResult,
		config.LogKeyTotal, processed,
		config.LogKeyCount, len(drafts))
	return drafts, nil
}

// cardName picks FN (Formatted) over N (Structured) with a fallback.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

func draftFromField(card vcard.Card, field, name, notes string, t EventType) (Draft, bool) {
	f := card.Get(field)
	if f == nil || f.Value == "" {
		return Draft{}, false
	}
	date, yearKnown, err := parseDate(f.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyValue, f.Value)
		return Draft{}, false
	}

	d := Draft{
		Name:      name,
		Day:       date.Day(),
		Month:     int(date.Month()),
		Notes:     notes,
		EventType: t,
	}
	if yearKnown {
		y := date.Year()
		d.Year = &y
	}
	return d, true
}

// parseDate handles the vCard date formats seen in the wild.
func parseDate(value string) (time.Time, bool, error) {
	// Full dates (Year known)
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown). time.Parse rejects "--02-29" without a
	// year, so parse against a leap year.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse("2006"+f, leapYearPrefix+value); err == nil {
			return t, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

const leapYearPrefix = "2000"

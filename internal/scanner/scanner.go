// Package scanner drives the scan run: page iteration, reference price
// refresh, profit evaluation, and alert surfacing.
package scanner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"steam_market_deals/internal/alert"
	"steam_market_deals/internal/market"
	"steam_market_deals/internal/notify"
	"steam_market_deals/internal/pacing"
	"steam_market_deals/internal/pricecache"
	"steam_market_deals/internal/profit"
	"steam_market_deals/internal/steam"
)

// DefaultPercentThreshold is the minimum profit percentage an opportunity
// must clear before it is surfaced.
var DefaultPercentThreshold = decimal.NewFromInt(20)

// ReferenceFetcher resolves a reference price by item name. A nil result is
// the "unavailable" sentinel and is cached as such.
type ReferenceFetcher interface {
	Fetch(ctx context.Context, name string) *steam.Price
}

// SoundPlayer plays the audible alert, blocking until done.
type SoundPlayer interface {
	Play() error
}

type Config struct {
	PercentThreshold decimal.Decimal
	TotalPages       int
	StalenessWindow  time.Duration
	Verbose          bool
}

// Deps collects the scanner's collaborators. Out and Now default to
// os.Stdout and time.Now when left unset.
type Deps struct {
	Source   market.Source
	Fetcher  ReferenceFetcher
	Cache    *pricecache.Cache
	DealsLog *alert.LogFile
	Pacer    *pacing.Pacer
	Sinks    []notify.Sink
	Sound    SoundPlayer
	Out      io.Writer
	Now      func() time.Time
}

// Scanner walks marketplace pages, keeps the reference cache current, and
// raises an alert for each listing whose profit clears the threshold.
type Scanner struct {
	cfg    Config
	deps   Deps
	ledger *alert.Ledger
}

func New(cfg Config, deps Deps) *Scanner {
	if cfg.PercentThreshold.IsZero() {
		cfg.PercentThreshold = DefaultPercentThreshold
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Scanner{
		cfg:    cfg,
		deps:   deps,
		ledger: alert.NewLedger(),
	}
}

// Scan runs one full pass over pages 0 through TotalPages inclusive. Failed
// pages are skipped; a cache persist failure aborts the run so the scan never
// continues past checkpoints it could not record.
func (s *Scanner) Scan(ctx context.Context) error {
	log.Info().
		Str("source", s.deps.Source.Name()).
		Int("total_pages", s.cfg.TotalPages).
		Str("threshold", s.cfg.PercentThreshold.String()).
		Msg("Starting scan")

	for page := 0; page <= s.cfg.TotalPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(s.deps.Out, "getting page %d\n", page)
		items, err := s.deps.Source.GetPage(ctx, page)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("Failed to fetch page, skipping")
			continue
		}
		if len(items) == 0 {
			log.Info().Int("page", page).Msg("Page returned no items, skipping")
			continue
		}

		log.Debug().Int("page", page).Int("items", len(items)).Msg("Scanning page")

		for i, item := range items {
			if err := s.refreshReference(ctx, item.Name); err != nil {
				return err
			}
			if i%10 == 0 && i != 0 {
				if err := s.deps.Cache.Persist(); err != nil {
					return fmt.Errorf("checkpoint persist failed: %w", err)
				}
			}
			s.evaluate(ctx, item)
		}

		if err := s.deps.Cache.Persist(); err != nil {
			return fmt.Errorf("page persist failed: %w", err)
		}
		fmt.Fprintln(s.deps.Out, "waiting...")
		s.deps.Pacer.Pause()
	}

	s.printSummary()
	return nil
}

// refreshReference fetches and caches the reference price when the item is
// unknown or its entry has gone stale. A nil fetch result is cached as the
// unavailable sentinel so the name is not retried next run.
func (s *Scanner) refreshReference(ctx context.Context, name string) error {
	if s.deps.Cache.Exists(name) && s.deps.Cache.IsFresh(name, s.deps.Now(), s.cfg.StalenessWindow) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.cfg.Verbose {
		fmt.Fprintf(s.deps.Out, "getting steam price for [%q]\n", name)
	}
	price := s.deps.Fetcher.Fetch(ctx, name)
	if price == nil {
		log.Debug().Str("item", name).Msg("No reference price available")
	}
	s.deps.Cache.Upsert(name, price)
	s.deps.Pacer.Pause()
	return nil
}

func (s *Scanner) evaluate(ctx context.Context, item market.Item) {
	ref, err := s.deps.Cache.Lookup(item.Name)
	if err != nil || ref == nil {
		return
	}

	pct := profit.Percentage(item.Price, ref.LowestPrice)
	if !pct.GreaterThan(s.cfg.PercentThreshold) {
		return
	}

	s.raise(ctx, alert.New(item, *ref, pct))
}

// raise records the alert and, for the first occurrence of its item name this
// run, surfaces it: banner, deals log, sinks, sound. Delivery failures are
// logged and swallowed so one bad sink never stops the scan.
func (s *Scanner) raise(ctx context.Context, a *alert.Alert) {
	if first := s.ledger.Record(a); !first {
		log.Debug().Str("item", a.Item.Name).Msg("Duplicate alert suppressed")
		return
	}

	fmt.Fprintln(s.deps.Out, "########## ALERT! ##########")
	fmt.Fprintln(s.deps.Out, a)

	if s.deps.DealsLog != nil {
		if err := s.deps.DealsLog.Append(a); err != nil {
			log.Warn().Err(err).Str("item", a.Item.Name).Msg("Failed to append to deals log")
		}
	}
	for _, sink := range s.deps.Sinks {
		if err := sink.Send(ctx, a); err != nil {
			log.Warn().Err(err).Str("sink", sink.Name()).Str("item", a.Item.Name).Msg("Sink delivery failed")
		}
	}
	if s.deps.Sound != nil {
		if err := s.deps.Sound.Play(); err != nil {
			log.Warn().Err(err).Msg("Failed to play alert sound")
		}
	}
}

func (s *Scanner) printSummary() {
	fmt.Fprintln(s.deps.Out, "done!")
	fmt.Fprintf(s.deps.Out, "found %d alerts\n", s.ledger.Count())
	for _, a := range s.ledger.FirstPerItem() {
		fmt.Fprintln(s.deps.Out, a)
	}
}

// Ledger exposes the run's alert bookkeeping, mainly for the summary and
// tests.
func (s *Scanner) Ledger() *alert.Ledger {
	return s.ledger
}

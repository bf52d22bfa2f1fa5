package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"steam_market_deals/internal/alert"
	"steam_market_deals/internal/config"
	"steam_market_deals/internal/market"
	"steam_market_deals/internal/notify"
	"steam_market_deals/internal/pacing"
	"steam_market_deals/internal/pricecache"
	"steam_market_deals/internal/scanner"
	"steam_market_deals/internal/steam"
)

func main() {
	log.Debug().Msg("Starting application")
	setupEnvironment()

	cfg, err := config.Load(os.Getenv("SCANNER_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if os.Getenv("LOGLEVEL") == "" && cfg.LogLevel != "" {
		applyLogLevel(cfg.LogLevel)
	}

	ctx := context.Background()
	resilience := config.DefaultResilienceConfig

	cache, err := pricecache.Load(cfg.CacheFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load price cache")
	}

	deps := scanner.Deps{
		Source:   buildSource(cfg, resilience),
		Fetcher:  steam.NewClient(resilience.ReferenceFetch, 20),
		Cache:    cache,
		DealsLog: alert.NewLogFile(cfg.AlertLog),
		Pacer:    pacing.New(resilience.PolitenessMin, resilience.PolitenessMax),
		Sinks:    buildSinks(ctx, cfg, resilience),
	}
	if cfg.PlaySound {
		deps.Sound = alert.NewSoundPlayer(cfg.SoundFile)
	}

	s := scanner.New(scanner.Config{
		PercentThreshold: decimal.NewFromFloat(cfg.PercentThreshold),
		TotalPages:       cfg.TotalPages,
		StalenessWindow:  cfg.StalenessWindow(),
		Verbose:          cfg.Verbose,
	}, deps)

	if err := s.Scan(ctx); err != nil {
		log.Fatal().Err(err).Msg("Scan aborted")
	}
}

func buildSource(cfg *config.Config, resilience config.ResilienceConfig) market.Source {
	switch cfg.Source {
	case "csdeals":
		var rates market.RateProvider
		if cfg.CSDeals.FixedRate > 0 {
			rates = market.FixedRate{Value: decimal.NewFromFloat(cfg.CSDeals.FixedRate)}
		} else {
			rates = market.NewHTTPRates()
		}
		return market.NewCSDeals(rates,
			decimal.NewFromFloat(cfg.CSDeals.MinPrice),
			decimal.NewFromFloat(cfg.CSDeals.MaxPrice))
	default:
		return market.NewSkinport(resilience.MarketPage, market.SkinportOptions{
			SortBy:   cfg.Skinport.SortBy,
			Order:    cfg.Skinport.Order,
			PriceMin: cfg.Skinport.PriceMin,
			PriceMax: cfg.Skinport.PriceMax,
		})
	}
}

func buildSinks(ctx context.Context, cfg *config.Config, resilience config.ResilienceConfig) []notify.Sink {
	var sinks []notify.Sink
	if cfg.Push.Enabled {
		sinks = append(sinks, notify.NewPush(cfg.Push.BaseURL, cfg.Push.Topic, cfg.Push.Priority, resilience.Notification))
	}
	if cfg.Sheets.Enabled {
		sheets, err := notify.NewSheets(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.WriteRange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets sink")
		}
		sinks = append(sinks, sheets)
	}
	return sinks
}

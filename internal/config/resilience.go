package config

import (
	"time"

	"steam_market_deals/internal/retry"
)

type ResilienceConfig struct {
	ReferenceFetch retry.Config
	MarketPage     retry.Config
	Notification   retry.Config
	PolitenessMin  time.Duration
	PolitenessMax  time.Duration
}

var DefaultResilienceConfig = ResilienceConfig{
	ReferenceFetch: retry.Config{
		MaxAttempts: 3,
		Delay:       1 * time.Second,
		Timeout:     15 * time.Second,
	},
	MarketPage: retry.Config{
		MaxAttempts: 3,
		Delay:       1 * time.Second,
		Timeout:     30 * time.Second,
	},
	Notification: retry.Config{
		MaxAttempts: 3,
		Delay:       1 * time.Second,
		Timeout:     10 * time.Second,
	},
	PolitenessMin: 2 * time.Second,
	PolitenessMax: 5 * time.Second,
}

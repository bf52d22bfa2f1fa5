// Package notify delivers surfaced alerts to optional external sinks. Sink
// failures are per-alert failures: the caller logs them and the scan
// continues.
package notify

import (
	"context"

	"steam_market_deals/internal/alert"
)

// Sink receives each first-seen alert of a run.
type Sink interface {
	Name() string
	Send(ctx context.Context, a *alert.Alert) error
}

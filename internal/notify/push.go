package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"steam_market_deals/internal/alert"
	"steam_market_deals/internal/retry"
)

// Push posts alert text to an ntfy-style topic endpoint.
type Push struct {
	httpClient *http.Client
	retryCfg   retry.Config
	baseURL    string
	topic      string
	priority   string
}

func NewPush(baseURL, topic, priority string, retryCfg retry.Config) *Push {
	return &Push{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryCfg: retryCfg,
		baseURL:  baseURL,
		topic:    topic,
		priority: priority,
	}
}

func (p *Push) Name() string {
	return "push"
}

func (p *Push) Send(ctx context.Context, a *alert.Alert) error {
	message := fmt.Sprintf("%s at %s\nprofit %s%% (net %s)\n%s",
		a.Item.Name, a.Item.Price.StringFixed(2),
		a.Percentage, a.NetProfit.StringFixed(2),
		a.Item.URL)

	_, err := retry.WithRetry(ctx, p.retryCfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.post(ctx, message)
	})
	return err
}

func (p *Push) post(ctx context.Context, message string) error {
	url := fmt.Sprintf("%s/%s", p.baseURL, p.topic)

	log.Debug().
		Str("url", url).
		Msg("Sending push notification")

	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("creating push request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")
	if p.priority != "" {
		req.Header.Set("Priority", p.priority)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push notification failed: HTTP %d", resp.StatusCode)
	}

	return nil
}

package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"steam_market_deals/internal/alert"
	"steam_market_deals/internal/market"
	"steam_market_deals/internal/retry"
	"steam_market_deals/internal/steam"
)

func testAlert() *alert.Alert {
	item := market.Item{
		Source: "skinport",
		Name:   "Sheet Metal Door",
		Price:  decimal.RequireFromString("10.00"),
		URL:    "https://skinport.com/market/252490?search=Sheet%20Metal%20Door",
	}
	ref := steam.Price{
		Name:        "Sheet Metal Door",
		LowestPrice: decimal.RequireFromString("20.00"),
		Volume:      412,
	}
	return alert.New(item, ref, decimal.RequireFromString("50"))
}

func testRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		Timeout:     time.Second,
		Sleep:       func(time.Duration) {},
	}
}

func TestPushSendPostsToTopic(t *testing.T) {
	var gotPath, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	push := NewPush(server.URL, "deals", "high", testRetryConfig())

	if err := push.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/deals" {
		t.Errorf("expected path /deals, got %q", gotPath)
	}
	if gotPriority != "high" {
		t.Errorf("expected priority high, got %q", gotPriority)
	}
	if !strings.Contains(gotBody, "Sheet Metal Door") {
		t.Errorf("expected body to name the item, got %q", gotBody)
	}
	if !strings.Contains(gotBody, "50%") {
		t.Errorf("expected body to carry the profit percent, got %q", gotBody)
	}
}

func TestPushSendRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	push := NewPush(server.URL, "deals", "", testRetryConfig())

	if err := push.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestPushSendReportsExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	push := NewPush(server.URL, "deals", "", testRetryConfig())

	if err := push.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

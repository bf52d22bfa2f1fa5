package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"steam_market_deals/internal/retry"

	"github.com/shopspring/decimal"
)

func testRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts: 3,
		Delay:       time.Second,
		Timeout:     time.Second,
		Sleep:       func(time.Duration) {},
	}
}

func newTestSkinport(baseURL string) *Skinport {
	s := NewSkinport(testRetryConfig(), SkinportOptions{})
	s.baseURL = baseURL
	return s
}

func TestSkinportGetPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pricegt") != "200" || q.Get("pricelt") != "10000" {
			t.Errorf("Unexpected price bounds: %s", r.URL.RawQuery)
		}
		if q.Get("sort") != "date" || q.Get("order") != "desc" {
			t.Errorf("Unexpected sort params: %s", r.URL.RawQuery)
		}
		if q.Get("skip") != "2" {
			t.Errorf("Expected skip=2, got %s", q.Get("skip"))
		}
		fmt.Fprint(w, `{"items":[
			{"marketName":"Tempered AK47","salePrice":250,"suggestedPrice":310,"url":"tempered-ak47"},
			{"marketName":"Whiteout Kilt","salePrice":1999,"suggestedPrice":2400,"url":"whiteout-kilt"}
		]}`)
	}))
	defer srv.Close()

	items, err := newTestSkinport(srv.URL).GetPage(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Source != "skinport" {
		t.Errorf("Expected source skinport, got %q", first.Source)
	}
	if first.Name != "Tempered AK47" {
		t.Errorf("Unexpected name %q", first.Name)
	}
	if !first.Price.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected price 2.50, got %s", first.Price)
	}
	if first.SuggestedPrice == nil || !first.SuggestedPrice.Equal(decimal.RequireFromString("3.10")) {
		t.Errorf("Expected suggested price 3.10, got %v", first.SuggestedPrice)
	}
	if first.URL != "https://skinport.com/market/252490?search=tempered-ak47" {
		t.Errorf("Unexpected URL %q", first.URL)
	}
}

func TestSkinportGetPageRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	items, err := newTestSkinport(srv.URL).GetPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetPage returned error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty page, got %d items", len(items))
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestSkinportGetPageMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance</html>`)
	}))
	defer srv.Close()

	if _, err := newTestSkinport(srv.URL).GetPage(context.Background(), 0); err == nil {
		t.Error("Expected error for malformed response")
	}
}

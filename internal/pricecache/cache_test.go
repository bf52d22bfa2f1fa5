package pricecache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"steam_market_deals/internal/steam"

	"github.com/shopspring/decimal"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "prices.json")
}

func samplePrice(fetchedAt time.Time) *steam.Price {
	return &steam.Price{
		Name:        "Tempered AK47",
		LowestPrice: decimal.RequireFromString("2.50"),
		MedianPrice: decimal.RequireFromString("2.61"),
		Volume:      1234,
		FetchedAt:   fetchedAt,
		URL:         "https://steamcommunity.com/market/listings/252490/Tempered%20AK47",
	}
}

func TestLoadMissingFileInitializesAndPersists(t *testing.T) {
	path := cachePath(t)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected cache file to be created immediately: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	path := cachePath(t)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := samplePrice(time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC))
	c.Upsert(want.Name, want)
	if err := c.Persist(); err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	got, err := reloaded.Lookup(want.Name)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got.Name != want.Name {
		t.Errorf("Name: got %q, want %q", got.Name, want.Name)
	}
	if !got.LowestPrice.Equal(want.LowestPrice) {
		t.Errorf("LowestPrice: got %s, want %s", got.LowestPrice, want.LowestPrice)
	}
	if !got.MedianPrice.Equal(want.MedianPrice) {
		t.Errorf("MedianPrice: got %s, want %s", got.MedianPrice, want.MedianPrice)
	}
	if got.Volume != want.Volume {
		t.Errorf("Volume: got %d, want %d", got.Volume, want.Volume)
	}
	if !got.FetchedAt.Equal(want.FetchedAt) {
		t.Errorf("FetchedAt: got %v, want %v", got.FetchedAt, want.FetchedAt)
	}
	if got.URL != want.URL {
		t.Errorf("URL: got %q, want %q", got.URL, want.URL)
	}
}

func TestSentinelRoundTrip(t *testing.T) {
	path := cachePath(t)
	c, _ := Load(path)
	c.Upsert("ghost item", nil)
	if err := c.Persist(); err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if !reloaded.Exists("ghost item") {
		t.Fatal("Expected sentinel entry to survive a round trip")
	}
	price, err := reloaded.Lookup("ghost item")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if price != nil {
		t.Errorf("Expected nil sentinel, got %+v", price)
	}
	// The sentinel never goes stale, so the item is not refetched.
	if !reloaded.IsFresh("ghost item", time.Now(), 72*time.Hour) {
		t.Error("Expected sentinel entry to be fresh")
	}
}

func TestLookupAbsentKey(t *testing.T) {
	c, _ := Load(cachePath(t))
	_, err := c.Lookup("never seen")
	if err == nil {
		t.Fatal("Expected error for absent key")
	}
	var notFound *ItemNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected ItemNotFoundError, got %T", err)
	}
	if notFound.Name != "never seen" {
		t.Errorf("Expected error to identify the requested name, got %q", notFound.Name)
	}
}

func TestIsFresh(t *testing.T) {
	c, _ := Load(cachePath(t))
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	window := 72 * time.Hour

	c.Upsert("recent", samplePrice(now.Add(-48*time.Hour)))
	c.Upsert("old", samplePrice(now.Add(-96*time.Hour)))
	c.Upsert("undated", samplePrice(time.Time{}))

	if !c.IsFresh("recent", now, window) {
		t.Error("Entry 2 days old should be fresh within a 3 day window")
	}
	if c.IsFresh("old", now, window) {
		t.Error("Entry 4 days old should be stale")
	}
	if !c.IsFresh("undated", now, window) {
		t.Error("Entry without timestamp should count as fresh")
	}
	if c.IsFresh("missing", now, window) {
		t.Error("Missing entry should not be fresh")
	}
}

func TestUpsertReplacesWholesale(t *testing.T) {
	c, _ := Load(cachePath(t))
	first := samplePrice(time.Now())
	c.Upsert(first.Name, first)

	second := samplePrice(time.Now())
	second.LowestPrice = decimal.RequireFromString("9.99")
	second.Volume = 1
	c.Upsert(first.Name, second)

	got, err := c.Lookup(first.Name)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if !got.LowestPrice.Equal(second.LowestPrice) || got.Volume != 1 {
		t.Errorf("Expected replacement entry, got %+v", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for corrupt cache file")
	}
}

func TestLoadUnsupportedSchemaVersion(t *testing.T) {
	path := cachePath(t)
	if err := os.WriteFile(path, []byte(`{"schema_version":99,"entries":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unsupported schema version")
	}
}

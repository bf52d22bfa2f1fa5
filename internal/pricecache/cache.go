// Package pricecache persists reference prices between runs so up-to-date
// items skip the network round trip.
package pricecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"steam_market_deals/internal/steam"

	"github.com/rs/zerolog/log"
)

// SchemaVersion identifies the persisted cache format. Files with any other
// version are rejected as corrupt rather than guessed at.
const SchemaVersion = 1

// ItemNotFoundError reports a lookup on a key the cache has never seen.
// Callers expecting possible absence should use Exists first.
type ItemNotFoundError struct {
	Name string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %q not found in price cache", e.Name)
}

// Cache is a durable name → reference price mapping. A nil price value is a
// recorded "unavailable" sentinel: the item was looked up and the reference
// market had nothing, so it is not refetched.
//
// A Cache is exclusively owned by a single scan run; concurrent runs against
// the same file are unsupported (last persist wins).
type Cache struct {
	path    string
	entries map[string]*steam.Price
}

type document struct {
	SchemaVersion int                     `json:"schema_version"`
	Entries       map[string]*steam.Price `json:"entries"`
}

// Load reads the full mapping from path. A missing file initializes an empty
// cache and persists it immediately; an unreadable or corrupt file is an
// error.
func Load(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]*steam.Price),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("No price cache file; creating empty cache")
		if err := c.Persist(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read price cache %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt price cache %s: %w", path, err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("price cache %s has unsupported schema version %d", path, doc.SchemaVersion)
	}
	if doc.Entries != nil {
		c.entries = doc.Entries
	}

	log.Debug().
		Str("path", path).
		Int("entries", len(c.entries)).
		Msg("Loaded price cache")
	return c, nil
}

// Lookup returns the stored price for name. Absent keys yield an
// ItemNotFoundError; a present key may still carry a nil price (the
// unavailable sentinel).
func (c *Cache) Lookup(name string) (*steam.Price, error) {
	price, ok := c.entries[name]
	if !ok {
		return nil, &ItemNotFoundError{Name: name}
	}
	return price, nil
}

// Exists reports whether name has an entry, sentinel included.
func (c *Cache) Exists(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// IsFresh reports whether the entry for name is within the staleness window
// at the given time. Entries without a timestamp, the unavailable sentinel
// included, count as fresh. The entry must exist; IsFresh on a missing key
// returns false.
func (c *Cache) IsFresh(name string, now time.Time, window time.Duration) bool {
	price, ok := c.entries[name]
	if !ok {
		return false
	}
	if price == nil || price.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(price.FetchedAt) <= window
}

// Upsert replaces the entry for name wholesale. A nil price records the
// unavailable sentinel.
func (c *Cache) Upsert(name string, price *steam.Price) {
	c.entries[name] = price
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Persist serializes the full mapping to the cache file, overwriting prior
// contents. The write is not atomic.
func (c *Cache) Persist() error {
	doc := document{
		SchemaVersion: SchemaVersion,
		Entries:       c.entries,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode price cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write price cache %s: %w", c.path, err)
	}
	return nil
}

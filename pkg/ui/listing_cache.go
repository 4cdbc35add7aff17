package ui

import (
	"sort"
	"time"
)

// listingKey identifies one listing request. An empty glob means the
// root listing, sent without a glob parameter.
type listingKey struct {
	nodeID string
	glob   string
}

func (k listingKey) String() string {
	if k.glob == "" {
		return k.nodeID
	}
	return k.nodeID + ":" + k.glob
}

type cachedListing struct {
	key      listingKey
	paths    []string
	storedAt time.Time
}

// listingCache keeps recent listing results so revisiting a folder is instant
type listingCache struct {
	entries map[listingKey]cachedListing
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func newListingCache(ttl time.Duration, max int) *listingCache {
	return &listingCache{
		entries: map[listingKey]cachedListing{},
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

func (c *listingCache) lookup(key listingKey) ([]string, bool) {
	if c.ttl <= 0 || len(c.entries) == 0 {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return append([]string{}, entry.paths...), true
}

func (c *listingCache) store(key listingKey, paths []string) {
	if c.ttl <= 0 {
		return
	}
	c.entries[key] = cachedListing{
		key:      key,
		paths:    append([]string{}, paths...),
		storedAt: c.now(),
	}
	records := c.records()
	if c.max > 0 && len(records) > c.max {
		records = records[:c.max]
	}
	c.entries = map[listingKey]cachedListing{}
	for _, r := range records {
		c.entries[r.key] = r
	}
}

func (c *listingCache) invalidate(key listingKey) {
	delete(c.entries, key)
}

// records returns live entries, newest first
func (c *listingCache) records() []cachedListing {
	out := make([]cachedListing, 0, len(c.entries))
	for _, entry := range c.entries {
		if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].storedAt.After(out[j].storedAt)
	})
	return out
}

func (c *listingCache) size() int {
	return len(c.records())
}

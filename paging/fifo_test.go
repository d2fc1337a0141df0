// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package paging

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/stretchr/testify/assert"
)

type CacheAssertions struct {
	*assert.Assertions
	Cache *Cache
	Clock *clock.Mock
}

func NewCacheAssertions(t assert.TestingT, capacity int) *CacheAssertions {
	clk := clock.NewMock()
	return &CacheAssertions{
		assert.New(t),
		NewWithClock(capacity, clk),
		clk,
	}
}

// records makes a collection of n Patient versions named after tag.
func records(tag string, n int) []resource.Record {
	result := make([]resource.Record, n)
	for i := range result {
		result[i] = resource.Record{
			ResourceType: "Patient",
			ID:           tag,
			VersionID:    strconv.Itoa(i + 1),
		}
	}
	return result
}

// StoreTag stores a small collection and returns its token.
func (a *CacheAssertions) StoreTag(tag string) string {
	token := a.Cache.Store(records(tag, 2))
	a.NotEmpty(token)
	return token
}

// CacheHas asserts that token is live and holds tag's records.
func (a *CacheAssertions) CacheHas(token, tag string) {
	page, ok := a.Cache.Fetch(token)
	if a.True(ok, "missing page %v", tag) {
		a.Equal(token, page.Token)
		a.Equal(records(tag, 2), page.Records)
	}
}

// CacheDoesNotHave asserts that token is not live.
func (a *CacheAssertions) CacheDoesNotHave(token string) {
	page, ok := a.Cache.Fetch(token)
	a.False(ok)
	a.Nil(page)
}

// TestStoreFetch checks that a stored collection comes back intact.
func TestStoreFetch(t *testing.T) {
	a := NewCacheAssertions(t, 2)
	token := a.StoreTag("Marvin")
	a.CacheHas(token, "Marvin")
	a.Equal(1, a.Cache.Len())
	a.CacheDoesNotHave("no-such-token")
}

// TestStoreCopies checks that changing the caller's slice afterwards
// does not change the stored page.
func TestStoreCopies(t *testing.T) {
	a := NewCacheAssertions(t, 2)
	rs := records("Horton", 2)
	token := a.Cache.Store(rs)
	rs[0].ID = "Sam"
	a.CacheHas(token, "Horton")
}

// TestDistinctTokens checks that every store gets its own token.
func TestDistinctTokens(t *testing.T) {
	a := NewCacheAssertions(t, 10)
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token := a.StoreTag("Marvin")
		a.False(seen[token], "token %v reused", token)
		seen[token] = true
	}
}

// TestEvictOldest checks that the N+1st store evicts the first page.
func TestEvictOldest(t *testing.T) {
	a := NewCacheAssertions(t, 2)
	marvin := a.StoreTag("Marvin")
	horton := a.StoreTag("Horton")
	a.CacheHas(marvin, "Marvin")
	a.CacheHas(horton, "Horton")

	sam := a.StoreTag("Sam")
	a.CacheDoesNotHave(marvin)
	a.CacheHas(horton, "Horton")
	a.CacheHas(sam, "Sam")
	a.Equal(2, a.Cache.Len())
	a.Equal(uint64(1), a.Cache.Evictions())
}

// TestEvictionIgnoresAccess checks that fetching a page does not
// protect it from eviction, unlike an LRU cache.
func TestEvictionIgnoresAccess(t *testing.T) {
	a := NewCacheAssertions(t, 2)
	marvin := a.StoreTag("Marvin")
	horton := a.StoreTag("Horton")

	// Marvin is now most recently used, but still oldest
	a.CacheHas(marvin, "Marvin")

	a.StoreTag("Sam")
	a.CacheDoesNotHave(marvin)
	a.CacheHas(horton, "Horton")
}

// TestCreated checks that pages are stamped with the cache's clock.
func TestCreated(t *testing.T) {
	a := NewCacheAssertions(t, 2)
	a.Clock.Add(90 * time.Second)
	token := a.StoreTag("Marvin")
	page, ok := a.Cache.Fetch(token)
	if a.True(ok) {
		a.Equal(a.Clock.Now(), page.Created)
	}
}

// TestConcurrentStore checks that the capacity holds under
// concurrent writers.
func TestConcurrentStore(t *testing.T) {
	a := NewCacheAssertions(t, 5)
	var wg sync.WaitGroup
	tokens := make(chan string, 100)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				tokens <- a.Cache.Store(records("Marvin", 1))
			}
		}()
	}
	wg.Wait()
	close(tokens)

	live := 0
	for token := range tokens {
		if _, ok := a.Cache.Fetch(token); ok {
			live++
		}
	}
	a.Equal(5, live)
	a.Equal(5, a.Cache.Len())
	a.Equal(uint64(95), a.Cache.Evictions())
}

func TestBadCapacity(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}

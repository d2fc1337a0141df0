// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package paging holds result collections that are too large to
// return in a single response, so that later continuation requests
// can fetch further windows of them.
//
// The cache has a fixed capacity.  Once it is full, storing another
// page evicts the oldest one by insertion order; fetching a page does
// not make it any younger.  A token whose page has been evicted is
// simply unknown, and callers must be prepared for any token to go
// away.
package paging

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/satori/go.uuid"
)

// Page is a stored result collection.
type Page struct {
	// Token is the opaque continuation identifier for the page.
	Token string

	// Records is the complete result collection, in the order
	// the handler returned it.
	Records []resource.Record

	// Created is the time the page was stored.
	Created time.Time
}

// Cache is a first-in, first-out page store with a fixed capacity.
// It can be safely accessed from multiple goroutines.
type Cache struct {
	capacity  int
	clock     clock.Clock
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
	evictions uint64
}

// New creates a cache holding at most capacity pages, using the
// wall clock for page creation times.  Panics if capacity is not
// positive.
func New(capacity int) *Cache {
	return NewWithClock(capacity, clock.New())
}

// NewWithClock creates a cache with an explicit time source.  Most
// code should call New; this is intended for tests.
func NewWithClock(capacity int, clk clock.Clock) *Cache {
	if capacity < 1 {
		panic("paging cache capacity must be positive")
	}
	return &Cache{
		capacity:  capacity,
		clock:     clk,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Store adds a new page holding records and returns its token.  If
// this takes the cache over capacity, the oldest page is evicted.
func (c *Cache) Store(records []resource.Record) string {
	// The cache owns its copy; the caller may reuse its slice.
	owned := make([]resource.Record, len(records))
	copy(owned, records)
	page := &Page{
		Records: owned,
		Created: c.clock.Now(),
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for {
		page.Token = uuid.NewV4().String()
		if _, taken := c.index[page.Token]; !taken {
			break
		}
	}
	c.index[page.Token] = c.evictList.PushBack(page)

	for len(c.index) > c.capacity {
		head := c.evictList.Front()
		delete(c.index, head.Value.(*Page).Token)
		c.evictList.Remove(head)
		c.evictions++
	}
	return page.Token
}

// Fetch retrieves a page by token.  Returns false if the token was
// never issued or its page has been evicted.  This does not affect
// the eviction order.
func (c *Cache) Fetch(token string) (*Page, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, present := c.index[token]; present {
		return element.Value.(*Page), true
	}
	return nil, false
}

// Len returns the number of live pages.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.index)
}

// Capacity returns the maximum number of live pages.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Evictions returns the number of pages evicted so far.
func (c *Cache) Evictions() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.evictions
}

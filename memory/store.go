// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory versioned record
// store with handlers for every read and history operation.  There is
// no persistence, nor is there any automatic sharing.  The entire
// store is behind a single global semaphore to protect against
// concurrent updates.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of
// higher-level components.  It is generally tuned for correctness, not
// performance or scalability.
package memory

import (
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fhirhistory/resource"
)

// version is one stored version of a record.
type version struct {
	record resource.Record

	// superseded is when the next version was written, or zero if
	// this is the current version.
	superseded time.Time
}

// Store holds every version of every record.
type Store struct {
	sem   sync.Mutex
	clock clock.Clock

	// resources maps type to id to versions, oldest first.
	resources map[string]map[string][]*version

	// log holds every version of everything, in write order.
	log []*version
}

// New creates a new store that timestamps records with the system
// clock.
func New() *Store {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new store that timestamps records with an
// explicit time source.
func NewWithClock(clk clock.Clock) *Store {
	return &Store{
		clock:     clk,
		resources: make(map[string]map[string][]*version),
	}
}

// Put stores a new version of a record, returning it.  Version ids
// count up from "1" for each record.  content is copied.
func (s *Store) Put(resourceType, id string, content map[string]interface{}) resource.Record {
	s.sem.Lock()
	defer s.sem.Unlock()

	byID := s.resources[resourceType]
	if byID == nil {
		byID = make(map[string][]*version)
		s.resources[resourceType] = byID
	}
	versions := byID[id]

	now := s.clock.Now().UTC()
	r := resource.Record{
		ResourceType: resourceType,
		ID:           id,
		VersionID:    strconv.Itoa(len(versions) + 1),
		LastUpdated:  now,
		Content:      make(map[string]interface{}, len(content)),
	}
	for k, v := range content {
		r.Content[k] = v
	}
	if len(versions) > 0 {
		versions[len(versions)-1].superseded = now
	}
	v := &version{record: r}
	byID[id] = append(versions, v)
	s.log = append(s.log, v)
	return r
}

// Read returns the record named by id: a specific version if id has
// one, or else the current version.  The boolean result is false if
// there is no such record.
func (s *Store) Read(id resource.Identifier) (resource.Record, bool) {
	s.sem.Lock()
	defer s.sem.Unlock()

	versions := s.resources[id.ResourceType][id.ID]
	if len(versions) == 0 {
		return resource.Record{}, false
	}
	if !id.HasVersion() {
		return versions[len(versions)-1].record, true
	}
	for _, v := range versions {
		if v.record.VersionID == id.VersionID {
			return v.record, true
		}
	}
	return resource.Record{}, false
}

// Filter restricts a history query.  The zero value matches every
// version.
type Filter struct {
	// Since, if non-zero, drops versions written before it.
	Since time.Time

	// At, if non-nil, keeps only versions that were current at
	// some point within the range.
	At *resource.DateRange
}

func (f Filter) matches(v *version) bool {
	updated := v.record.LastUpdated
	if !f.Since.IsZero() && updated.Before(f.Since) {
		return false
	}
	if f.At == nil || f.At.Matches(updated) {
		return true
	}
	// A version written before the range opens still counts if
	// it was current when it opened
	if f.At.Lower == nil || f.At.Lower.Prefix == resource.NotEqual {
		return false
	}
	start := f.At.Start()
	if updated.After(start) {
		return false
	}
	return v.superseded.IsZero() || v.superseded.After(start)
}

// History returns matching versions, newest first.  An empty
// resourceType means every type, and an empty id means every record
// of the type.
func (s *Store) History(resourceType, id string, f Filter) []resource.Record {
	s.sem.Lock()
	defer s.sem.Unlock()

	var result []resource.Record
	for i := len(s.log) - 1; i >= 0; i-- {
		v := s.log[i]
		if resourceType != "" && v.record.ResourceType != resourceType {
			continue
		}
		if id != "" && v.record.ID != id {
			continue
		}
		if f.matches(v) {
			result = append(result, v.record)
		}
	}
	return result
}

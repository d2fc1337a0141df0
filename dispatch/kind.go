// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dispatch

import (
	"fmt"
)

// Kind is the classified intent of a request, independent of which
// handler ends up serving it.
type Kind int

const (
	// InstanceRead is GET /{Type}/{id}.
	InstanceRead Kind = iota
	// InstanceVersionRead is GET /{Type}/{id}/_history/{vid}.
	InstanceVersionRead
	// InstanceHistory is GET /{Type}/{id}/_history.
	InstanceHistory
	// TypeHistory is GET /{Type}/_history.
	TypeHistory
	// ServerHistory is GET /_history.
	ServerHistory
	// GetPages is a continuation request for a stored page,
	// GET /?_getpages={token}.  It is served by the registry's
	// built-in continuation descriptor, never by a handler.
	GetPages
)

var kindNames = map[Kind]string{
	InstanceRead:        "read",
	InstanceVersionRead: "vread",
	InstanceHistory:     "history-instance",
	TypeHistory:         "history-type",
	ServerHistory:       "history-system",
	GetPages:            "get-pages",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsRead returns true for kinds that return a single record.
func (k Kind) IsRead() bool {
	return k == InstanceRead || k == InstanceVersionRead
}

// IsHistory returns true for kinds that return a history bundle.
func (k Kind) IsHistory() bool {
	return k == InstanceHistory || k == TypeHistory || k == ServerHistory
}

// IsInstance returns true for kinds whose path names an instance.
func (k Kind) IsInstance() bool {
	return k == InstanceRead || k == InstanceVersionRead || k == InstanceHistory
}

// IsTyped returns true for kinds whose path names a resource type.
func (k Kind) IsTyped() bool {
	return k.IsInstance() || k == TypeHistory
}

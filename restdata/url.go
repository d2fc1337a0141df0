// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/resource"
)

// Continuation query parameters.  The token parameter itself is
// binding.GetPagesParam.
const (
	GetPagesOffsetParam = "_getpagesoffset"
	CountParam          = "_count"
)

// SelfLink builds the absolute URL of a record: base/Type/id, plus
// /_history/vid if the record has a version.
func SelfLink(baseURL string, id resource.Identifier) string {
	return strings.TrimRight(baseURL, "/") + "/" + id.String()
}

// PageLink builds a continuation URL for a window of a stored result.
func PageLink(baseURL, token string, offset, count int) string {
	q := url.Values{}
	q.Set(binding.GetPagesParam, token)
	q.Set(GetPagesOffsetParam, strconv.Itoa(offset))
	q.Set(CountParam, strconv.Itoa(count))
	return strings.TrimRight(baseURL, "/") + "/?" + q.Encode()
}

// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the data structures shared between the
// restserver and restclient packages.  JSON encodings of these are
// passed across the wire as the application/fhir+json MIME type.
//
// API Usage
//
// The server answers GET requests for resource instances, specific
// versions of them, and history at the instance, type, and server
// level:
//
//     /{type}/{id}
//     /{type}/{id}/_history/{vid}
//     /{type}/{id}/_history{?_since,_at*,_count}
//     /{type}/_history{?_since,_at*,_count}
//     /_history{?_since,_at*,_count}
//
// Reads return a single resource object.  History requests return a
// Bundle.  Each bundle entry carries the resource and its fullUrl,
// which is the version-specific URL of that resource if it has a
// version.
//
// Paging
//
// If a history result is larger than the page size, the bundle holds
// only the first window of it and a link with relation "next".  Follow
// that link to get the next window; it will in turn have "previous"
// and possibly "next" links.  Continuation links are only valid as
// long as the server keeps the result; once it is discarded they
// return 410 Gone.
//
// Resources
//
// A resource is encoded as a JSON object with "resourceType", "id",
// and a "meta" object holding "versionId" and "lastUpdated"; all of
// its other content is carried as-is.
//
// Errors
//
// Errors are returned as failing HTTP statuses with an ErrorResponse
// body.  404 Not Found means the operation is not supported for that
// path; 400 Bad Request means a query parameter was malformed; 410
// Gone means a continuation token has expired.
package restdata

import (
	"fmt"
	"time"

	"github.com/diffeo/go-fhirhistory/resource"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/fhir+json"

// JSONMediaType is the generic JSON MIME type, also accepted.
const JSONMediaType = "application/json"

// Bundle types.
const (
	HistoryBundle   = "history"
	SearchsetBundle = "searchset"
)

// Bundle link relations.
const (
	SelfRelation     = "self"
	NextRelation     = "next"
	PreviousRelation = "previous"
)

// Bundle is an ordered collection of resources returned from a
// history request.
type Bundle struct {
	// ResourceType is always "Bundle".
	ResourceType string `json:"resourceType"`

	// Type is "history" for history results.
	Type string `json:"type"`

	// Total is the number of records in the complete result,
	// which may be more than the number of entries if the result
	// is paged.
	Total int `json:"total"`

	// Link holds navigation links for paged results.
	Link []BundleLink `json:"link,omitempty"`

	// Entry holds the resources, in the order the handler
	// produced them.
	Entry []BundleEntry `json:"entry,omitempty"`
}

// BundleLink is a single navigation link.
type BundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// BundleEntry is a single resource in a bundle.
type BundleEntry struct {
	// FullURL is the absolute URL of the resource, including its
	// version if it has one.
	FullURL string `json:"fullUrl"`

	// Resource is the encoded resource; see RecordJSON.
	Resource map[string]interface{} `json:"resource"`
}

// LinkURL returns the URL of the link with relation rel, or "" if
// there is none.
func (b *Bundle) LinkURL(rel string) string {
	for _, link := range b.Link {
		if link.Relation == rel {
			return link.URL
		}
	}
	return ""
}

// Records decodes every entry's resource.
func (b *Bundle) Records() ([]resource.Record, error) {
	result := make([]resource.Record, len(b.Entry))
	for i, entry := range b.Entry {
		record, err := ParseRecordJSON(entry.Resource)
		if err != nil {
			return nil, err
		}
		result[i] = record
	}
	return result, nil
}

// RecordJSON produces the wire form of a record.
func RecordJSON(r resource.Record) map[string]interface{} {
	out := make(map[string]interface{}, len(r.Content)+3)
	for k, v := range r.Content {
		out[k] = v
	}
	out["resourceType"] = r.ResourceType
	out["id"] = r.ID
	meta := make(map[string]interface{})
	if r.VersionID != "" {
		meta["versionId"] = r.VersionID
	}
	if !r.LastUpdated.IsZero() {
		meta["lastUpdated"] = r.LastUpdated.UTC().Format(time.RFC3339Nano)
	}
	if len(meta) > 0 {
		out["meta"] = meta
	}
	return out
}

// ParseRecordJSON is the inverse of RecordJSON.
func ParseRecordJSON(in map[string]interface{}) (resource.Record, error) {
	var r resource.Record
	var ok bool
	if r.ResourceType, ok = in["resourceType"].(string); !ok {
		return r, fmt.Errorf("resource has no resourceType")
	}
	r.ID, _ = in["id"].(string)
	meta := stringMap(in["meta"])
	r.VersionID, _ = meta["versionId"].(string)
	if s, isString := meta["lastUpdated"].(string); isString {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return r, err
		}
		r.LastUpdated = t
	}
	r.Content = make(map[string]interface{})
	for k, v := range in {
		switch k {
		case "resourceType", "id", "meta":
		default:
			r.Content[k] = v
		}
	}
	return r, nil
}

// stringMap normalizes a decoded JSON object, which may come back with
// either string or interface keys depending on the decoder.
func stringMap(obj interface{}) map[string]interface{} {
	switch m := obj.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(m))
		for k, v := range m {
			if s, isString := k.(string); isString {
				result[s] = v
			}
		}
		return result
	}
	return nil
}

// ErrorResponse can be a response to any method, generally accompanied
// by a failing HTTP status code.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name of a well-known error, the string "panic", or the
	// string "error" for some other kind of error.
	Error string `json:"error"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Value is an extra parameter to the error if applicable.
	Value string `json:"value,omitempty"`

	// Stack holds a formatted backtrace, if the method failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}

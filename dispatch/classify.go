// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dispatch

import (
	"regexp"
	"strings"

	"github.com/diffeo/go-fhirhistory/resource"
)

var (
	typePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	idPattern   = regexp.MustCompile(`^[A-Za-z0-9\-\.]{1,64}$`)
)

// SplitPath breaks a URL path into its non-empty segments.
func SplitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Classify determines the operation kind for a list of path segments
// and extracts the identifier they name.  The patterns are tried most
// specific first, so that a version read is never taken for an
// instance history:
//
//     /{Type}/{id}/_history/{vid}   InstanceVersionRead
//     /{Type}/{id}/_history         InstanceHistory
//     /{Type}/_history              TypeHistory
//     /_history                     ServerHistory
//     /{Type}/{id}                  InstanceRead
//
// Empty segments should already have been removed; see SplitPath.
// Returns ErrNoMatch if the path has none of these shapes.
func Classify(segments []string) (Kind, resource.Identifier, error) {
	var id resource.Identifier
	n := len(segments)
	switch {
	case n == 4 && segments[2] == resource.HistorySegment:
		id = resource.Identifier{ResourceType: segments[0], ID: segments[1], VersionID: segments[3]}
		if validType(id.ResourceType) && validID(id.ID) && validID(id.VersionID) {
			return InstanceVersionRead, id, nil
		}

	case n == 3 && segments[2] == resource.HistorySegment:
		id = resource.Identifier{ResourceType: segments[0], ID: segments[1]}
		if validType(id.ResourceType) && validID(id.ID) {
			return InstanceHistory, id, nil
		}

	case n == 2 && segments[1] == resource.HistorySegment:
		id = resource.Identifier{ResourceType: segments[0]}
		if validType(id.ResourceType) {
			return TypeHistory, id, nil
		}

	case n == 1 && segments[0] == resource.HistorySegment:
		return ServerHistory, id, nil

	case n == 2:
		id = resource.Identifier{ResourceType: segments[0], ID: segments[1]}
		if validType(id.ResourceType) && validID(id.ID) {
			return InstanceRead, id, nil
		}
	}
	return 0, resource.Identifier{}, ErrNoMatch{Path: "/" + strings.Join(segments, "/")}
}

func validType(s string) bool {
	return typePattern.MatchString(s)
}

func validID(s string) bool {
	return idPattern.MatchString(s)
}

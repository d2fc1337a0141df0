// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a dispatch.Registry as a REST service.
// The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.
//
// HTTP Considerations
//
// Only GET and HEAD are served.  Other methods get 405 Method Not
// Allowed.  This interface does not (currently) support HTTP caching
// or authentication headers.
//
// MIME Types
//
// Responses are always JSON, but may be labeled with any of:
//
//     application/fhir+json
//     application/json
//     text/json
//
// Clients should use the standard HTTP Accept: header to pick one.  A
// _format query parameter ("json" or one of the above) overrides the
// header.
//
// URL Scheme
//
// Everything below the router's root is classified by the registry:
//
//     /{type}/{id}
//     /{type}/{id}/_history/{vid}
//     /{type}/{id}/_history
//     /{type}/_history
//     /_history
//
// Continuation links point at the root itself:
//
//     /?_getpages={token}&_getpagesoffset={n}&_count={m}
package restserver

// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-fhirhistory/cmd/fhird can run a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     c, err := restclient.New("http://localhost:5980/fhir/")
package restclient

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/diffeo/go-fhirhistory/restdata"
)

// URI templates for the operations, relative to the service root.
const (
	readTemplate            = "{type}/{id}"
	versionReadTemplate     = "{type}/{id}/_history/{vid}"
	instanceHistoryTemplate = "{type}/{id}/_history{?_since,_at*,_count}"
	typeHistoryTemplate     = "{type}/_history{?_since,_at*,_count}"
	serverHistoryTemplate   = "_history{?_since,_at*,_count}"
)

// errNoBaseURL is returned from New if its parameter is not an
// absolute URL.
var errNoBaseURL = errors.New("base URL must be absolute")

// Client talks to a single service.
type Client struct {
	endpoint
}

// New creates a client that speaks to an external REST server.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errNoBaseURL
	}
	// Relative references need a directory to resolve against
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{endpoint: endpoint{URL: u}}, nil
}

// Read retrieves the current version of a resource.
func (c *Client) Read(resourceType, id string) (resource.Record, error) {
	return c.get(readTemplate, map[string]interface{}{
		"type": resourceType,
		"id":   id,
	})
}

// VRead retrieves a specific version of a resource.  id must have a
// version.
func (c *Client) VRead(id resource.Identifier) (resource.Record, error) {
	return c.get(versionReadTemplate, map[string]interface{}{
		"type": id.ResourceType,
		"id":   id.ID,
		"vid":  id.VersionID,
	})
}

func (c *Client) get(template string, vars map[string]interface{}) (resource.Record, error) {
	var repr map[string]interface{}
	err := c.GetFrom(template, vars, &repr)
	if err != nil {
		return resource.Record{}, err
	}
	return restdata.ParseRecordJSON(repr)
}

// HistoryQuery selects a history listing.  With neither ResourceType
// nor ID, it is server history; with only ResourceType, type
// history; with both, instance history.
type HistoryQuery struct {
	ResourceType string
	ID           string

	// Since is passed as the _since parameter, if not empty.
	Since string

	// At holds zero, one, or two _at values, such as "ge2005".
	At []string

	// Count is the page size, or zero for the server default.
	Count int
}

func (q HistoryQuery) expand() (string, map[string]interface{}) {
	vars := make(map[string]interface{})
	if q.Since != "" {
		vars["_since"] = q.Since
	}
	if len(q.At) > 0 {
		at := make([]interface{}, len(q.At))
		for i, v := range q.At {
			at[i] = v
		}
		vars["_at"] = at
	}
	if q.Count > 0 {
		vars["_count"] = strconv.Itoa(q.Count)
	}
	switch {
	case q.ResourceType == "":
		return serverHistoryTemplate, vars
	case q.ID == "":
		vars["type"] = q.ResourceType
		return typeHistoryTemplate, vars
	default:
		vars["type"] = q.ResourceType
		vars["id"] = q.ID
		return instanceHistoryTemplate, vars
	}
}

// History retrieves the first page of a history listing.
func (c *Client) History(q HistoryQuery) (*restdata.Bundle, error) {
	template, vars := q.expand()
	b := &restdata.Bundle{}
	err := c.GetFrom(template, vars, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Next retrieves the page after b.  It returns nil with no error if
// b is the last page.
func (c *Client) Next(b *restdata.Bundle) (*restdata.Bundle, error) {
	return c.follow(b, restdata.NextRelation)
}

// Previous retrieves the page before b.  It returns nil with no error
// if b is the first page.
func (c *Client) Previous(b *restdata.Bundle) (*restdata.Bundle, error) {
	return c.follow(b, restdata.PreviousRelation)
}

func (c *Client) follow(b *restdata.Bundle, rel string) (*restdata.Bundle, error) {
	link := b.LinkURL(rel)
	if link == "" {
		return nil, nil
	}
	next := &restdata.Bundle{}
	err := c.GetLink(link, next)
	if err != nil {
		return nil, err
	}
	return next, nil
}

// HistoryAll retrieves every record of a history listing, following
// next links until the last page.
func (c *Client) HistoryAll(q HistoryQuery) ([]resource.Record, error) {
	b, err := c.History(q)
	var result []resource.Record
	for b != nil && err == nil {
		var records []resource.Record
		records, err = b.Records()
		result = append(result, records...)
		if err == nil {
			b, err = c.Next(b)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package bundle turns handler results into response bundles.
//
// Assembly is a pure transformation: records appear in the bundle in
// exactly the order the handler returned them, nothing is dropped or
// merged, and each entry gets a self link built from its type, id and
// version.
package bundle

import (
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/diffeo/go-fhirhistory/restdata"
)

// Assemble builds a bundle holding every record.
func Assemble(records []resource.Record, kind dispatch.Kind, baseURL string) restdata.Bundle {
	b := restdata.Bundle{
		ResourceType: "Bundle",
		Type:         bundleType(kind),
		Total:        len(records),
	}
	b.Entry = entries(records, baseURL)
	return b
}

// Window builds a history bundle holding records[offset:offset+count]
// out of a stored result with continuation token, with links to the
// neighbouring windows.  Total is the size of the whole result.
func Window(records []resource.Record, token string, offset, count int, baseURL string) restdata.Bundle {
	total := len(records)
	if offset > total {
		offset = total
	}
	end := offset + count
	if end > total {
		end = total
	}

	b := restdata.Bundle{
		ResourceType: "Bundle",
		Type:         restdata.HistoryBundle,
		Total:        total,
	}
	b.Link = append(b.Link, restdata.BundleLink{
		Relation: restdata.SelfRelation,
		URL:      restdata.PageLink(baseURL, token, offset, count),
	})
	if end < total {
		b.Link = append(b.Link, restdata.BundleLink{
			Relation: restdata.NextRelation,
			URL:      restdata.PageLink(baseURL, token, end, count),
		})
	}
	if offset > 0 {
		prev := offset - count
		if prev < 0 {
			prev = 0
		}
		b.Link = append(b.Link, restdata.BundleLink{
			Relation: restdata.PreviousRelation,
			URL:      restdata.PageLink(baseURL, token, prev, count),
		})
	}
	b.Entry = entries(records[offset:end], baseURL)
	return b
}

func entries(records []resource.Record, baseURL string) []restdata.BundleEntry {
	if len(records) == 0 {
		return nil
	}
	result := make([]restdata.BundleEntry, len(records))
	for i, r := range records {
		result[i] = restdata.BundleEntry{
			FullURL:  restdata.SelfLink(baseURL, r.Identifier()),
			Resource: restdata.RecordJSON(r),
		}
	}
	return result
}

func bundleType(kind dispatch.Kind) string {
	if kind.IsHistory() || kind == dispatch.GetPages {
		return restdata.HistoryBundle
	}
	return restdata.SearchsetBundle
}

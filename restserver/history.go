// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"fmt"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/bundle"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/diffeo/go-fhirhistory/restdata"
)

// errTooManyRecords is returned when a read handler produces more
// than one record.
type errTooManyRecords struct {
	ID    resource.Identifier
	Count int
}

func (e errTooManyRecords) Error() string {
	return fmt.Sprintf("read of %v produced %d records", e.ID, e.Count)
}

// Operation serves every non-continuation request: resolve the path
// to a descriptor, bind its parameters, and call its handler.
func (api *restAPI) Operation(ctx *context) (interface{}, error) {
	match, err := api.Registry.Resolve(ctx.Method, ctx.Segments)
	if err != nil {
		return nil, restdata.Classify(err)
	}
	if token := ctx.QueryParams.Get(binding.GetPagesParam); token != "" && !takesContinuation(match.Descriptor) {
		ctx.Kind = match.Descriptor.Kind.String()
		return nil, restdata.ErrBadRequest{Err: binding.BindingError{
			Param:  binding.GetPagesParam,
			Value:  token,
			Reason: "continuation tokens are only accepted at the service root",
		}}
	}
	return api.invoke(ctx, match.Descriptor, match.Identifier)
}

// takesContinuation returns true if d binds a continuation token.
func takesContinuation(d *dispatch.Descriptor) bool {
	for _, param := range d.Params {
		if param.Source == binding.Paging {
			return true
		}
	}
	return false
}

// Continue serves a request carrying a continuation token.
func (api *restAPI) Continue(ctx *context) (interface{}, error) {
	return api.invoke(ctx, api.Registry.Continuation(), resource.Identifier{})
}

func (api *restAPI) invoke(ctx *context, d *dispatch.Descriptor, id resource.Identifier) (interface{}, error) {
	ctx.Kind = d.Kind.String()
	req := binding.Request{
		Identifier: id,
		Query:      ctx.QueryParams,
		Header:     ctx.Header,
	}
	result, err := binding.Bind(d.Params, req, api.pages())
	if err != nil {
		return nil, restdata.Classify(err)
	}
	if result.Page != nil {
		return api.window(ctx, result.Page)
	}
	if d.Handler == nil {
		// Only the continuation descriptor has no handler, and
		// binding it always yields a page or an error
		return nil, restdata.ErrConfiguration{Err: dispatch.ErrBadDescriptor{
			Kind:         d.Kind,
			ResourceType: d.ResourceType,
			Reason:       "no handler",
		}}
	}

	records, err := d.Handler(result.Args)
	if err != nil {
		return nil, err
	}
	if d.Kind.IsRead() {
		return api.read(ctx, id, records)
	}
	return api.history(ctx, d.Kind, records)
}

func (api *restAPI) read(ctx *context, id resource.Identifier, records []resource.Record) (interface{}, error) {
	switch len(records) {
	case 0:
		return nil, restdata.ErrNoSuchResource{ID: id}
	case 1:
		record := records[0]
		return responseLocated{
			Location: restdata.SelfLink(ctx.BaseURL, record.Identifier()),
			Body:     restdata.RecordJSON(record),
		}, nil
	default:
		return nil, errTooManyRecords{ID: id, Count: len(records)}
	}
}

func (api *restAPI) history(ctx *context, kind dispatch.Kind, records []resource.Record) (interface{}, error) {
	count, err := ctx.Count(api.PageSize, api.MaxPageSize)
	if err != nil {
		return nil, err
	}
	if api.Pages == nil || len(records) <= count {
		return bundle.Assemble(records, kind, ctx.BaseURL), nil
	}
	token := api.Pages.Store(records)
	return bundle.Window(records, token, 0, count, ctx.BaseURL), nil
}

func (api *restAPI) window(ctx *context, page *paging.Page) (interface{}, error) {
	offset, err := ctx.IntParam(restdata.GetPagesOffsetParam, 0)
	if err != nil {
		return nil, err
	}
	count, err := ctx.Count(api.PageSize, api.MaxPageSize)
	if err != nil {
		return nil, err
	}
	return bundle.Window(page.Records, page.Token, offset, count, ctx.BaseURL), nil
}

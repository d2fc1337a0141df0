// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/diffeo/go-fhirhistory/restdata"
)

// Register adds handlers backed by s to reg: read, version read,
// instance history and type history for each of types, plus server
// history.  Each history level takes "_since" in a different shape:
// an instant for instance history, a date-time for type history, and
// an uninterpreted primitive for server history, which parses it
// itself.
func (s *Store) Register(reg *dispatch.Registry, types ...string) error {
	for _, t := range types {
		descriptors := []dispatch.Descriptor{
			{
				Kind:         dispatch.InstanceRead,
				ResourceType: t,
				Params:       []binding.Param{binding.ID()},
				Handler:      s.read,
			},
			{
				Kind:         dispatch.InstanceVersionRead,
				ResourceType: t,
				Params:       []binding.Param{binding.ID()},
				Handler:      s.read,
			},
			{
				Kind:         dispatch.InstanceHistory,
				ResourceType: t,
				Params: []binding.Param{
					binding.ID(),
					binding.Since(binding.ShapeInstant),
					binding.At(),
				},
				Handler: s.instanceHistory,
			},
			{
				Kind:         dispatch.TypeHistory,
				ResourceType: t,
				Params: []binding.Param{
					binding.Since(binding.ShapeDateTime),
					binding.At(),
				},
				Handler: s.typeHistory(t),
			},
		}
		for _, d := range descriptors {
			if err := reg.Register(d); err != nil {
				return err
			}
		}
	}
	return reg.Register(dispatch.Descriptor{
		Kind: dispatch.ServerHistory,
		Params: []binding.Param{
			binding.Since(binding.ShapePrimitive),
			binding.At(),
		},
		Handler: s.serverHistory,
	})
}

func (s *Store) read(args binding.Args) ([]resource.Record, error) {
	record, ok := s.Read(args.Identifier(0))
	if !ok {
		return nil, nil
	}
	return []resource.Record{record}, nil
}

func (s *Store) instanceHistory(args binding.Args) ([]resource.Record, error) {
	id := args.Identifier(0)
	f := Filter{At: args.DateRange(2)}
	if since := args.Instant(1); since != nil {
		f.Since = since.Time()
	}
	return s.History(id.ResourceType, id.ID, f), nil
}

func (s *Store) typeHistory(resourceType string) dispatch.Handler {
	return func(args binding.Args) ([]resource.Record, error) {
		f := Filter{At: args.DateRange(1)}
		if since := args.DateTime(0); since != nil {
			f.Since = since.Time()
		}
		return s.History(resourceType, "", f), nil
	}
}

func (s *Store) serverHistory(args binding.Args) ([]resource.Record, error) {
	f := Filter{At: args.DateRange(1)}
	if since := args.Primitive(0); since != nil {
		when, err := resource.ParseDateTime(since.ValueAsString())
		if err != nil {
			return nil, restdata.ErrBadRequest{Err: binding.BindingError{
				Param:  binding.SinceParam,
				Value:  since.ValueAsString(),
				Reason: err.Error(),
			}}
		}
		f.Since = when.Time()
	}
	return s.History("", "", f), nil
}

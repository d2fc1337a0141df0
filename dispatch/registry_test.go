// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dispatch

import (
	"math/rand"
	"net/http"
	"testing"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
		id   resource.Identifier
	}{
		{"/Patient/123/_history/456", InstanceVersionRead, resource.Identifier{ResourceType: "Patient", ID: "123", VersionID: "456"}},
		{"/Patient/123/_history", InstanceHistory, resource.Identifier{ResourceType: "Patient", ID: "123", VersionID: ""}},
		{"/Patient/123/_history/", InstanceHistory, resource.Identifier{ResourceType: "Patient", ID: "123", VersionID: ""}},
		{"/Patient/_history", TypeHistory, resource.Identifier{ResourceType: "Patient"}},
		{"/_history", ServerHistory, resource.Identifier{}},
		{"/Patient/123", InstanceRead, resource.Identifier{ResourceType: "Patient", ID: "123"}},
		{"/Patient/a.b-c", InstanceRead, resource.Identifier{ResourceType: "Patient", ID: "a.b-c"}},
	}
	for _, test := range tests {
		kind, id, err := Classify(SplitPath(test.path))
		if assert.NoError(t, err, test.path) {
			assert.Equal(t, test.kind, kind, test.path)
			assert.Equal(t, test.id, id, test.path)
		}
	}
}

func TestClassifyNoMatch(t *testing.T) {
	for _, path := range []string{
		"/",
		"/Patient",
		"/_history/123",
		"/Patient/123/_history/456/extra",
		"/Patient/123/_history/456/_history",
		"/_history/_history",
		"/1Patient/123",
		"/Patient/has space",
		"/Patient/123/_foo",
		"/Patient/123/_history/4$6",
	} {
		_, _, err := Classify(SplitPath(path))
		assert.IsType(t, ErrNoMatch{}, err, path)
	}
}

// TestVersionReadNotStolen checks, for a spread of ids, that a path
// ending in _history/{vid} is always a version read.
func TestVersionReadNotStolen(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const alphabet = "abcXYZ019.-"
	randomID := func() string {
		b := make([]byte, 1+rng.Intn(10))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}
	for i := 0; i < 200; i++ {
		id, vid := randomID(), randomID()
		kind, ident, err := Classify([]string{"Patient", id, "_history", vid})
		if assert.NoError(t, err) {
			assert.Equal(t, InstanceVersionRead, kind)
			assert.Equal(t, vid, ident.VersionID)
		}
		kind, ident, err = Classify([]string{"Patient", id, "_history"})
		if assert.NoError(t, err) {
			assert.Equal(t, InstanceHistory, kind)
			assert.False(t, ident.HasVersion())
		}
	}
}

func records(args binding.Args) ([]resource.Record, error) {
	return nil, nil
}

func allDescriptors() []Descriptor {
	return []Descriptor{
		{Kind: InstanceHistory, ResourceType: "Patient", Params: []binding.Param{binding.ID()}, Handler: records},
		{Kind: InstanceVersionRead, ResourceType: "Patient", Params: []binding.Param{binding.ID()}, Handler: records},
		{Kind: InstanceRead, ResourceType: "Patient", Params: []binding.Param{binding.ID()}, Handler: records},
		{Kind: TypeHistory, ResourceType: "Patient", Handler: records},
		{Kind: ServerHistory, Params: []binding.Param{binding.Since(binding.ShapeInstant), binding.At()}, Handler: records},
	}
}

// TestResolveOrderIndependent registers the same handlers in both
// orders and checks every path resolves the same way.
func TestResolveOrderIndependent(t *testing.T) {
	forward := allDescriptors()
	backward := allDescriptors()
	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}

	for _, descriptors := range [][]Descriptor{forward, backward} {
		reg := NewRegistry()
		for _, d := range descriptors {
			assert.NoError(t, reg.Register(d))
		}
		reg.Freeze()

		expect := map[string]Kind{
			"/Patient/123/_history/456": InstanceVersionRead,
			"/Patient/123/_history":     InstanceHistory,
			"/Patient/_history":         TypeHistory,
			"/_history":                 ServerHistory,
			"/Patient/123":              InstanceRead,
		}
		for path, kind := range expect {
			match, err := reg.Resolve(http.MethodGet, SplitPath(path))
			if assert.NoError(t, err, path) {
				assert.Equal(t, kind, match.Descriptor.Kind, path)
			}
		}
	}
}

func TestResolveNoMatch(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Register(Descriptor{Kind: InstanceVersionRead, ResourceType: "Patient", Params: []binding.Param{binding.ID()}, Handler: records}))
	reg.Freeze()

	// Classified, but nothing registered
	_, err := reg.Resolve(http.MethodGet, SplitPath("/Patient/123/_history"))
	assert.Equal(t, ErrNoMatch{Kind: InstanceHistory, ResourceType: "Patient"}, err)

	_, err = reg.Resolve(http.MethodGet, SplitPath("/Observation/1/_history/2"))
	assert.Equal(t, ErrNoMatch{Kind: InstanceVersionRead, ResourceType: "Observation"}, err)

	// Not classified at all
	_, err = reg.Resolve(http.MethodGet, SplitPath("/Patient"))
	assert.IsType(t, ErrNoMatch{}, err)

	// Wrong method
	_, err = reg.Resolve(http.MethodPost, SplitPath("/Patient/123/_history/456"))
	assert.IsType(t, ErrNoMatch{}, err)

	// HEAD is fine
	match, err := reg.Resolve(http.MethodHead, SplitPath("/Patient/123/_history/456"))
	if assert.NoError(t, err) {
		assert.Equal(t, resource.Identifier{ResourceType: "Patient", ID: "123", VersionID: "456"}, match.Identifier)
	}
}

func TestRegisterAmbiguous(t *testing.T) {
	reg := NewRegistry()
	d := Descriptor{Kind: TypeHistory, ResourceType: "Patient", Handler: records}
	assert.NoError(t, reg.Register(d))
	assert.Equal(t, ErrAmbiguous{Kind: TypeHistory, ResourceType: "Patient"}, reg.Register(d))

	// Same kind on another type is fine
	d.ResourceType = "Observation"
	assert.NoError(t, reg.Register(d))
	assert.Len(t, reg.Descriptors(), 2)
}

func TestRegisterBadDescriptor(t *testing.T) {
	bad := []Descriptor{
		{Kind: TypeHistory, ResourceType: "Patient"},
		{Kind: TypeHistory, Handler: records},
		{Kind: ServerHistory, ResourceType: "Patient", Handler: records},
		{Kind: TypeHistory, ResourceType: "Patient", Params: []binding.Param{binding.ID()}, Handler: records},
		{Kind: InstanceRead, ResourceType: "Patient", Params: []binding.Param{{Source: binding.QuerySince, Shape: binding.ShapeDateRange}}, Handler: records},
		{Kind: GetPages, Handler: records},
		{Kind: Kind(42), Handler: records},
	}
	for _, d := range bad {
		reg := NewRegistry()
		assert.IsType(t, ErrBadDescriptor{}, reg.Register(d), "%+v", d)
	}
}

func TestFreeze(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve(http.MethodGet, SplitPath("/_history"))
	assert.Equal(t, ErrNotFrozen, err)

	reg.Freeze()
	err = reg.Register(Descriptor{Kind: ServerHistory, Handler: records})
	assert.Equal(t, ErrFrozen, err)
}

func TestContinuationDescriptor(t *testing.T) {
	reg := NewRegistry()
	d := reg.Continuation()
	assert.Equal(t, GetPages, d.Kind)
	if assert.Len(t, d.Params, 1) {
		assert.Equal(t, binding.Paging, d.Params[0].Source)
		assert.True(t, d.Params[0].Required)
	}
	assert.Nil(t, d.Handler)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, InstanceVersionRead.IsRead())
	assert.False(t, InstanceHistory.IsRead())
	assert.True(t, ServerHistory.IsHistory())
	assert.False(t, ServerHistory.IsTyped())
	assert.True(t, TypeHistory.IsTyped())
	assert.False(t, TypeHistory.IsInstance())
	assert.Equal(t, "vread", InstanceVersionRead.String())
}

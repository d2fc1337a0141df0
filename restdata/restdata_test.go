// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/stretchr/testify/assert"
)

func TestSelfLink(t *testing.T) {
	tests := []struct {
		id       resource.Identifier
		expected string
	}{
		{resource.Identifier{ResourceType: "Patient", ID: "ih1", VersionID: "1"}, "http://localhost/fhir/Patient/ih1/_history/1"},
		{resource.Identifier{ResourceType: "Patient", ID: "ih1"}, "http://localhost/fhir/Patient/ih1"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, SelfLink("http://localhost/fhir", test.id))
		assert.Equal(t, test.expected, SelfLink("http://localhost/fhir/", test.id))
	}
}

func TestPageLink(t *testing.T) {
	assert.Equal(t,
		"http://localhost/fhir/?_count=10&_getpages=abc&_getpagesoffset=20",
		PageLink("http://localhost/fhir", "abc", 20, 10))
}

// TestBundleWire sends a bundle through Encode and Decode and checks
// the records survive, in order.
func TestBundleWire(t *testing.T) {
	when := time.Date(2005, 3, 4, 5, 6, 7, 0, time.UTC)
	records := []resource.Record{
		{ResourceType: "Patient", ID: "h1", VersionID: "1", LastUpdated: when,
			Content: map[string]interface{}{"name": "history"}},
		{ResourceType: "Patient", ID: "h1", VersionID: "2"},
	}
	in := Bundle{ResourceType: "Bundle", Type: HistoryBundle, Total: 2}
	for _, r := range records {
		in.Entry = append(in.Entry, BundleEntry{
			FullURL:  SelfLink("http://localhost", r.Identifier()),
			Resource: RecordJSON(r),
		})
	}
	in.Link = []BundleLink{{Relation: NextRelation, URL: "http://localhost/?_getpages=x"}}

	var buf bytes.Buffer
	if !assert.NoError(t, Encode(&buf, in)) {
		return
	}
	var out Bundle
	if !assert.NoError(t, Decode(V1JSONMediaType, &buf, &out)) {
		return
	}
	assert.Equal(t, "Bundle", out.ResourceType)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "http://localhost/?_getpages=x", out.LinkURL(NextRelation))
	assert.Equal(t, "", out.LinkURL(PreviousRelation))
	if assert.Len(t, out.Entry, 2) {
		assert.Equal(t, "http://localhost/Patient/h1/_history/1", out.Entry[0].FullURL)
		assert.Equal(t, "http://localhost/Patient/h1/_history/2", out.Entry[1].FullURL)
	}

	decoded, err := out.Records()
	if assert.NoError(t, err) && assert.Len(t, decoded, 2) {
		assert.Equal(t, records[0].Identifier(), decoded[0].Identifier())
		assert.True(t, when.Equal(decoded[0].LastUpdated))
		assert.Equal(t, "history", decoded[0].Content["name"])
		assert.Equal(t, records[1].Identifier(), decoded[1].Identifier())
		assert.True(t, decoded[1].LastUpdated.IsZero())
	}
}

func TestDecodeUnsupported(t *testing.T) {
	var out Bundle
	err := Decode("application/xml", bytes.NewReader(nil), &out)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "application/xml"}, err)
}

func TestParseRecordJSON(t *testing.T) {
	_, err := ParseRecordJSON(map[string]interface{}{"id": "x"})
	assert.Error(t, err)

	r, err := ParseRecordJSON(map[string]interface{}{
		"resourceType": "Patient",
		"id":           "123",
		"meta":         map[interface{}]interface{}{"versionId": "456"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, resource.Identifier{ResourceType: "Patient", ID: "123", VersionID: "456"}, r.Identifier())
		assert.Empty(t, r.Content)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{dispatch.ErrNoMatch{Path: "/x"}, http.StatusNotFound, "ErrNoMatch"},
		{binding.BindingError{Param: "_at", Reason: "bad"}, http.StatusBadRequest, "BindingError"},
		{binding.ErrContinuationGone{Token: "t"}, http.StatusGone, "ErrContinuationGone"},
		{dispatch.ErrAmbiguous{Kind: dispatch.TypeHistory, ResourceType: "Patient"}, http.StatusInternalServerError, "ErrAmbiguous"},
		{dispatch.ErrNotFrozen, http.StatusInternalServerError, "ErrNotFrozen"},
	}
	for _, test := range tests {
		wrapped := Classify(test.err)
		if status, ok := wrapped.(ErrorStatus); assert.True(t, ok, "%v", test.err) {
			assert.Equal(t, test.status, status.HTTPStatus())
		}
		resp := ErrorResponse{}
		resp.FromError(wrapped)
		assert.Equal(t, test.code, resp.Error)
	}

	plain := errors.New("handler failed")
	assert.Equal(t, plain, Classify(plain))
}

func TestErrorRoundTrip(t *testing.T) {
	resp := ErrorResponse{}
	resp.FromError(ErrGone{Err: binding.ErrContinuationGone{Token: "abc"}})
	assert.Equal(t, binding.ErrContinuationGone{Token: "abc"}, resp.ToError())

	missing := resource.Identifier{ResourceType: "Patient", ID: "p1", VersionID: "3"}
	resp = ErrorResponse{}
	resp.FromError(ErrNoSuchResource{ID: missing})
	assert.Equal(t, "Patient/p1/_history/3", resp.Value)
	assert.Equal(t, ErrNoSuchResource{ID: missing}, resp.ToError())

	resp = ErrorResponse{Error: "ErrNotFrozen"}
	assert.Equal(t, dispatch.ErrNotFrozen, resp.ToError())

	resp = ErrorResponse{Error: "error", Message: "boom"}
	assert.EqualError(t, resp.ToError(), "boom")
}

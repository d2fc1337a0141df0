// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/memory"
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/resource"
	"github.com/diffeo/go-fhirhistory/restclient"
	"github.com/diffeo/go-fhirhistory/restdata"
	"github.com/diffeo/go-fhirhistory/restserver"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
)

// ClientSuite sets up an object stack where the REST client code
// talks to the REST server code, which points at an in-memory store.
type ClientSuite struct {
	suite.Suite
	Clock  *clock.Mock
	Store  *memory.Store
	Pages  *paging.Cache
	Server *httptest.Server
	Client *restclient.Client
}

func (s *ClientSuite) SetupTest() {
	s.Clock = clock.NewMock()
	s.Clock.Add(time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC).Sub(s.Clock.Now()))
	s.Store = memory.NewWithClock(s.Clock)
	for _, id := range []string{"p1", "p1", "p2", "p1"} {
		s.Store.Put("Patient", id, map[string]interface{}{"gender": "unknown"})
		s.Clock.Add(time.Hour)
	}

	reg := dispatch.NewRegistry()
	s.Require().NoError(s.Store.Register(reg, "Patient"))
	reg.Freeze()

	s.Pages = paging.New(2)
	r := mux.NewRouter()
	restserver.PopulateRouter(r.PathPrefix("/fhir").Subrouter(), reg, restserver.Options{
		PageSize: 2,
		Pages:    s.Pages,
	})
	s.Server = httptest.NewServer(r)

	var err error
	s.Client, err = restclient.New(s.Server.URL + "/fhir")
	s.Require().NoError(err)
}

func (s *ClientSuite) TearDownTest() {
	s.Server.Close()
}

func identifiers(records []resource.Record) []string {
	var result []string
	for _, r := range records {
		result = append(result, r.Identifier().String())
	}
	return result
}

func (s *ClientSuite) TestRead() {
	r, err := s.Client.Read("Patient", "p1")
	if s.NoError(err) {
		s.Equal("Patient/p1/_history/3", r.Identifier().String())
		s.Equal("unknown", r.Content["gender"])
		s.True(time.Date(2005, 1, 1, 3, 0, 0, 0, time.UTC).Equal(r.LastUpdated))
	}
}

func (s *ClientSuite) TestReadMissing() {
	_, err := s.Client.Read("Patient", "p9")
	s.Equal(restdata.ErrNoSuchResource{ID: resource.Identifier{ResourceType: "Patient", ID: "p9"}}, err)
}

func (s *ClientSuite) TestVRead() {
	id := resource.Identifier{ResourceType: "Patient", ID: "p1", VersionID: "2"}
	r, err := s.Client.VRead(id)
	if s.NoError(err) {
		s.Equal(id, r.Identifier())
	}
}

func (s *ClientSuite) TestUnsupportedType() {
	_, err := s.Client.Read("Device", "d1")
	if s.IsType(restdata.ErrNotFound{}, err) {
		s.Contains(err.Error(), "Device")
	}
}

func (s *ClientSuite) TestInstanceHistory() {
	b, err := s.Client.History(restclient.HistoryQuery{ResourceType: "Patient", ID: "p1", Count: 5})
	if s.NoError(err) {
		s.Equal(restdata.HistoryBundle, b.Type)
		s.Equal(3, b.Total)
		records, err := b.Records()
		s.NoError(err)
		s.Equal([]string{
			"Patient/p1/_history/3",
			"Patient/p1/_history/2",
			"Patient/p1/_history/1",
		}, identifiers(records))
		s.Equal(s.Server.URL+"/fhir/Patient/p1/_history/3", b.Entry[0].FullURL)
	}
}

func (s *ClientSuite) TestHistorySince() {
	records, err := s.Client.HistoryAll(restclient.HistoryQuery{
		ResourceType: "Patient",
		ID:           "p1",
		Since:        "2005-01-01T01:00:00Z",
	})
	if s.NoError(err) {
		s.Equal([]string{"Patient/p1/_history/3", "Patient/p1/_history/2"}, identifiers(records))
	}
}

func (s *ClientSuite) TestHistoryAt() {
	records, err := s.Client.HistoryAll(restclient.HistoryQuery{
		ResourceType: "Patient",
		At:           []string{"ge2005-01-01T01:30:00Z", "le2005-01-01T02:30:00Z"},
	})
	if s.NoError(err) {
		s.Equal([]string{"Patient/p2/_history/1", "Patient/p1/_history/2"}, identifiers(records))
	}
}

func (s *ClientSuite) TestBadParameter() {
	_, err := s.Client.History(restclient.HistoryQuery{
		ResourceType: "Patient",
		At:           []string{"2005", "2006", "2007"},
	})
	s.IsType(restdata.ErrBadRequest{}, err)
}

func (s *ClientSuite) TestPaging() {
	first, err := s.Client.History(restclient.HistoryQuery{})
	if !s.NoError(err) {
		return
	}
	s.Equal(4, first.Total)
	s.Len(first.Entry, 2)

	second, err := s.Client.Next(first)
	if !s.NoError(err) || !s.NotNil(second) {
		return
	}
	s.Len(second.Entry, 2)

	last, err := s.Client.Next(second)
	s.NoError(err)
	s.Nil(last)

	back, err := s.Client.Previous(second)
	if s.NoError(err) && s.NotNil(back) {
		s.Equal(first.Entry, back.Entry)
	}

	records, err := s.Client.HistoryAll(restclient.HistoryQuery{})
	if s.NoError(err) {
		s.Equal([]string{
			"Patient/p1/_history/3",
			"Patient/p2/_history/1",
			"Patient/p1/_history/2",
			"Patient/p1/_history/1",
		}, identifiers(records))
	}
}

func (s *ClientSuite) TestContinuationGone() {
	first, err := s.Client.History(restclient.HistoryQuery{})
	if !s.NoError(err) {
		return
	}
	// Two more stored results push the first out of the cache
	for i := 0; i < 2; i++ {
		_, err = s.Client.History(restclient.HistoryQuery{ResourceType: "Patient"})
		s.NoError(err)
	}
	_, err = s.Client.Next(first)
	if s.IsType(binding.ErrContinuationGone{}, err) {
		s.Equal(uint64(1), s.Pages.Evictions())
	}
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("")
	if err == nil {
		t.Fatal("Expected error when given empty URL.")
	}
}

// Package mockserver provides an HTTP server that answers only the calls a
// test declared up front, and reports the ones that never arrived.
package mockserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Server is an expectation-driven test server.
type Server struct {
	srv *httptest.Server

	mu           sync.Mutex
	expectations []*Expectation
	unexpected   []string
}

// Expectation is one declared call and its canned reply.
type Expectation struct {
	server *Server

	method  string
	path    string
	query   map[string]string
	headers map[string]string
	body    any
	hasBody bool

	status      int
	reply       []byte
	contentType string
	times       int

	calls    int
	requests []Recorded
}

// Recorded is a request that matched an expectation.
type Recorded struct {
	Header http.Header
	Query  map[string][]string
	Body   []byte
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)

	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Expect declares a call. By default it is answered once with 200 and an
// empty JSON object.
func (s *Server) Expect(method, path string) *Expectation {
	e := &Expectation{
		server:      s,
		method:      method,
		path:        path,
		status:      http.StatusOK,
		reply:       []byte("{}"),
		contentType: "application/json",
		times:       1,
	}

	s.mu.Lock()
	s.expectations = append(s.expectations, e)
	s.mu.Unlock()

	return e
}

// WithQuery requires the query parameter key to equal value.
func (e *Expectation) WithQuery(key, value string) *Expectation {
	if e.query == nil {
		e.query = map[string]string{}
	}

	e.query[key] = value

	return e
}

// WithHeader requires the request header key to equal value. An empty value
// requires the header to be absent.
func (e *Expectation) WithHeader(key, value string) *Expectation {
	if e.headers == nil {
		e.headers = map[string]string{}
	}

	e.headers[key] = value

	return e
}

// WithJSONBody requires the request body to be JSON equal to body.
func (e *Expectation) WithJSONBody(body any) *Expectation {
	e.body = body
	e.hasBody = true

	return e
}

// Reply sets the status and JSON-encoded body of the answer. A nil body
// sends no content.
func (e *Expectation) Reply(status int, body any) *Expectation {
	e.status = status
	e.contentType = "application/json"

	if body == nil {
		e.reply = nil

		return e
	}

	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("mockserver: encoding reply: %v", err))
	}

	e.reply = data

	return e
}

// ReplyText answers with a plain text body.
func (e *Expectation) ReplyText(status int, text string) *Expectation {
	e.status = status
	e.reply = []byte(text)
	e.contentType = "text/plain; charset=utf-8"

	return e
}

// Times sets how many calls the expectation answers.
func (e *Expectation) Times(n int) *Expectation {
	e.times = n

	return e
}

// Requests returns the requests that matched so far.
func (e *Expectation) Requests() []Recorded {
	e.server.mu.Lock()
	defer e.server.mu.Unlock()

	return append([]Recorded(nil), e.requests...)
}

// Pending lists the expectations that have not been fully consumed.
func (s *Server) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []string

	for _, e := range s.expectations {
		if e.calls < e.times {
			pending = append(pending, fmt.Sprintf("%s %s (%d/%d calls)", e.method, e.path, e.calls, e.times))
		}
	}

	return pending
}

// Unexpected lists the calls that matched no expectation.
func (s *Server) Unexpected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.unexpected...)
}

// AssertDone fails t unless every expectation was consumed and no other
// call arrived.
func (s *Server) AssertDone(t testing.TB) {
	t.Helper()

	assert.Empty(t, s.Pending(), "pending expectations")
	assert.Empty(t, s.Unexpected(), "unexpected calls")
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()

	var match *Expectation

	for _, e := range s.expectations {
		if e.calls < e.times && e.matches(r, body) {
			match = e

			break
		}
	}

	if match == nil {
		s.unexpected = append(s.unexpected, fmt.Sprintf("%s %s?%s %s", r.Method, r.URL.Path, r.URL.RawQuery, body))
		s.mu.Unlock()

		http.Error(w, "no matching expectation", http.StatusNotImplemented)

		return
	}

	match.calls++
	match.requests = append(match.requests, Recorded{
		Header: r.Header.Clone(),
		Query:  r.URL.Query(),
		Body:   body,
	})

	status, reply, contentType := match.status, match.reply, match.contentType
	s.mu.Unlock()

	if reply != nil {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(status)

	if reply != nil {
		_, _ = w.Write(reply)
	}
}

func (e *Expectation) matches(r *http.Request, body []byte) bool {
	if r.Method != e.method || r.URL.Path != e.path {
		return false
	}

	query := r.URL.Query()

	for key, value := range e.query {
		if query.Get(key) != value {
			return false
		}
	}

	for key, value := range e.headers {
		if r.Header.Get(key) != value {
			return false
		}
	}

	if !e.hasBody {
		return true
	}

	return jsonEqual(e.body, body)
}

// jsonEqual compares want, encoded as JSON, with the raw JSON got.
func jsonEqual(want any, got []byte) bool {
	wantJSON, err := json.Marshal(want)
	if err != nil {
		return false
	}

	var wantValue, gotValue any

	if err := json.Unmarshal(wantJSON, &wantValue); err != nil {
		return false
	}

	if err := json.Unmarshal(got, &gotValue); err != nil {
		return false
	}

	return reflect.DeepEqual(wantValue, gotValue)
}

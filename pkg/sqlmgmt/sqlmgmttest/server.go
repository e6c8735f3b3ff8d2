// Package sqlmgmttest provides an in-memory automatic tuning management API for tests.
package sqlmgmttest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/sqlctl/sqlctl/pkg/sqlmgmt"
)

type Request struct {
	Method     string
	Path       string
	APIVersion string
	Body       []byte
}

type failure struct {
	status  int
	code    string
	message string
}

// Server stores automatic tuning resources keyed by their request path.
// PATCH merges the desired states it receives into the stored resource.
type Server struct {
	*httptest.Server
	lock      sync.Mutex
	resources map[string]*sqlmgmt.DatabaseAutomaticTuningProperties
	requests  []Request
	fail      *failure
}

func NewServer() *Server {
	s := &Server{
		resources: make(map[string]*sqlmgmt.DatabaseAutomaticTuningProperties),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func ServerPath(subscriptionID string, resourceGroupName string, serverName string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Sql/servers/%s/automaticTuning/current", subscriptionID, resourceGroupName, serverName)
}

func DatabasePath(subscriptionID string, resourceGroupName string, serverName string, databaseName string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Sql/servers/%s/databases/%s/automaticTuning/current", subscriptionID, resourceGroupName, serverName, databaseName)
}

// Seed stores a resource at path, replacing any existing one.
func (s *Server) Seed(path string, props sqlmgmt.DatabaseAutomaticTuningProperties) {
	s.lock.Lock()
	defer s.lock.Unlock()
	p := props
	p.Options = make(map[string]sqlmgmt.AutomaticTuningOptions, len(props.Options))
	for k, v := range props.Options {
		p.Options[k] = v
	}
	s.resources[path] = &p
}

// Resource returns a copy of the stored resource.
func (s *Server) Resource(path string) (sqlmgmt.DatabaseAutomaticTuningProperties, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.resources[path]
	if !ok {
		return sqlmgmt.DatabaseAutomaticTuningProperties{}, false
	}
	out := *r
	out.Options = make(map[string]sqlmgmt.AutomaticTuningOptions, len(r.Options))
	for k, v := range r.Options {
		out.Options[k] = v
	}
	return out, true
}

// FailNext makes the next request return an ARM error envelope.
func (s *Server) FailNext(status int, code string, message string) {
	s.lock.Lock()
	s.fail = &failure{status: status, code: code, message: message}
	s.lock.Unlock()
}

func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request{}, s.requests...)
}

// Count returns the number of requests received with the given method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = append(s.requests, Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		APIVersion: r.URL.Query().Get("api-version"),
		Body:       body,
	})
	if s.fail != nil {
		f := s.fail
		s.fail = nil
		writeError(w, f.status, f.code, f.message)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "AuthenticationFailed", "Authentication failed. The 'Authorization' header is missing.")
		return
	}
	if r.URL.Query().Get("api-version") == "" {
		writeError(w, http.StatusBadRequest, "MissingApiVersionParameter", "The api-version query parameter (?api-version=) is required for all requests.")
		return
	}
	res, ok := s.resources[r.URL.Path]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", fmt.Sprintf("The Resource '%s' was not found.", r.URL.Path))
		return
	}
	switch r.Method {
	case http.MethodGet:
	case http.MethodPatch:
		req := new(sqlmgmt.DatabaseAutomaticTuning)
		if err := json.Unmarshal(body, req); err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequestContent", err.Error())
			return
		}
		if req.Properties != nil {
			merge(res, req.Properties)
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", r.Method+" is not supported")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&sqlmgmt.DatabaseAutomaticTuning{
		ID:         r.URL.Path,
		Name:       "current",
		Type:       "Microsoft.Sql/automaticTuning",
		Properties: res,
	})
}

func merge(res *sqlmgmt.DatabaseAutomaticTuningProperties, in *sqlmgmt.DatabaseAutomaticTuningProperties) {
	if in.DesiredState != "" {
		res.DesiredState = in.DesiredState
		if in.DesiredState == "Auto" || in.DesiredState == "Custom" {
			res.ActualState = in.DesiredState
		}
	}
	if res.Options == nil {
		res.Options = make(map[string]sqlmgmt.AutomaticTuningOptions)
	}
	for name, o := range in.Options {
		if o.DesiredState == "" {
			continue
		}
		cur := res.Options[name]
		cur.DesiredState = o.DesiredState
		if o.DesiredState == "On" || o.DesiredState == "Off" {
			cur.ActualState = o.DesiredState
		}
		res.Options[name] = cur
	}
}

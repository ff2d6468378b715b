// Package apitest provides an in-memory IMS API for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jimezsa/imsctl/internal/schema"
)

const (
	Prefix          = "/api"
	BaseURL         = "http://ims.test" + Prefix
	DefaultPageSize = 10
)

// Request is one call the fake received.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type collection struct {
	entity  *schema.Entity
	records []schema.Record
	nextID  int
}

// Server is an http.Handler that behaves like the IMS API.
type Server struct {
	PageSize int
	// IgnoreFilters makes list calls ignore search and status parameters.
	IgnoreFilters bool

	mu          sync.Mutex
	collections map[string]*collection
	failures    map[string]int
	gates       map[string]*Gate
	requests    []Request
	uploads     map[string][]byte
}

func New(reg *schema.Registry) *Server {
	s := &Server{
		PageSize:    DefaultPageSize,
		collections: map[string]*collection{},
		failures:    map[string]int{},
		gates:       map[string]*Gate{},
		uploads:     map[string][]byte{},
	}
	for _, e := range reg.Entities() {
		s.collections[e.Path] = &collection{entity: e, nextID: 1}
	}
	return s
}

// Seed appends records to the collection at path. Records without an id
// get the next free one.
func (s *Server) Seed(path string, records ...schema.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.mustCollection(path)
	for _, rec := range records {
		col.insert(clone(rec))
	}
}

// Fail makes every request matching method and path (without the /api
// prefix, e.g. "/candidates/3") answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Heal removes a failure set with Fail.
func (s *Server) Heal(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Gate holds one request until Release is called or the request context
// ends.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived is closed once the held request reached the server.
func (g *Gate) Arrived() <-chan struct{} {
	return g.arrived
}

func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Hold makes the next request to method and path wait on the returned gate.
func (s *Server) Hold(method, path string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[method+" "+path] = g
	s.mu.Unlock()
	return g
}

// Record returns a copy of the stored record.
func (s *Server) Record(path, id string) (schema.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.mustCollection(path)
	if i := col.index(id); i >= 0 {
		return clone(col.records[i]), true
	}
	return nil, false
}

// Len returns the number of stored records.
func (s *Server) Len(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mustCollection(path).records)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

// Upload returns the stored bytes of an uploaded file.
func (s *Server) Upload(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[path]
	return data, ok
}

func (s *Server) mustCollection(path string) *collection {
	col, ok := s.collections[strings.Trim(path, "/")]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown collection %q", path))
	}
	return col
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, Prefix)
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:   r.Method,
		Path:     path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	status, failing := s.failures[r.Method+" "+path]
	gate := s.gates[r.Method+" "+path]
	delete(s.gates, r.Method+" "+path)
	s.mu.Unlock()

	if gate != nil {
		close(gate.arrived)
		select {
		case <-gate.release:
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}

	if r.Method == http.MethodPost && path == "/files/upload" {
		s.handleUpload(w, r)
		return
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[segments[0]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(segments) == 1 && r.Method == http.MethodGet:
		s.list(w, r, col)
	case len(segments) == 1 && r.Method == http.MethodPost:
		s.create(w, col, body)
	case len(segments) == 2 && r.Method == http.MethodGet:
		s.get(w, col, segments[1])
	case len(segments) == 2 && r.Method == http.MethodPut:
		s.update(w, col, segments[1], body)
	case len(segments) == 3 && segments[1] == "update" && r.Method == http.MethodPut:
		s.update(w, col, segments[2], body)
	case len(segments) == 2 && r.Method == http.MethodDelete:
		s.remove(w, col, segments[1])
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, col *collection) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	matched := col.records
	if !s.IgnoreFilters {
		matched = col.filter(r.URL.Query().Get("search"), r.URL.Query().Get("status"))
	}

	totalPages := (len(matched) + size - 1) / size
	start := page * size
	content := []schema.Record{}
	if start < len(matched) {
		end := start + size
		if end > len(matched) {
			end = len(matched)
		}
		content = append(content, matched[start:end]...)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":       content,
		"totalPages":    totalPages,
		"number":        page,
		"totalElements": len(matched),
	})
}

func (s *Server) get(w http.ResponseWriter, col *collection, id string) {
	i := col.index(id)
	if i < 0 {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, http.StatusOK, col.records[i])
}

func (s *Server) create(w http.ResponseWriter, col *collection, body []byte) {
	rec, err := decodeRecord(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	delete(rec, col.entity.IDField)
	stored := col.insert(rec)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) update(w http.ResponseWriter, col *collection, id string, body []byte) {
	i := col.index(id)
	if i < 0 {
		http.NotFound(w, nil)
		return
	}
	rec, err := decodeRecord(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec[col.entity.IDField] = col.records[i][col.entity.IDField]
	col.records[i] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, col *collection, id string) {
	i := col.index(id)
	if i < 0 {
		http.NotFound(w, nil)
		return
	}
	col.records = append(col.records[:i], col.records[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stored := "uploads/" + uuid.NewString() + "-" + header.Filename
	s.mu.Lock()
	s.uploads[stored] = data
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, stored+"\n")
}

func (c *collection) insert(rec schema.Record) schema.Record {
	if _, ok := rec.ID(c.entity.IDField); !ok {
		rec[c.entity.IDField] = c.nextID
	}
	if id, err := strconv.Atoi(rec.String(c.entity.IDField)); err == nil && id >= c.nextID {
		c.nextID = id + 1
	}
	c.records = append(c.records, rec)
	return rec
}

func (c *collection) index(id string) int {
	for i, rec := range c.records {
		if got, _ := rec.ID(c.entity.IDField); got == id {
			return i
		}
	}
	return -1
}

func (c *collection) filter(search, status string) []schema.Record {
	search = strings.ToLower(strings.TrimSpace(search))
	status = strings.TrimSpace(status)
	if search == "" && status == "" {
		return c.records
	}
	var out []schema.Record
	for _, rec := range c.records {
		if status != "" && c.entity.StatusField != "" && !strings.EqualFold(rec.String(c.entity.StatusField), status) {
			continue
		}
		if search != "" && !matches(rec, c.entity.SearchFields, search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec schema.Record, fields []string, needle string) bool {
	for _, name := range fields {
		if strings.Contains(strings.ToLower(rec.String(name)), needle) {
			return true
		}
	}
	return false
}

func decodeRecord(body []byte) (schema.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rec schema.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = schema.Record{}
	}
	return rec, nil
}

func clone(rec schema.Record) schema.Record {
	out := make(schema.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

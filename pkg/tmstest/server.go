// Package tmstest provides an in-memory fake of the rahtash-tms API for
// SDK and consumer tests. It speaks the real contract: enveloped list
// and detail responses, JSON and multipart create/update, 204 deletes,
// and field-error maps on constraint violations.
package tmstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultPerPage = 15

type failure struct {
	status  int
	message string
}

type collection struct {
	base    string
	label   string
	nextID  int
	records []map[string]any
	unique  []string
}

// Server is the fake backend. Mount Handler on an httptest.Server.
type Server struct {
	mu          sync.Mutex
	perPage     int
	token       string
	collections map[string]*collection
	failNext    *failure
	router      chi.Router
	logger      zerolog.Logger
}

// New creates an empty server. Resources must be registered before the
// handler sees traffic for them.
func New(logger zerolog.Logger) *Server {
	s := &Server{
		perPage:     defaultPerPage,
		collections: make(map[string]*collection),
		router:      chi.NewRouter(),
		logger:      logger.With().Str("component", "tmstest").Logger(),
	}
	s.router.Use(s.failureMiddleware)
	s.router.Use(s.authMiddleware)
	return s
}

// Handler returns the HTTP handler serving all registered resources.
func (s *Server) Handler() http.Handler { return s.router }

// SetPerPage overrides the page size (default 15).
func (s *Server) SetPerPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.perPage = n
	}
}

// RequireToken makes every request demand the given bearer token.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// FailNext makes the next request fail with the given status and
// message, then restores normal behavior. Used to simulate outages.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = &failure{status: status, message: message}
}

// Register mounts the standard endpoint set for a resource base such as
// "/api/v1/shipment". Fields listed in unique reject duplicate values
// with an "already exists" field error.
func (s *Server) Register(base string, unique ...string) {
	base = strings.TrimRight(base, "/")
	col := &collection{
		base:   base,
		label:  base[strings.LastIndex(base, "/")+1:],
		unique: unique,
	}

	s.mu.Lock()
	s.collections[base] = col
	s.mu.Unlock()

	s.router.Get(base+"/list/", s.handleList(col))
	s.router.Get(base+"/detail/{id}/", s.handleDetail(col))
	s.router.Post(base+"/create/", s.handleCreate(col))
	s.router.Patch(base+"/update/{id}/", s.handleUpdate(col))
	s.router.Delete(base+"/delete/{id}/", s.handleDelete(col))
}

// Seed inserts a record directly, assigning its id, and returns the
// stored copy.
func (s *Server) Seed(base string, record map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[strings.TrimRight(base, "/")]
	if col == nil {
		panic(fmt.Sprintf("tmstest: seeding unregistered resource %q", base))
	}
	stored := cloneRecord(record)
	col.nextID++
	stored["id"] = col.nextID
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	col.records = append(col.records, stored)
	return cloneRecord(stored)
}

// Count returns the number of stored records for a resource.
func (s *Server) Count(base string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[strings.TrimRight(base, "/")]
	if col == nil {
		return 0
	}
	return len(col.records)
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f := s.failNext
		s.failNext = nil
		s.mu.Unlock()
		if f != nil {
			writeJSON(w, f.status, map[string]any{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "authentication credentials were not provided"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				page = parsed
			}
		}

		s.mu.Lock()
		perPage := s.perPage
		records := make([]map[string]any, len(col.records))
		for i, rec := range col.records {
			records[i] = cloneRecord(rec)
		}
		s.mu.Unlock()

		sort.Slice(records, func(i, j int) bool {
			return recordID(records[i]) < recordID(records[j])
		})
		if ordering := r.URL.Query().Get("ordering"); strings.HasPrefix(ordering, "-") {
			for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
				records[i], records[j] = records[j], records[i]
			}
		}

		total := len(records)
		start := (page - 1) * perPage
		end := start + perPage
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		envelope := map[string]any{
			"status":        true,
			"message":       "ok",
			"data":          records[start:end],
			"total_results": total,
			"per_page":      perPage,
			"page_now":      page,
			"next_link":     nil,
		}
		if end < total {
			envelope["next_link"] = fmt.Sprintf("%s/list/?page=%d", col.base, page+1)
		}

		s.logger.Debug().Str("base", col.base).Int("page", page).Int("total", total).Msg("list")
		writeJSON(w, http.StatusOK, envelope)
	}
}

func (s *Server) handleDetail(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid id"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rec := range col.records {
			if recordID(rec) == id {
				writeEnvelope(w, http.StatusOK, "ok", cloneRecord(rec))
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": col.label + " not found"})
	}
}

func (s *Server) handleCreate(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := parseBody(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if fieldErrs := col.uniqueViolations(fields, 0); len(fieldErrs) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": fieldErrs})
			return
		}

		col.nextID++
		fields["id"] = col.nextID
		fields["created_at"] = time.Now().UTC().Format(time.RFC3339)
		col.records = append(col.records, fields)

		s.logger.Debug().Str("base", col.base).Int("id", col.nextID).Msg("created")
		writeEnvelope(w, http.StatusOK, capitalize(col.label)+" created successfully", cloneRecord(fields))
	}
}

func (s *Server) handleUpdate(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid id"})
			return
		}
		fields, err := parseBody(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rec := range col.records {
			if recordID(rec) != id {
				continue
			}
			if fieldErrs := col.uniqueViolations(fields, id); len(fieldErrs) > 0 {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": fieldErrs})
				return
			}
			for k, v := range fields {
				if k == "id" {
					continue
				}
				rec[k] = v
			}
			writeEnvelope(w, http.StatusOK, capitalize(col.label)+" updated successfully", cloneRecord(rec))
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": col.label + " not found"})
	}
}

func (s *Server) handleDelete(col *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid id"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for i, rec := range col.records {
			if recordID(rec) == id {
				col.records = append(col.records[:i], col.records[i+1:]...)
				s.logger.Debug().Str("base", col.base).Int("id", id).Msg("deleted")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": col.label + " not found"})
	}
}

func (col *collection) uniqueViolations(fields map[string]any, selfID int) map[string][]string {
	violations := make(map[string][]string)
	for _, name := range col.unique {
		value, ok := fields[name]
		if !ok {
			continue
		}
		for _, rec := range col.records {
			if recordID(rec) == selfID {
				continue
			}
			if fmt.Sprint(rec[name]) == fmt.Sprint(value) {
				violations[name] = append(violations[name], "already exists")
				break
			}
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return violations
}

// parseBody accepts either JSON or multipart form data, mirroring what
// the real backend tolerates. Multipart file parts are stored as their
// filename.
func parseBody(r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("invalid multipart body")
		}
		fields := make(map[string]any)
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[name] = coerceFormValue(values[0])
			}
		}
		for name, files := range r.MultipartForm.File {
			if len(files) > 0 {
				fields[name] = files[0].Filename
			}
		}
		return fields, nil
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("invalid json body")
	}
	return fields, nil
}

// coerceFormValue types multipart form scalars the way the real backend
// binds them to columns: integers and booleans come back typed in the
// response body, everything else stays a string.
func coerceFormValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func recordID(rec map[string]any) int {
	switch v := rec["id"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func cloneRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{
		"status":        true,
		"message":       message,
		"data":          data,
		"total_results": 0,
		"per_page":      0,
		"page_now":      0,
		"next_link":     nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

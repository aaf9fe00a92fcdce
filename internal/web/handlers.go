package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"

	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/search"
	"github.com/sgx-labs/docsite/internal/site"
)

// maxQueryLen caps search queries.
const maxQueryLen = 512

// maxRecentBody caps POST /api/recent payloads.
const maxRecentBody = 16 * 1024

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": s.version})
}

// handleConfig reports the client settings the page needs.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"version":     s.version,
		"debounce_ms": search.ClampDebounce(s.site.Debounce).Milliseconds(),
	})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	scope := content.ScopeFrom(r.Context())
	tree, err := scope.Tree()
	if err != nil {
		s.log.Error("build tree", "error", err)
		writeError(w, http.StatusInternalServerError, "content root unavailable")
		return
	}
	if tree.Sections == nil {
		tree.Sections = []content.Section{}
	}
	writeCached(w, r, tree)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.site.Home(r.Context(), content.ScopeFrom(r.Context()))
	if err != nil {
		s.log.Error("build home", "error", err)
		writeError(w, http.StatusInternalServerError, "content root unavailable")
		return
	}
	writeCached(w, r, home)
}

type searchHit struct {
	search.Result
	TitleHTML string `json:"title_html"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, "oversized query")
		return
	}

	idx, err := s.site.Index(r.Context())
	if err != nil {
		s.log.Error("build search index", "error", err)
		writeError(w, http.StatusInternalServerError, "search index unavailable")
		return
	}

	if query == "" {
		writeJSON(w, map[string]any{
			"query": "",
			"view":  s.site.DefaultView(idx, s.recents()),
		})
		return
	}

	fuzzy := r.URL.Query().Get("fuzzy") == "1"
	results := idx.Search(query, fuzzy)
	hits := make([]searchHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, searchHit{
			Result:    res,
			TitleHTML: search.Highlight(res.Item.Title, query, search.DefaultMarker),
		})
	}
	writeJSON(w, map[string]any{
		"query":   query,
		"fuzzy":   fuzzy,
		"results": hits,
	})
}

func (s *Server) handleSearchHeadings(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" || len(query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, "missing or oversized query")
		return
	}

	var headings []search.Heading
	if doc := r.URL.Query().Get("doc"); doc != "" {
		// In-page search: only the headings of one document.
		section, file, ok := strings.Cut(doc, "/")
		if !ok {
			writeError(w, http.StatusBadRequest, "doc must be section/file")
			return
		}
		page, err := s.site.Page(content.ScopeFrom(r.Context()), section, file)
		if err != nil {
			s.writePageError(w, err)
			return
		}
		headings = page.Headings
	} else {
		idx, err := s.site.Index(r.Context())
		if err != nil {
			s.log.Error("build search index", "error", err)
			writeError(w, http.StatusInternalServerError, "search index unavailable")
			return
		}
		headings = idx.Headings
	}

	results := search.ScoreHeadings(headings, query)
	if results == nil {
		results = []search.HeadingResult{}
	}
	writeJSON(w, map[string]any{
		"query":   query,
		"results": results,
	})
}

func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	section, err1 := url.PathUnescape(chi.URLParam(r, "section"))
	file, err2 := url.PathUnescape(chi.URLParam(r, "file"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid path encoding")
		return
	}
	if strings.HasPrefix(section, ".") || strings.HasPrefix(file, ".") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	page, err := s.site.Page(content.ScopeFrom(r.Context()), section, file)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	writeCached(w, r, page)
}

func (s *Server) writePageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, site.ErrNoPage), errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "page not found")
	default:
		s.log.Error("load page", "error", err)
		writeError(w, http.StatusInternalServerError, "content root unavailable")
	}
}

func (s *Server) recents() []search.Item {
	if s.recent == nil {
		return []search.Item{}
	}
	return s.recent.Get()
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.recents())
}

type recordRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleRecordRecent(w http.ResponseWriter, r *http.Request) {
	if s.recent == nil {
		writeError(w, http.StatusServiceUnavailable, "recency store disabled")
		return
	}
	var req recordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecentBody)).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"id\": \"...\"}")
		return
	}

	idx, err := s.site.Index(r.Context())
	if err != nil {
		s.log.Error("build search index", "error", err)
		writeError(w, http.StatusInternalServerError, "search index unavailable")
		return
	}
	for _, it := range idx.Items {
		if it.ID == req.ID {
			s.recent.Record(it)
			writeJSON(w, s.recent.Get())
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown item")
}

// --- Helpers ---

// writeCached writes data as JSON with an ETag, answering 304 when the
// client already holds the same representation.
func writeCached(w http.ResponseWriter, r *http.Request, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode response")
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

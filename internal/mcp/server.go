// Package mcp implements the MCP server for docsite.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/recency"
	"github.com/sgx-labs/docsite/internal/search"
	"github.com/sgx-labs/docsite/internal/site"
)

// Version is set by the caller (main) before calling Serve.
var Version = "dev"

// Server exposes one content root as MCP tools.
type Server struct {
	site   *site.Site
	recent *recency.Store
}

// NewServer returns a tool server. recent may be nil.
func NewServer(s *site.Site, recent *recency.Store) *Server {
	return &Server{site: s, recent: recent}
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docsite",
		Version: Version,
	}, nil)

	s.registerTools(server)

	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools(server *mcp.Server) {
	// get_tree
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tree",
		Description: "List the sections and documents of the docs site in navigation order.\n\nReturns sections with their IDs, labels and documents.",
	}, s.handleGetTree)

	// search_docs
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search page, component and resource entries by title, description or ID.\n\nArgs:\n  query: Case-insensitive text to look for (empty returns the default view)\n  fuzzy: Rank by typo-tolerant title match instead of substring filter\n  top_k: Number of results (default 10, max 100)\n\nReturns matching entries with their hrefs.",
	}, s.handleSearchDocs)

	// search_headings
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_headings",
		Description: "Search document headings and the prose under them. Title hits weigh most.\n\nArgs:\n  query: Text to look for\n  doc: Optional section/file to search a single document\n  top_k: Number of results (default 10, max 100)\n\nReturns scored headings with anchors.",
	}, s.handleSearchHeadings)

	// get_doc
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_doc",
		Description: "Read a document with wiki links resolved. Use this after search_docs returns a relevant href.\n\nArgs:\n  href: Document route (e.g. /docs/B_Components/button) or section/file\n\nReturns front matter and markdown body.",
	}, s.handleGetDoc)

	// get_home
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_home",
		Description: "Return the landing page navigation: quick-start cards and recent documentation updates.",
	}, s.handleGetHome)

	// doc_history
	mcp.AddTool(server, &mcp.Tool{
		Name:        "doc_history",
		Description: "Show recent git commits touching a document and whether it has uncommitted edits.\n\nArgs:\n  href: Document route or section/file\n\nReturns commit lines, last change date and dirty flag.",
	}, s.handleDocHistory)
}

// Tool input types

type searchInput struct {
	Query string `json:"query" jsonschema:"Text to search for"`
	Fuzzy bool   `json:"fuzzy,omitempty" jsonschema:"Use fuzzy title ranking"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"Number of results (default 10, max 100)"`
}

type headingsInput struct {
	Query string `json:"query" jsonschema:"Text to search for"`
	Doc   string `json:"doc,omitempty" jsonschema:"Optional section/file to restrict the search"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"Number of results (default 10, max 100)"`
}

type docInput struct {
	Href string `json:"href" jsonschema:"Document route or section/file"`
}

type emptyInput struct{}

// Tool handlers

func (s *Server) handleGetTree(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	tree, err := s.site.Loader.NewScope().Tree()
	if err != nil {
		return textResult(fmt.Sprintf("Error reading content root: %v", err)), nil, nil
	}
	return jsonResult(tree), nil, nil
}

func (s *Server) handleSearchDocs(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	idx, err := s.site.Index(ctx)
	if err != nil {
		return textResult(fmt.Sprintf("Error building search index: %v", err)), nil, nil
	}

	if strings.TrimSpace(input.Query) == "" {
		return jsonResult(s.site.DefaultView(idx, s.recents())), nil, nil
	}

	results := idx.Search(input.Query, input.Fuzzy)
	if len(results) == 0 {
		return textResult("No results found."), nil, nil
	}
	topK := clampTopK(input.TopK, 10)
	if len(results) > topK {
		results = results[:topK]
	}
	return jsonResult(results), nil, nil
}

func (s *Server) handleSearchHeadings(ctx context.Context, req *mcp.CallToolRequest, input headingsInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Query) == "" {
		return textResult("Error: query is required."), nil, nil
	}

	var headings []search.Heading
	if input.Doc != "" {
		section, file, ok := parseHref(input.Doc)
		if !ok {
			return textResult("Error: doc must be section/file."), nil, nil
		}
		page, err := s.site.Page(s.site.Loader.NewScope(), section, file)
		if err != nil {
			return pageError(err), nil, nil
		}
		headings = page.Headings
	} else {
		idx, err := s.site.Index(ctx)
		if err != nil {
			return textResult(fmt.Sprintf("Error building search index: %v", err)), nil, nil
		}
		headings = idx.Headings
	}

	results := search.ScoreHeadings(headings, input.Query)
	if len(results) == 0 {
		return textResult("No matching headings."), nil, nil
	}
	topK := clampTopK(input.TopK, 10)
	if len(results) > topK {
		results = results[:topK]
	}
	return jsonResult(results), nil, nil
}

func (s *Server) handleGetDoc(ctx context.Context, req *mcp.CallToolRequest, input docInput) (*mcp.CallToolResult, any, error) {
	section, file, ok := parseHref(input.Href)
	if !ok {
		return textResult("Error: href must look like /docs/<section>/<file>."), nil, nil
	}
	page, err := s.site.Page(s.site.Loader.NewScope(), section, file)
	if err != nil {
		return pageError(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", page.Title)
	if !page.Meta.IsZero() {
		meta, _ := json.Marshal(page.Meta)
		fmt.Fprintf(&b, "meta: %s\n\n", meta)
	}
	b.WriteString(page.Body)
	return textResult(b.String()), nil, nil
}

func (s *Server) handleGetHome(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	home, err := s.site.Home(ctx, s.site.Loader.NewScope())
	if err != nil {
		return textResult(fmt.Sprintf("Error reading content root: %v", err)), nil, nil
	}
	return jsonResult(home), nil, nil
}

func (s *Server) handleDocHistory(ctx context.Context, req *mcp.CallToolRequest, input docInput) (*mcp.CallToolResult, any, error) {
	section, file, ok := parseHref(input.Href)
	if !ok {
		return textResult("Error: href must look like /docs/<section>/<file>."), nil, nil
	}
	tree, err := s.site.Loader.NewScope().Tree()
	if err != nil {
		return textResult(fmt.Sprintf("Error reading content root: %v", err)), nil, nil
	}
	item, ok := tree.FindItem(section, file)
	if !ok {
		return textResult("Document not found."), nil, nil
	}

	history := collectDocHistory(s.site.Loader.Root, content.DocsDir+"/"+item.Path)
	if history == nil {
		return textResult("Content root is not in a git repository."), nil, nil
	}
	return jsonResult(history), nil, nil
}

// Helpers

func (s *Server) recents() []search.Item {
	if s.recent == nil {
		return []search.Item{}
	}
	return s.recent.Get()
}

// parseHref accepts /docs/<section>/<file>, docs/<section>/<file> or
// <section>/<file>, with optional #anchor.
func parseHref(href string) (section, file string, ok bool) {
	href, _, _ = strings.Cut(href, "#")
	href = strings.TrimPrefix(strings.TrimPrefix(href, "/"), "docs/")
	section, file, ok = strings.Cut(href, "/")
	if !ok || section == "" || file == "" || strings.Contains(file, "/") {
		return "", "", false
	}
	var err1, err2 error
	section, err1 = url.PathUnescape(section)
	file, err2 = url.PathUnescape(file)
	if err1 != nil || err2 != nil {
		return "", "", false
	}
	if strings.HasPrefix(section, ".") || strings.HasPrefix(file, ".") {
		return "", "", false
	}
	return section, file, true
}

func pageError(err error) *mcp.CallToolResult {
	if errors.Is(err, site.ErrNoPage) || errors.Is(err, content.ErrNotFound) {
		return textResult("Document not found.")
	}
	return textResult(fmt.Sprintf("Error reading document: %v", err))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("Error encoding result: %v", err))
	}
	return textResult(string(data))
}

func clampTopK(topK, defaultVal int) int {
	if topK <= 0 {
		return defaultVal
	}
	if topK > 100 {
		return 100
	}
	return topK
}

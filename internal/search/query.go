package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a photo search.
type Params struct {
	Query string // User's search query

	// OwnerEmail restricts results to one owner's photos. Required in
	// practice: an empty owner searches everything.
	OwnerEmail string

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent"
	SortOrder string // "asc", "desc"

	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     50,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single matching photo.
type Hit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	OriginalName string            `json:"original_name,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	MimeType     string            `json:"mime_type,omitempty"`
	UploadedAt   int64             `json:"uploaded_at,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Search executes a photo search.
func (s *PhotoIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("original_name")
		searchRequest.Highlight.AddField("tags")
	}

	searchRequest.Fields = []string{
		"id", "name", "original_name", "tags", "mime_type", "uploaded_at",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		photoHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			photoHit.Name = n
		}
		if on, ok := hit.Fields["original_name"].(string); ok {
			photoHit.OriginalName = on
		}
		if mt, ok := hit.Fields["mime_type"].(string); ok {
			photoHit.MimeType = mt
		}
		if ua, ok := hit.Fields["uploaded_at"].(float64); ok {
			photoHit.UploadedAt = int64(ua)
		}

		// Stored multi-value fields come back as a string for one value
		// and []interface{} for several.
		switch tags := hit.Fields["tags"].(type) {
		case string:
			photoHit.Tags = []string{tags}
		case []interface{}:
			for _, tag := range tags {
				if t, ok := tag.(string); ok {
					photoHit.Tags = append(photoHit.Tags, t)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			photoHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					photoHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, photoHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query across name, original name, and tags. The display
	// name carries the highest boost so an exact rename wins over an
	// incidental tag match.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		originalMatch := bleve.NewMatchQuery(params.Query)
		originalMatch.SetField("original_name")
		originalMatch.SetBoost(2.0)
		textQueries = append(textQueries, originalMatch)

		tagMatch := bleve.NewMatchQuery(params.Query)
		tagMatch.SetField("tags")
		tagMatch.SetBoost(1.5)
		textQueries = append(textQueries, tagMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for search-as-you-type (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Owner partition (exact match)
	if params.OwnerEmail != "" {
		ownerQuery := bleve.NewTermQuery(params.OwnerEmail)
		ownerQuery.SetField("owner_email")
		queries = append(queries, ownerQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"uploaded_at"})
		} else {
			req.SortBy([]string{"-uploaded_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for photo documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on photo names with simple tokenization
//     (filenames don't stem like prose, so no language analyzer)
//  2. Exact keyword matching for owner partitioning
//  3. Numeric range on upload time for recency sorting
//  4. Term vectors on name fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Filenames are not natural language; the simple analyzer splits on
	// non-letters without stemming.
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name - primary search target, boosted at query time
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Original upload name - searchable alongside the display name
	originalNameFieldMapping := bleve.NewTextFieldMapping()
	originalNameFieldMapping.Analyzer = simple.Name
	originalNameFieldMapping.Store = true
	originalNameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("original_name", originalNameFieldMapping)

	// Tags - searchable as plain words
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = simple.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// --- Keyword fields (exact match) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Owner email - exact match so results never cross owners
	ownerFieldMapping := bleve.NewTextFieldMapping()
	ownerFieldMapping.Analyzer = keyword.Name
	ownerFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("owner_email", ownerFieldMapping)

	// MIME type - exact match for format filtering
	mimeFieldMapping := bleve.NewTextFieldMapping()
	mimeFieldMapping.Analyzer = keyword.Name
	mimeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("mime_type", mimeFieldMapping)

	// --- Numeric fields ---

	// Upload time - for sorting by recency
	uploadedAtFieldMapping := bleve.NewNumericFieldMapping()
	uploadedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("uploaded_at", uploadedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

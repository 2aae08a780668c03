package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildMemberMapping maps member documents. Text fields are indexed already
// folded (lowercase, no diacritics), so the standard analyzer only has to
// tokenize. Status, segment key and email are exact-match keywords.
func buildMemberMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	doc := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "company", "segment", "position", "bio"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		doc.AddFieldMappingsAt(field, fm)
	}

	for _, field := range []string{"email", "status", "segment_key"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = false
		doc.AddFieldMappingsAt(field, fm)
	}

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}

package resourceindex

import (
	"github.com/kailas-cloud/reindexer/internal/db"
)

// buildIndex describes the FT schema over resource documents stored as JSON under prefix.
// TEXT fields are added only when the backend supports them (valkey-search does not).
func buildIndex(name, prefix string, textSearchEnabled bool) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).
		OnJSON().
		Prefix(prefix).
		Tag("$.ID", "id").
		Tag("$.ResourceGroup", "group").
		Tag("$.Type", "type").
		Tag("$.Affiliation", "affiliation").
		Tag("$.ProviderID", "provider").
		Tag("$.QualityLevel", "quality").
		Tag("$.Topics[*]", "topics").
		Tag("$.Keywords[*]", "keywords").
		Tag("$.Relations[*].RelatedID", "related")

	if textSearchEnabled {
		b = b.
			SortableText("$.Name", "name").
			Text("$.ShortDescription", "short_description").
			Text("$.Description", "description")
	}

	return b.Build()
}

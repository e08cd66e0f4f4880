package resource

import (
	"slices"
	"strings"
)

// Document is the search representation of one resource and its outgoing relations.
// Field names follow the catalog column names so search clients can query either.
type Document struct {
	ID               string            `json:"ID"`
	Affiliation      string            `json:"Affiliation"`
	LocalID          string            `json:"LocalID,omitempty"`
	QualityLevel     string            `json:"QualityLevel,omitempty"`
	Name             string            `json:"Name"`
	ResourceGroup    string            `json:"ResourceGroup"`
	Type             string            `json:"Type"`
	ShortDescription string            `json:"ShortDescription,omitempty"`
	ProviderID       string            `json:"ProviderID,omitempty"`
	Description      string            `json:"Description,omitempty"`
	Topics           []string          `json:"Topics"`
	Keywords         []string          `json:"Keywords"`
	Audience         string            `json:"Audience,omitempty"`
	StartDateTime    string            `json:"StartDateTime,omitempty"`
	EndDateTime      string            `json:"EndDateTime,omitempty"`
	Relations        []RelatedResource `json:"Relations"`
}

// RelatedResource is one entry of Document.Relations.
type RelatedResource struct {
	RelatedID    string `json:"RelatedID"`
	RelationType string `json:"RelationType"`
}

// relatedList renders rels sorted by related ID so identical inputs give identical documents.
func relatedList(rels Relations) []RelatedResource {
	out := make([]RelatedResource, 0, len(rels))
	for id, typ := range rels {
		out = append(out, RelatedResource{RelatedID: id, RelationType: typ})
	}
	slices.SortFunc(out, func(a, b RelatedResource) int {
		return strings.Compare(a.RelatedID, b.RelatedID)
	})
	return out
}

// splitList splits a comma-separated column, trimming and dropping blanks and repeats.
func splitList(raw string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

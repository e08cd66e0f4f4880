// Package selection resolves CLI-style filter criteria into the set of resources a run reindexes.
package selection

import (
	"slices"
	"strings"
)

// Kind names a selection criterion.
type Kind string

const (
	// KindGroup matches on the resource group.
	KindGroup Kind = "group"
	// KindType matches on the resource type.
	KindType Kind = "type"
	// KindAffiliation matches on the resource affiliation.
	KindAffiliation Kind = "affiliation"
	// KindAll selects every resource and implies a full rebuild.
	KindAll Kind = "all"
)

// Criterion is one membership test: the resource attribute must be one of Values.
type Criterion struct {
	kind   Kind
	values []string
}

// Kind returns the criterion name.
func (c Criterion) Kind() Kind { return c.kind }

// Values returns the accepted values, sorted and de-duplicated.
func (c Criterion) Values() []string { return slices.Clone(c.values) }

// Accepts reports whether v is one of the accepted values. KindAll accepts everything.
func (c Criterion) Accepts(v string) bool {
	if c.kind == KindAll {
		return true
	}
	_, found := slices.BinarySearch(c.values, v)
	return found
}

// Selection is the ordered, non-empty list of criteria for one run. Immutable.
type Selection struct {
	criteria []Criterion
}

// All returns the sentinel selection that matches every resource.
func All() Selection {
	return Selection{criteria: []Criterion{{kind: KindAll}}}
}

// Resolve builds a Selection from up to three comma-separated value lists.
// An empty string is treated as not provided; any other string yields a criterion whose values
// are taken literally. When none is provided the result is All.
// Criteria are ordered group, type, affiliation regardless of argument order on the command line.
func Resolve(group, typ, affiliation string) Selection {
	var criteria []Criterion
	for _, in := range []struct {
		kind Kind
		raw  string
	}{
		{KindGroup, group},
		{KindType, typ},
		{KindAffiliation, affiliation},
	} {
		values := splitValues(in.raw)
		if len(values) == 0 {
			continue
		}
		criteria = append(criteria, Criterion{kind: in.kind, values: values})
	}
	if len(criteria) == 0 {
		return All()
	}
	return Selection{criteria: criteria}
}

// Criteria returns the criteria in application order.
func (s Selection) Criteria() []Criterion {
	if len(s.criteria) == 0 {
		return All().criteria
	}
	return slices.Clone(s.criteria)
}

// IsAll reports whether the selection is the full-rebuild sentinel.
func (s Selection) IsAll() bool {
	return len(s.criteria) == 0 || s.criteria[0].kind == KindAll
}

// Matches reports whether a resource with the given attributes satisfies every criterion.
func (s Selection) Matches(group, typ, affiliation string) bool {
	for _, c := range s.Criteria() {
		var v string
		switch c.kind {
		case KindAll:
			return true
		case KindGroup:
			v = group
		case KindType:
			v = typ
		case KindAffiliation:
			v = affiliation
		}
		if !c.Accepts(v) {
			return false
		}
	}
	return true
}

// String renders the selection for logs, e.g. "group=HPC,Cloud type=Compute".
func (s Selection) String() string {
	if s.IsAll() {
		return string(KindAll)
	}
	parts := make([]string, 0, len(s.criteria))
	for _, c := range s.criteria {
		parts = append(parts, string(c.kind)+"="+strings.Join(c.values, ","))
	}
	return strings.Join(parts, " ")
}

// splitValues splits raw on commas as-is: blanks and surrounding spaces are literal values.
func splitValues(raw string) []string {
	if raw == "" {
		return nil
	}
	out := strings.Split(raw, ",")
	slices.Sort(out)
	return slices.Compact(out)
}

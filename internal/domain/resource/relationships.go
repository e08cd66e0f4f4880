package resource

import (
	"fmt"
	"iter"
	"maps"

	"github.com/kailas-cloud/reindexer/internal/domain"
)

// Relations maps a related resource ID to the relation type.
type Relations map[string]string

// RelationshipMap associates each resource ID with the resources it points to.
// Built once per run, read-only afterwards.
type RelationshipMap struct {
	byFirst   map[string]Relations
	edges     int
	conflicts []*domain.RelationConflictError
}

// NewRelationshipMap returns an empty map.
func NewRelationshipMap() *RelationshipMap {
	return &RelationshipMap{byFirst: make(map[string]Relations)}
}

// Add records rel. A later edge for an existing pair replaces the earlier one; when the
// type differs the overwrite is returned as a conflict (and remembered) so callers can
// decide whether that is fatal.
func (m *RelationshipMap) Add(rel Relation) *domain.RelationConflictError {
	m.edges++
	inner, ok := m.byFirst[rel.FirstResourceID]
	if !ok {
		inner = make(Relations)
		m.byFirst[rel.FirstResourceID] = inner
	}

	var conflict *domain.RelationConflictError
	if prev, seen := inner[rel.SecondResourceID]; seen && prev != rel.RelationType {
		conflict = &domain.RelationConflictError{
			FirstID:  rel.FirstResourceID,
			SecondID: rel.SecondResourceID,
			Previous: prev,
			Current:  rel.RelationType,
		}
		m.conflicts = append(m.conflicts, conflict)
	}
	inner[rel.SecondResourceID] = rel.RelationType
	return conflict
}

// For returns a copy of the sub-map for id. A resource without relations gets an empty map.
func (m *RelationshipMap) For(id string) Relations {
	inner, ok := m.byFirst[id]
	if !ok {
		return Relations{}
	}
	return maps.Clone(inner)
}

// Len returns the number of distinct first-resource IDs.
func (m *RelationshipMap) Len() int { return len(m.byFirst) }

// Edges returns the number of relation rows consumed, duplicates included.
func (m *RelationshipMap) Edges() int { return m.edges }

// Conflicts returns the pairs whose type was overwritten with a different value.
func (m *RelationshipMap) Conflicts() []*domain.RelationConflictError { return m.conflicts }

// BuildRelationshipMap consumes every relation exactly once. Duplicate pairs keep the
// last-seen type; with strict set, the first conflicting duplicate aborts the build.
// Errors from the source are returned as-is, wrapped with context.
func BuildRelationshipMap(relations iter.Seq2[Relation, error], strict bool) (*RelationshipMap, error) {
	m := NewRelationshipMap()
	for rel, err := range relations {
		if err != nil {
			return nil, fmt.Errorf("load relations: %w", err)
		}
		if conflict := m.Add(rel); conflict != nil && strict {
			return nil, conflict
		}
	}
	return m, nil
}

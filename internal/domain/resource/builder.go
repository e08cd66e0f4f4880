package resource

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/reindexer/internal/domain"
)

// Resource groups with a dedicated document layout.
const (
	GroupLiveEvents     = "Live Events"
	GroupStreamedEvents = "Streamed Events"
	GroupOrganizations  = "Organizations"
)

// DocumentBuilder transforms a resource and its relationship sub-map into a search document.
// Implementations must be deterministic: same inputs, same document.
type DocumentBuilder interface {
	BuildDocument(res Resource, rels Relations) (Document, error)
}

// DocumentBuilderFunc adapts a function to DocumentBuilder.
type DocumentBuilderFunc func(res Resource, rels Relations) (Document, error)

// BuildDocument calls f.
func (f DocumentBuilderFunc) BuildDocument(res Resource, rels Relations) (Document, error) {
	return f(res, rels)
}

// GenericBuilder renders the fields every resource shares.
type GenericBuilder struct{}

// BuildDocument implements DocumentBuilder.
func (GenericBuilder) BuildDocument(res Resource, rels Relations) (Document, error) {
	if res.ID == "" {
		return Document{}, fmt.Errorf("resource without ID: %w", domain.ErrBuildDocument)
	}
	return Document{
		ID:               res.ID,
		Affiliation:      res.Affiliation,
		LocalID:          res.LocalID,
		QualityLevel:     res.QualityLevel,
		Name:             res.Name,
		ResourceGroup:    res.Group,
		Type:             res.Type,
		ShortDescription: res.ShortDescription,
		ProviderID:       res.ProviderID,
		Description:      res.Description,
		Topics:           splitList(res.Topics),
		Keywords:         splitList(res.Keywords),
		Audience:         res.Audience,
		Relations:        relatedList(rels),
	}, nil
}

// EventBuilder adds the schedule of live and streamed events. An event without a start
// is indexed without schedule fields; an end before the start is dropped.
type EventBuilder struct{}

// BuildDocument implements DocumentBuilder.
func (EventBuilder) BuildDocument(res Resource, rels Relations) (Document, error) {
	doc, err := GenericBuilder{}.BuildDocument(res, rels)
	if err != nil {
		return Document{}, err
	}
	if res.StartDateTime == nil {
		return doc, nil
	}
	doc.StartDateTime = formatTime(*res.StartDateTime)
	if res.EndDateTime != nil && !res.EndDateTime.Before(*res.StartDateTime) {
		doc.EndDateTime = formatTime(*res.EndDateTime)
	}
	return doc, nil
}

// OrganizationBuilder names organizations by their short description when Name is blank.
type OrganizationBuilder struct{}

// BuildDocument implements DocumentBuilder.
func (OrganizationBuilder) BuildDocument(res Resource, rels Relations) (Document, error) {
	doc, err := GenericBuilder{}.BuildDocument(res, rels)
	if err != nil {
		return Document{}, err
	}
	if doc.Name == "" {
		doc.Name = res.ShortDescription
	}
	return doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Registry dispatches to a builder by resource group, falling back to a default.
type Registry struct {
	byGroup  map[string]DocumentBuilder
	fallback DocumentBuilder
}

// NewRegistry creates a registry whose unknown groups use fallback.
func NewRegistry(fallback DocumentBuilder) *Registry {
	return &Registry{byGroup: make(map[string]DocumentBuilder), fallback: fallback}
}

// DefaultRegistry wires the built-in variants.
func DefaultRegistry() *Registry {
	return NewRegistry(GenericBuilder{}).
		Register(GroupLiveEvents, EventBuilder{}).
		Register(GroupStreamedEvents, EventBuilder{}).
		Register(GroupOrganizations, OrganizationBuilder{})
}

// Register sets the builder for group, replacing any previous one.
func (r *Registry) Register(group string, b DocumentBuilder) *Registry {
	r.byGroup[group] = b
	return r
}

// BuildDocument implements DocumentBuilder by dispatching on res.Group.
func (r *Registry) BuildDocument(res Resource, rels Relations) (Document, error) {
	if b, ok := r.byGroup[res.Group]; ok {
		return b.BuildDocument(res, rels)
	}
	return r.fallback.BuildDocument(res, rels)
}

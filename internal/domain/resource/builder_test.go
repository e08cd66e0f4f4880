package resource

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/reindexer/internal/domain"
)

func TestGenericBuilder_Fields(t *testing.T) {
	res := Resource{
		ID:          "urn:ogf:glue2:access-ci.org:resource:cider:infrastructure.organizations:1",
		Affiliation: "access-ci.org",
		Name:        "Expanse",
		Group:       "Compute",
		Type:        "Compute Resource",
		Topics:      "hpc, gpu,hpc, ",
		Keywords:    "",
	}
	doc, err := GenericBuilder{}.BuildDocument(res, Relations{"B": "parent", "A": "supplier"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != res.ID || doc.ResourceGroup != "Compute" || doc.Name != "Expanse" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if !slices.Equal(doc.Topics, []string{"hpc", "gpu"}) {
		t.Errorf("Topics = %v", doc.Topics)
	}
	if doc.Keywords == nil || len(doc.Keywords) != 0 {
		t.Errorf("Keywords = %#v, want empty non-nil slice", doc.Keywords)
	}
	want := []RelatedResource{{"A", "supplier"}, {"B", "parent"}}
	if !slices.Equal(doc.Relations, want) {
		t.Errorf("Relations = %v, want %v", doc.Relations, want)
	}
}

func TestGenericBuilder_MissingID(t *testing.T) {
	_, err := GenericBuilder{}.BuildDocument(Resource{Name: "x"}, nil)
	if !errors.Is(err, domain.ErrBuildDocument) {
		t.Fatalf("expected ErrBuildDocument, got %v", err)
	}
}

func TestGenericBuilder_EmptyRelations(t *testing.T) {
	doc, err := GenericBuilder{}.BuildDocument(Resource{ID: "R1"}, Relations{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := json.Marshal(doc)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rels, ok := m["Relations"].([]any)
	if !ok || len(rels) != 0 {
		t.Errorf("Relations = %v, want []", m["Relations"])
	}
}

func TestBuildDocument_Idempotent(t *testing.T) {
	res := Resource{ID: "R1", Name: "n", Group: "g", Topics: "a,b"}
	rels := Relations{"R3": "parent", "R2": "parent", "R4": "child"}

	first, err := DefaultRegistry().BuildDocument(res, rels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := json.Marshal(first)
	for range 10 {
		again, err := DefaultRegistry().BuildDocument(res, rels)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ := json.Marshal(again)
		if string(a) != string(b) {
			t.Fatalf("documents differ:\n%s\n%s", a, b)
		}
	}
}

func TestEventBuilder(t *testing.T) {
	start := time.Date(2026, 3, 1, 15, 0, 0, 0, time.FixedZone("CST", -6*3600))
	end := start.Add(2 * time.Hour)

	t.Run("schedule rendered in UTC", func(t *testing.T) {
		doc, err := EventBuilder{}.BuildDocument(Resource{ID: "E1", StartDateTime: &start, EndDateTime: &end}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.StartDateTime != "2026-03-01T21:00:00Z" || doc.EndDateTime != "2026-03-01T23:00:00Z" {
			t.Errorf("schedule = %q..%q", doc.StartDateTime, doc.EndDateTime)
		}
	})

	t.Run("missing start indexes without schedule", func(t *testing.T) {
		doc, err := EventBuilder{}.BuildDocument(Resource{ID: "E1", Name: "Webinar", EndDateTime: &end}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.ID != "E1" || doc.Name != "Webinar" {
			t.Errorf("unexpected document %+v", doc)
		}
		if doc.StartDateTime != "" || doc.EndDateTime != "" {
			t.Errorf("schedule must be omitted, got %q..%q", doc.StartDateTime, doc.EndDateTime)
		}
	})

	t.Run("end before start is dropped", func(t *testing.T) {
		early := start.Add(-time.Hour)
		doc, err := EventBuilder{}.BuildDocument(Resource{ID: "E1", StartDateTime: &start, EndDateTime: &early}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.StartDateTime != "2026-03-01T21:00:00Z" || doc.EndDateTime != "" {
			t.Errorf("schedule = %q..%q", doc.StartDateTime, doc.EndDateTime)
		}
	})
}

func TestOrganizationBuilder_NameFallback(t *testing.T) {
	doc, err := OrganizationBuilder{}.BuildDocument(Resource{ID: "O1", ShortDescription: "SDSC"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "SDSC" {
		t.Errorf("Name = %q, want fallback to short description", doc.Name)
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	var called string
	reg := NewRegistry(DocumentBuilderFunc(func(res Resource, _ Relations) (Document, error) {
		called = "fallback"
		return Document{ID: res.ID}, nil
	})).Register("Software", DocumentBuilderFunc(func(res Resource, _ Relations) (Document, error) {
		called = "software"
		return Document{ID: res.ID}, nil
	}))

	if _, err := reg.BuildDocument(Resource{ID: "1", Group: "Software"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != "software" {
		t.Errorf("called %q, want software", called)
	}
	if _, err := reg.BuildDocument(Resource{ID: "2", Group: "Unknown"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != "fallback" {
		t.Errorf("called %q, want fallback", called)
	}
}

func TestDefaultRegistry_EventsGetSchedule(t *testing.T) {
	start := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	doc, err := DefaultRegistry().BuildDocument(Resource{ID: "E1", Group: GroupLiveEvents, StartDateTime: &start}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.StartDateTime != "2026-03-01T21:00:00Z" {
		t.Errorf("expected live events to use the event builder, got %+v", doc)
	}

	doc, err = DefaultRegistry().BuildDocument(Resource{ID: "G1", Group: "Compute", StartDateTime: &start}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.StartDateTime != "" {
		t.Errorf("generic resources carry no schedule, got %q", doc.StartDateTime)
	}
}

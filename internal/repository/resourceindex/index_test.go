package resourceindex

import (
	"testing"

	"github.com/kailas-cloud/reindexer/internal/db"
)

func TestBuildIndex_WithText(t *testing.T) {
	def, err := buildIndex(testIndex, testPrefix, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.StorageType != db.StorageJSON {
		t.Errorf("expected JSON storage, got %s", def.StorageType)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != testPrefix {
		t.Errorf("unexpected prefixes: %v", def.Prefixes)
	}

	text := 0
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldText {
			text++
		}
	}
	if text != 3 {
		t.Errorf("expected 3 text fields, got %d", text)
	}
}

func TestBuildIndex_WithoutText(t *testing.T) {
	def, err := buildIndex(testIndex, testPrefix, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldText {
			t.Errorf("unexpected text field %s", f.Name)
		}
	}

	aliases := map[string]bool{}
	for _, f := range def.Fields {
		aliases[f.Alias] = true
	}
	for _, want := range []string{"id", "group", "type", "affiliation", "related"} {
		if !aliases[want] {
			t.Errorf("missing field alias %q", want)
		}
	}
}

func TestBuildIndex_InvalidName(t *testing.T) {
	if _, err := buildIndex("bad name", testPrefix, false); err == nil {
		t.Fatal("expected error for invalid index name")
	}
}

package selection

import (
	"slices"
	"testing"
)

func TestResolve_NoneProvidedIsAll(t *testing.T) {
	sel := Resolve("", "", "")
	if !sel.IsAll() {
		t.Fatal("expected all selection")
	}
	criteria := sel.Criteria()
	if len(criteria) != 1 || criteria[0].Kind() != KindAll {
		t.Fatalf("unexpected criteria: %+v", criteria)
	}
	if len(criteria[0].Values()) != 0 {
		t.Errorf("all criterion must carry no values, got %v", criteria[0].Values())
	}
}

func TestResolve_FixedPriorityOrder(t *testing.T) {
	sel := Resolve("HPC", "Compute,Storage", "ACCESS")
	if sel.IsAll() {
		t.Fatal("narrow selection reported as all")
	}

	var kinds []Kind
	for _, c := range sel.Criteria() {
		kinds = append(kinds, c.Kind())
	}
	want := []Kind{KindGroup, KindType, KindAffiliation}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestResolve_PartialCriteria(t *testing.T) {
	tests := []struct {
		name        string
		group, typ  string
		affiliation string
		want        []Kind
	}{
		{"group only", "HPC", "", "", []Kind{KindGroup}},
		{"type only", "", "Compute", "", []Kind{KindType}},
		{"affiliation only", "", "", "ACCESS", []Kind{KindAffiliation}},
		{"type and affiliation", "", "Compute", "ACCESS", []Kind{KindType, KindAffiliation}},
		{"only separators", ",,", "", " , ", []Kind{KindGroup, KindAffiliation}},
		{"blank", " ", "", "", []Kind{KindGroup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Kind
			for _, c := range Resolve(tt.group, tt.typ, tt.affiliation).Criteria() {
				got = append(got, c.Kind())
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_SeparatorOnlyIsNarrow(t *testing.T) {
	for _, raw := range []string{",", " ", " , "} {
		sel := Resolve(raw, "", "")
		if sel.IsAll() {
			t.Errorf("Resolve(%q) must not select all", raw)
		}
		if sel.Matches("HPC", "", "") {
			t.Errorf("Resolve(%q) must not match a real group", raw)
		}
	}
}

func TestResolve_ValuesSplitLiterally(t *testing.T) {
	sel := Resolve("Storage, HPC,,HPC", "", "")
	got := sel.Criteria()[0].Values()
	want := []string{"", " HPC", "HPC", "Storage"}
	if !slices.Equal(got, want) {
		t.Errorf("values = %v, want %v", got, want)
	}
}

func TestResolve_LiteralValuesNotValidated(t *testing.T) {
	sel := Resolve("no such group!", "", "")
	if !sel.Criteria()[0].Accepts("no such group!") {
		t.Error("literal value must be accepted as-is")
	}
}

func TestSelection_Matches(t *testing.T) {
	sel := Resolve("HPC", "Compute,Storage", "")
	tests := []struct {
		group, typ, aff string
		want            bool
	}{
		{"HPC", "Compute", "x", true},
		{"HPC", "Storage", "", true},
		{"HPC", "Network", "x", false},
		{"Cloud", "Compute", "x", false},
	}
	for _, tt := range tests {
		if got := sel.Matches(tt.group, tt.typ, tt.aff); got != tt.want {
			t.Errorf("Matches(%q,%q,%q) = %v, want %v", tt.group, tt.typ, tt.aff, got, tt.want)
		}
	}
	if !All().Matches("anything", "", "") {
		t.Error("all selection must match everything")
	}
}

func TestSelection_ZeroValueIsAll(t *testing.T) {
	var sel Selection
	if !sel.IsAll() {
		t.Error("zero selection must behave as all")
	}
	if sel.String() != "all" {
		t.Errorf("String() = %q", sel.String())
	}
}

func TestSelection_String(t *testing.T) {
	got := Resolve("HPC,Cloud", "Compute", "").String()
	want := "group=Cloud,HPC type=Compute"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSelection_CriteriaAreCopies(t *testing.T) {
	sel := Resolve("HPC", "", "")
	c := sel.Criteria()
	c[0] = Criterion{kind: KindType}
	if sel.Criteria()[0].Kind() != KindGroup {
		t.Error("selection mutated through Criteria()")
	}
	vals := sel.Criteria()[0].Values()
	vals[0] = "changed"
	if sel.Criteria()[0].Values()[0] != "HPC" {
		t.Error("selection mutated through Values()")
	}
}

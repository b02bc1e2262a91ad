package identity_test

import (
	"testing"

	"internwatch/internal/identity"
	"internwatch/internal/model"
)

func baseRole() model.RoleRecord {
	return model.RoleRecord{
		Company:    "Acme",
		Title:      "Software Engineer Intern",
		Locations:  []string{"New York", "Remote"},
		DatePosted: 1756500000,
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := identity.Key(baseRole())
	b := identity.Key(baseRole())
	if a != b {
		t.Errorf("same record produced different keys: %s vs %s", a, b)
	}
}

func TestKey_IgnoresCaseAndWhitespace(t *testing.T) {
	variants := []model.RoleRecord{
		baseRole(),
		{
			Company:    "  ACME ",
			Title:      "software   engineer intern",
			Locations:  []string{"new york", " Remote "},
			DatePosted: 1756500000,
		},
	}

	want := identity.Key(variants[0])
	for i, role := range variants[1:] {
		if got := identity.Key(role); got != want {
			t.Errorf("variant %d produced key %s, want %s", i+1, got, want)
		}
	}
}

func TestKey_LocationOrderIrrelevant(t *testing.T) {
	shuffled := baseRole()
	shuffled.Locations = []string{"Remote", "New York"}
	if identity.Key(shuffled) != identity.Key(baseRole()) {
		t.Error("location order changed the key")
	}
}

func TestKey_DistinctRecordsDiffer(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.RoleRecord)
	}{
		{"different company", func(r *model.RoleRecord) { r.Company = "Globex" }},
		{"different title", func(r *model.RoleRecord) { r.Title = "Data Intern" }},
		{"different locations", func(r *model.RoleRecord) { r.Locations = []string{"Austin"} }},
		{"different posting date", func(r *model.RoleRecord) { r.DatePosted = 1756500100 }},
	}

	base := identity.Key(baseRole())
	for _, tc := range cases {
		role := baseRole()
		tc.mutate(&role)
		if identity.Key(role) == base {
			t.Errorf("%s: key collided with base record", tc.name)
		}
	}
}

func TestKey_IncidentalFieldsIrrelevant(t *testing.T) {
	changed := baseRole()
	changed.ID = "feed-regenerated-id"
	changed.URL = "https://example.com/other"
	changed.Visible = true
	changed.Active = true
	if identity.Key(changed) != identity.Key(baseRole()) {
		t.Error("non-identity fields changed the key")
	}
}

func TestKey_TotalOnZeroValue(t *testing.T) {
	if identity.Key(model.RoleRecord{}) == "" {
		t.Error("zero-value record should still produce a key")
	}
}

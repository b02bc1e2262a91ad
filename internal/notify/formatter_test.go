package notify_test

import (
	"strings"
	"testing"

	"internwatch/internal/model"
	"internwatch/internal/notify"
)

func sampleRole() model.RoleRecord {
	return model.RoleRecord{
		Company:     "Acme",
		Title:       "Software Engineer Intern",
		Locations:   []string{"New York", "Remote"},
		URL:         "https://example.com/acme",
		Season:      "Summer 2026",
		Sponsorship: "Available",
		DatePosted:  1756500000,
		Visible:     true,
		Active:      true,
	}
}

func TestFormatNewRole_ContainsAllFields(t *testing.T) {
	message, err := notify.FormatNewRole(sampleRole())
	if err != nil {
		t.Fatalf("FormatNewRole returned unexpected error: %v", err)
	}

	for _, want := range []string{
		"Acme",
		"Software Engineer Intern",
		"https://example.com/acme",
		"New York, Remote",
		"Summer 2026",
		"Available",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("message missing %q:\n%s", want, message)
		}
	}
}

func TestFormatNewRole_FieldOrder(t *testing.T) {
	message, err := notify.FormatNewRole(sampleRole())
	if err != nil {
		t.Fatalf("FormatNewRole returned unexpected error: %v", err)
	}

	ordered := []string{"Acme", "Role:", "Location:", "Season:", "Sponsorship:", "Posted on:"}
	last := -1
	for _, marker := range ordered {
		idx := strings.Index(message, marker)
		if idx < 0 {
			t.Fatalf("message missing %q", marker)
		}
		if idx <= last {
			t.Errorf("%q appears out of order", marker)
		}
		last = idx
	}
}

func TestFormatNewRole_NoLocations(t *testing.T) {
	role := sampleRole()
	role.Locations = nil
	message, err := notify.FormatNewRole(role)
	if err != nil {
		t.Fatalf("FormatNewRole returned unexpected error: %v", err)
	}
	if !strings.Contains(message, "Not specified") {
		t.Error("empty location list should render as Not specified")
	}
}

func TestFormatNewRole_MissingRequiredFields(t *testing.T) {
	role := sampleRole()
	role.Company = ""
	if _, err := notify.FormatNewRole(role); err == nil {
		t.Error("expected error for missing company")
	}

	role = sampleRole()
	role.Title = ""
	if _, err := notify.FormatNewRole(role); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestFormatDeactivation(t *testing.T) {
	message := notify.FormatDeactivation(sampleRole())
	for _, want := range []string{"Acme", "no longer active", "Software Engineer Intern", "Inactive"} {
		if !strings.Contains(message, want) {
			t.Errorf("deactivation message missing %q:\n%s", want, message)
		}
	}
}

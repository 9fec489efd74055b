package core

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercases", "Sourcing", "sourcing"},
		{"underscores to spaces", "role_details", "role details"},
		{"hyphens to spaces", "role-details", "role details"},
		{"punctuation to spaces", "offer, extended!", "offer extended"},
		{"symbols to spaces", "jobs@acme.com", "jobs acme com"},
		{"collapses whitespace", "  candidate   sourcing \t now ", "candidate sourcing now"},
		{"mixed separators", "Role_Details -- Review", "role details review"},
		{"only punctuation", "---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDedupeAliases_KeepsFirstLiteralForm(t *testing.T) {
	got := DedupeAliases([]string{"Role Details", "role-details", "role_details", "Sourcing"})
	want := []string{"Role Details", "Sourcing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeAliases = %v, want %v", got, want)
	}
}

func TestDedupeAliases_DropsEmptyKeys(t *testing.T) {
	got := DedupeAliases([]string{"", "---", "offer"})
	want := []string{"offer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeAliases = %v, want %v", got, want)
	}
}

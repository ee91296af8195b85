package locality

import (
	"reflect"
	"testing"

	"github.com/klabast/wb-services/kalender-parser/internal/config"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver(nil)

	tests := []struct {
		name     string
		text     string
		page     int
		expected string
	}{
		{
			name:     "title line with district",
			text:     "Stadt Winterberg\nAbfall-Kalender 2026 Siedlinghausen\nJanuar Februar",
			page:     1,
			expected: "Siedlinghausen",
		},
		{
			name:     "district with trailing spaces",
			text:     "Abfall-Kalender 2026 Züschen   \nweiter",
			page:     2,
			expected: "Züschen",
		},
		{
			name:     "title at end of text without newline",
			text:     "Kopfzeile\nAbfall-Kalender 2026 Silbach",
			page:     3,
			expected: "Silbach",
		},
		{
			name:     "multi word district",
			text:     "Abfall-Kalender 2026 Neuastenberg / Langewiese\n",
			page:     4,
			expected: "Neuastenberg / Langewiese",
		},
		{
			name:     "missing title falls back to page name",
			text:     "Legende\nRestmüll Biotonne",
			page:     0,
			expected: "Seite_0",
		},
		{
			name:     "empty text falls back to page name",
			text:     "",
			page:     7,
			expected: "Seite_7",
		},
		{
			name:     "year must be four digits",
			text:     "Abfall-Kalender 26 Winterberg\n",
			page:     5,
			expected: "Seite_5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.text, tt.page)
			if got != tt.expected {
				t.Errorf("Resolve(page %d) = %q, want %q", tt.page, got, tt.expected)
			}
		})
	}
}

func TestTargets(t *testing.T) {
	resolver := NewResolver(config.Default().Expansion)

	tests := []struct {
		name     string
		resolved string
		expected []string
	}{
		{
			name:     "plain district maps to itself",
			resolved: "Winterberg",
			expected: []string{"Winterberg"},
		},
		{
			name:     "expansion key matches exactly",
			resolved: "Neuastenberg",
			expected: []string{"Langewiese", "Mollseifen", "Neuastenberg", "Hoheleye"},
		},
		{
			name:     "expansion key matches by containment",
			resolved: "Neuastenberg / Langewiese",
			expected: []string{"Langewiese", "Mollseifen", "Neuastenberg", "Hoheleye"},
		},
		{
			name:     "fallback page name maps to itself",
			resolved: "Seite_3",
			expected: []string{"Seite_3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Targets(tt.resolved)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Targets(%q) = %v, want %v", tt.resolved, got, tt.expected)
			}
		})
	}
}

func TestExpands(t *testing.T) {
	resolver := NewResolver(config.Default().Expansion)

	if !resolver.Expands("Neuastenberg") {
		t.Error("Expected Neuastenberg to expand")
	}
	if resolver.Expands("Winterberg") {
		t.Error("Expected Winterberg not to expand")
	}
}

package locality

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// namePattern matches the calendar title line, e.g.
// "Abfall-Kalender 2026 Siedlinghausen".
var namePattern = regexp.MustCompile(`Abfall-Kalender\s+\d{4}\s+(.+?)(?:\n|$)`)

// Resolver extracts the district name from page text and expands
// combined pages into their member districts.
type Resolver struct {
	expansion map[string][]string
}

// NewResolver creates a resolver with the given expansion table.
func NewResolver(expansion map[string][]string) *Resolver {
	return &Resolver{expansion: expansion}
}

// Resolve returns the district name printed on the page. When the title
// line is missing (covers, scans without a text layer) it falls back to
// a synthetic name from the 0-based page index, so a page's events are
// never dropped, at worst mislabeled.
func (r *Resolver) Resolve(text string, page int) string {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fmt.Sprintf("Seite_%d", page)
}

// Targets returns the district names a resolved page writes to.
// Expansion keys match by substring containment: a combined page titled
// "Neuastenberg / Langewiese" still expands. Names without a matching
// key map to themselves. Keys are tried in sorted order so multi-key
// tables resolve deterministically.
func (r *Resolver) Targets(name string) []string {
	keys := make([]string, 0, len(r.expansion))
	for key := range r.expansion {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(name, key) {
			return r.expansion[key]
		}
	}
	return []string{name}
}

// Expands reports whether the name triggers the expansion table.
func (r *Resolver) Expands(name string) bool {
	targets := r.Targets(name)
	return len(targets) != 1 || targets[0] != name
}

package verify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
)

// NameMatch records how a reference district name was located among the
// parsed district names.
type NameMatch struct {
	Expected string  `yaml:"expected,omitempty"`
	Actual   string  `yaml:"actual,omitempty"`
	Score    float64 `yaml:"score"`
	Method   string  `yaml:"method"`
	Distance int     `yaml:"distance"`
}

// TypeMetrics holds the date-set comparison for one waste type.
type TypeMetrics struct {
	Type           string  `yaml:"type"`
	Expected       int     `yaml:"expected"`
	Parsed         int     `yaml:"parsed"`
	TruePositives  int     `yaml:"true_positives"`
	FalsePositives int     `yaml:"false_positives"`
	FalseNegatives int     `yaml:"false_negatives"`
	Precision      float64 `yaml:"precision"`
	Recall         float64 `yaml:"recall"`
	F1             float64 `yaml:"f1"`
}

// DistrictResult is the comparison outcome for one district.
type DistrictResult struct {
	District  string             `yaml:"district"`
	Name      NameMatch          `yaml:"name_match"`
	Types     []TypeMetrics      `yaml:"types,omitempty"`
	Expected  int                `yaml:"expected_events"`
	Parsed    int                `yaml:"parsed_events"`
	Precision float64            `yaml:"precision"`
	Recall    float64            `yaml:"recall"`
	F1        float64            `yaml:"f1"`
	Warnings  []PlausibilityFlag `yaml:"warnings,omitempty"`
}

// CompareDocument matches every reference district against the parsed
// document and scores the event sets. Reference districts without a
// plausible parsed counterpart come back as "missing"; parsed districts
// absent from the reference as "no_reference".
func CompareDocument(doc *calendar.Document, reference map[string][]calendar.Event) []DistrictResult {
	expectedNames := sortedKeys(reference)
	parsedNames := make([]string, 0, len(doc.Districts))
	for name := range doc.Districts {
		parsedNames = append(parsedNames, name)
	}
	sort.Strings(parsedNames)

	consumed := make(map[string]bool, len(parsedNames))
	results := make([]DistrictResult, 0, len(expectedNames))

	for _, expected := range expectedNames {
		match := bestMatch(expected, parsedNames, consumed)

		var parsedEvents []calendar.Event
		if match.Method != "missing" {
			consumed[match.Actual] = true
			parsedEvents = doc.Districts[match.Actual].Events
		}

		result := buildResult(expected, match, reference[expected], parsedEvents)
		result.Warnings = CheckPlausibility(doc.Year, parsedEvents)
		results = append(results, result)
	}

	for _, parsed := range parsedNames {
		if consumed[parsed] {
			continue
		}
		match := NameMatch{Actual: parsed, Method: "no_reference"}
		result := buildResult(parsed, match, nil, doc.Districts[parsed].Events)
		result.Warnings = CheckPlausibility(doc.Year, doc.Districts[parsed].Events)
		results = append(results, result)
	}

	return results
}

// bestMatch picks the highest-scoring unconsumed parsed name for the
// expected district. Anything below fuzzy_medium quality counts as
// missing rather than forcing a bad pairing.
func bestMatch(expected string, parsedNames []string, consumed map[string]bool) NameMatch {
	best := NameMatch{Expected: expected, Method: "missing"}
	for _, parsed := range parsedNames {
		if consumed[parsed] {
			continue
		}
		match := MatchDistrictName(expected, parsed)
		if match.Method == "no_match" {
			continue
		}
		if match.Score > best.Score || best.Method == "missing" {
			best = match
		}
	}
	return best
}

func buildResult(district string, match NameMatch, expected, parsed []calendar.Event) DistrictResult {
	result := DistrictResult{
		District: district,
		Name:     match,
		Types:    CompareEvents(expected, parsed),
		Expected: len(expected),
		Parsed:   len(parsed),
	}

	var tp, fp, fn int
	for _, tm := range result.Types {
		tp += tm.TruePositives
		fp += tm.FalsePositives
		fn += tm.FalseNegatives
	}
	result.Precision, result.Recall, result.F1 = scores(tp, fp, fn)
	return result
}

// CompareEvents computes per-type date-set metrics between expected and
// parsed events. Dates are compared as sets, so duplicates cannot
// inflate the scores.
func CompareEvents(expected, parsed []calendar.Event) []TypeMetrics {
	expectedSets := dateSets(expected)
	parsedSets := dateSets(parsed)

	types := make(map[string]bool)
	for t := range expectedSets {
		types[t] = true
	}
	for t := range parsedSets {
		types[t] = true
	}

	metrics := make([]TypeMetrics, 0, len(types))
	for _, t := range sortedKeys(types) {
		tm := TypeMetrics{
			Type:     t,
			Expected: len(expectedSets[t]),
			Parsed:   len(parsedSets[t]),
		}
		for date := range parsedSets[t] {
			if expectedSets[t][date] {
				tm.TruePositives++
			} else {
				tm.FalsePositives++
			}
		}
		for date := range expectedSets[t] {
			if !parsedSets[t][date] {
				tm.FalseNegatives++
			}
		}
		tm.Precision, tm.Recall, tm.F1 = scores(tm.TruePositives, tm.FalsePositives, tm.FalseNegatives)
		metrics = append(metrics, tm)
	}

	return metrics
}

func dateSets(events []calendar.Event) map[string]map[string]bool {
	sets := make(map[string]map[string]bool)
	for _, event := range events {
		if sets[event.Type] == nil {
			sets[event.Type] = make(map[string]bool)
		}
		sets[event.Type][event.Date] = true
	}
	return sets
}

func scores(tp, fp, fn int) (precision, recall, f1 float64) {
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// MatchDistrictName scores how well a parsed name stands in for the
// expected one.
func MatchDistrictName(expected, actual string) NameMatch {
	match := NameMatch{
		Expected: expected,
		Actual:   actual,
	}

	expNorm := normalizeName(expected)
	actNorm := normalizeName(actual)

	if actNorm == "" {
		match.Score = 0.0
		match.Distance = len([]rune(expNorm))
		match.Method = "missing"
		return match
	}

	distance := levenshteinDistance(expNorm, actNorm)
	match.Distance = distance

	if expNorm == actNorm {
		match.Score = 1.0
		match.Method = "exact"
		return match
	}

	if strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm) {
		match.Score = 0.9
		match.Method = "substring"
		return match
	}

	maxLen := max(len([]rune(expNorm)), len([]rune(actNorm)))
	similarity := 1.0 - float64(distance)/float64(maxLen)
	match.Score = similarity

	if similarity > 0.9 {
		match.Method = "fuzzy_high"
	} else if similarity > 0.7 {
		match.Method = "fuzzy_medium"
	} else {
		match.Method = "no_match"
	}

	return match
}

var namePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// normalizeName lowercases, strips punctuation and collapses
// whitespace. Umlauts and other letters survive the stripping.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = namePunct.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// levenshteinDistance works on runes so multi-byte German letters count
// as single edits.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	rows := len(r1) + 1
	cols := len(r2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
	}

	for i := 0; i < rows; i++ {
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			matrix[i][j] = min(deletion, min(insertion, substitution))
		}
	}

	return matrix[rows-1][cols-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

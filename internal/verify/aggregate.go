package verify

import (
	"fmt"
	"sort"
	"time"
)

// Summary aggregates a verification run across districts.
type Summary struct {
	VerifiedAt          string  `yaml:"verified_at"`
	TotalDistricts      int     `yaml:"total_districts"`
	MatchedDistricts    int     `yaml:"matched_districts"`
	MissingDistricts    int     `yaml:"missing_districts"`
	UnexpectedDistricts int     `yaml:"unexpected_districts"`
	ExpectedEvents      int     `yaml:"expected_events"`
	ParsedEvents        int     `yaml:"parsed_events"`
	TruePositives       int     `yaml:"true_positives"`
	FalsePositives      int     `yaml:"false_positives"`
	FalseNegatives      int     `yaml:"false_negatives"`
	Precision           float64 `yaml:"precision"`
	Recall              float64 `yaml:"recall"`
	F1                  float64 `yaml:"f1"`
	AvgEvents           float64 `yaml:"avg_events_per_district"`
	MedianEvents        float64 `yaml:"median_events_per_district"`
	MinEvents           int     `yaml:"min_events_per_district"`
	MaxEvents           int     `yaml:"max_events_per_district"`
	Warnings            int     `yaml:"plausibility_warnings"`
	ParseDuration       string  `yaml:"parse_duration"`
}

// Aggregate folds district results into a run summary. Precision and
// recall are micro-averaged over all (type, date) pairs.
func Aggregate(results []DistrictResult, parseDuration time.Duration) *Summary {
	summary := &Summary{
		VerifiedAt:    time.Now().Format("2006-01-02 15:04:05"),
		ParseDuration: parseDuration.Round(time.Millisecond).String(),
	}

	var tp, fp, fn int
	var eventCounts []int

	for _, result := range results {
		switch result.Name.Method {
		case "no_reference":
			summary.UnexpectedDistricts++
		case "missing":
			summary.TotalDistricts++
			summary.MissingDistricts++
		default:
			summary.TotalDistricts++
			summary.MatchedDistricts++
		}

		if result.Name.Method != "missing" {
			eventCounts = append(eventCounts, result.Parsed)
		}

		summary.ExpectedEvents += result.Expected
		summary.ParsedEvents += result.Parsed
		summary.Warnings += len(result.Warnings)

		for _, tm := range result.Types {
			tp += tm.TruePositives
			fp += tm.FalsePositives
			fn += tm.FalseNegatives
		}
	}

	summary.TruePositives = tp
	summary.FalsePositives = fp
	summary.FalseNegatives = fn
	summary.Precision, summary.Recall, summary.F1 = scores(tp, fp, fn)

	if len(eventCounts) > 0 {
		total := 0
		for _, count := range eventCounts {
			total += count
		}
		summary.AvgEvents = float64(total) / float64(len(eventCounts))

		sort.Ints(eventCounts)
		mid := len(eventCounts) / 2
		if len(eventCounts)%2 == 0 {
			summary.MedianEvents = float64(eventCounts[mid-1]+eventCounts[mid]) / 2
		} else {
			summary.MedianEvents = float64(eventCounts[mid])
		}
		summary.MinEvents = eventCounts[0]
		summary.MaxEvents = eventCounts[len(eventCounts)-1]
	}

	return summary
}

// PrintSummary writes the human-readable run summary to stdout.
func (s *Summary) PrintSummary() {
	fmt.Println("\n========================================")
	fmt.Println("Verification Summary")
	fmt.Println("========================================")
	fmt.Printf("Reference Districts: %d\n", s.TotalDistricts)
	fmt.Printf("Matched:             %d\n", s.MatchedDistricts)
	fmt.Printf("Missing:             %d\n", s.MissingDistricts)
	fmt.Printf("Unexpected:          %d\n", s.UnexpectedDistricts)
	fmt.Println()
	fmt.Printf("Expected Events:     %d\n", s.ExpectedEvents)
	fmt.Printf("Parsed Events:       %d\n", s.ParsedEvents)
	fmt.Printf("Precision:           %.2f%%\n", s.Precision*100)
	fmt.Printf("Recall:              %.2f%%\n", s.Recall*100)
	fmt.Printf("F1 Score:            %.2f%%\n", s.F1*100)
	fmt.Println()
	fmt.Println("Events per District:")
	fmt.Printf("  Average:           %.1f\n", s.AvgEvents)
	fmt.Printf("  Median:            %.1f\n", s.MedianEvents)
	fmt.Printf("  Min:               %d\n", s.MinEvents)
	fmt.Printf("  Max:               %d\n", s.MaxEvents)
	fmt.Println()
	fmt.Printf("Plausibility Warnings: %d\n", s.Warnings)
	fmt.Printf("Parse Duration:        %s\n", s.ParseDuration)
	fmt.Println("========================================")
}

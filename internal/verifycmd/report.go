package verifycmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/kalender-parser/internal/verify"
)

func executeReport(resultsPath, format string) error {
	result, err := verify.LoadResult(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(result)
	case "yaml":
		return printYAMLReport(result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(result *verify.RunResult) error {
	fmt.Println("========================================")
	fmt.Println("Calendar Verification Report")
	fmt.Println("========================================")
	fmt.Printf("PDF:        %s\n", result.Config.PDFPath)
	fmt.Printf("Reference:  %s\n", result.Config.ReferencePath)
	fmt.Printf("Year:       %d\n", result.Config.Year)
	fmt.Printf("DPI:        %d\n", result.Config.DPI)
	fmt.Printf("Timestamp:  %s\n", result.Config.Timestamp)

	if result.Summary != nil {
		result.Summary.PrintSummary()
	}

	fmt.Println("\nDetailed Results:")
	fmt.Println("========================================")

	for i, district := range result.Districts {
		fmt.Printf("\n[%d] District: %s\n", i+1, district.District)

		switch district.Name.Method {
		case "missing":
			fmt.Printf("  ❌ Missing: no parsed district matched (%d events expected)\n", district.Expected)
			continue
		case "no_reference":
			fmt.Printf("  ⚠️  No reference data for this parsed district (%d events parsed)\n", district.Parsed)
		case "exact":
			fmt.Printf("  Match:  exact\n")
		default:
			fmt.Printf("  Match:  %s as %q (score %.2f)\n", district.Name.Method, district.Name.Actual, district.Name.Score)
		}

		fmt.Printf("  Events: %d expected, %d parsed\n", district.Expected, district.Parsed)
		fmt.Printf("  Scores: P %.2f%%  R %.2f%%  F1 %.2f%%\n",
			district.Precision*100, district.Recall*100, district.F1*100)

		if len(district.Types) > 0 {
			fmt.Println("  Type Scores:")
			for _, tm := range district.Types {
				fmt.Printf("    %-14s P %6.2f%%  R %6.2f%%  F1 %6.2f%%  (%d expected, %d parsed)\n",
					tm.Type+":", tm.Precision*100, tm.Recall*100, tm.F1*100, tm.Expected, tm.Parsed)
			}
		}

		if len(district.Warnings) > 0 {
			fmt.Println("  Plausibility Warnings:")
			for _, warning := range district.Warnings {
				fmt.Printf("    ⚠️  %s %s: %s\n", warning.Date, warning.Type, warning.Reason)
			}
		}
	}

	return nil
}

func printYAMLReport(result *verify.RunResult) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(result)
}

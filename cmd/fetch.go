package cmd

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/kalender-parser/internal/fetch"
)

func newFetchCmd() *cobra.Command {
	var sourceURL string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a calendar PDF",
		Long: `Download the Abfall-Kalender PDF from the city website.

The download is verified to be a real PDF before it replaces anything:
placeholder HTML pages and truncated responses are rejected.`,
		Example: `  # Download next to the current directory
  kalender-parser fetch --url https://www.winterberg.de/fileadmin/kalender/abfall-kalender-2026.pdf

  # Download to an explicit path
  kalender-parser fetch --url https://example.org/kalender.pdf --output pdfs/2026.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				parsed, err := url.Parse(sourceURL)
				if err != nil {
					return fmt.Errorf("invalid URL: %w", err)
				}
				outputPath = path.Base(parsed.Path)
				if outputPath == "." || outputPath == "/" {
					outputPath = "abfall-kalender.pdf"
				}
			}

			fetcher := fetch.NewFetcher()
			if err := fetcher.Download(cmd.Context(), sourceURL, outputPath); err != nil {
				return fmt.Errorf("failed to download calendar: %w", err)
			}

			absPath, _ := filepath.Abs(outputPath)
			fmt.Printf("\n✅ Calendar PDF saved to: %s\n", absPath)
			fmt.Printf("\nParse it with:\n")
			fmt.Printf("  kalender-parser parse %s\n", outputPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURL, "url", "", "URL of the calendar PDF (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: URL file name)")

	_ = cmd.MarkFlagRequired("url")

	return cmd
}

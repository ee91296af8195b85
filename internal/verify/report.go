package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig records the inputs of a verification run.
type RunConfig struct {
	PDFPath       string `yaml:"pdf"`
	ReferencePath string `yaml:"reference"`
	Year          int    `yaml:"year"`
	DPI           int    `yaml:"dpi"`
	Concurrency   int    `yaml:"concurrency"`
	Timestamp     string `yaml:"timestamp"`
}

// RunResult is the complete persisted outcome of one verification run.
type RunResult struct {
	Config    RunConfig        `yaml:"config"`
	Summary   *Summary         `yaml:"summary"`
	Districts []DistrictResult `yaml:"districts"`
}

// Save writes the result as YAML. An empty path picks a timestamped
// file under verifications/. Returns the path written.
func (r *RunResult) Save(path string) (string, error) {
	if path == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		path = filepath.Join("verifications", fmt.Sprintf("verify-%s.yaml", timestamp))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("\n✅ Verification results saved to: %s\n", absPath)
	return path, nil
}

// LoadResult reads a previously saved verification result.
func LoadResult(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var result RunResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &result, nil
}

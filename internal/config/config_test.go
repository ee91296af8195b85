package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Signatures) != 4 {
		t.Errorf("Expected 4 color signatures, got %d", len(cfg.Signatures))
	}

	if len(cfg.Districts) != 14 {
		t.Errorf("Expected 14 districts, got %d", len(cfg.Districts))
	}

	targets := cfg.Expansion["Neuastenberg"]
	if len(targets) != 4 {
		t.Fatalf("Expected 4 expansion targets for Neuastenberg, got %d", len(targets))
	}
	if targets[0] != "Langewiese" || targets[3] != "Hoheleye" {
		t.Errorf("Unexpected expansion targets: %v", targets)
	}

	det := cfg.Detection
	if det.MinRowBoundaries != 30 || det.MinColBoundaries != 10 {
		t.Errorf("Expected boundary minimums 30/10, got %d/%d",
			det.MinRowBoundaries, det.MinColBoundaries)
	}
	if det.MinPictogramArea != 100 || det.MaxPictogramArea != 15000 {
		t.Errorf("Expected area bounds 100/15000, got %v/%v",
			det.MinPictogramArea, det.MaxPictogramArea)
	}
}

func TestDescriptionFallback(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name      string
		wasteType string
		expected  string
	}{
		{
			name:      "known type",
			wasteType: "restmuell",
			expected:  "Restmüll",
		},
		{
			name:      "known type with umlaut-free key",
			wasteType: "gelber_sack",
			expected:  "Gelber Sack",
		},
		{
			name:      "unknown type falls back to identifier",
			wasteType: "weihnachtsbaum",
			expected:  "weihnachtsbaum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.Description(tt.wasteType)
			if got != tt.expected {
				t.Errorf("Description(%q) = %q, want %q", tt.wasteType, got, tt.expected)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
detection:
  min_line_length: 400
  max_aspect_ratio: 4
expansion:
  Neuastenberg:
    - Langewiese
    - Neuastenberg
  Winterberg:
    - Winterberg
    - Elkeringhausen
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Detection.MinLineLength != 400 {
		t.Errorf("Expected MinLineLength=400, got %v", cfg.Detection.MinLineLength)
	}
	if cfg.Detection.MaxAspectRatio != 4 {
		t.Errorf("Expected MaxAspectRatio=4, got %v", cfg.Detection.MaxAspectRatio)
	}

	// Values absent from the file keep their defaults.
	if cfg.Detection.MinRowBoundaries != 30 {
		t.Errorf("Expected default MinRowBoundaries=30, got %d", cfg.Detection.MinRowBoundaries)
	}
	if len(cfg.Signatures) != 4 {
		t.Errorf("Expected default signatures untouched, got %d", len(cfg.Signatures))
	}

	if len(cfg.Expansion["Neuastenberg"]) != 2 {
		t.Errorf("Expected overridden expansion with 2 targets, got %v",
			cfg.Expansion["Neuastenberg"])
	}
	if len(cfg.Expansion["Winterberg"]) != 2 {
		t.Errorf("Expected added expansion key, got %v", cfg.Expansion["Winterberg"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}
	if len(cfg.Districts) != 14 {
		t.Errorf("Expected defaults for empty path, got %d districts", len(cfg.Districts))
	}
}

func TestScaledFor(t *testing.T) {
	det := Default().Detection

	scaled := det.ScaledFor(600)

	if scaled.MinLineLength != 1000 {
		t.Errorf("Expected MinLineLength=1000 at 600 DPI, got %v", scaled.MinLineLength)
	}
	if scaled.ClusterDistance != 20 {
		t.Errorf("Expected ClusterDistance=20 at 600 DPI, got %v", scaled.ClusterDistance)
	}
	if scaled.MinPictogramArea != 400 {
		t.Errorf("Expected MinPictogramArea=400 at 600 DPI, got %v", scaled.MinPictogramArea)
	}
	if scaled.MaxPictogramArea != 60000 {
		t.Errorf("Expected MaxPictogramArea=60000 at 600 DPI, got %v", scaled.MaxPictogramArea)
	}

	// Resolution-independent knobs stay put.
	if scaled.HoughThreshold != det.HoughThreshold {
		t.Errorf("Expected HoughThreshold unchanged, got %d", scaled.HoughThreshold)
	}
	if scaled.MinRowBoundaries != det.MinRowBoundaries {
		t.Errorf("Expected MinRowBoundaries unchanged, got %d", scaled.MinRowBoundaries)
	}
}

func TestScaledForIdentity(t *testing.T) {
	det := Default().Detection

	if got := det.ScaledFor(300); got != det {
		t.Errorf("Expected ScaledFor(300) to be identity, got %+v", got)
	}
	if got := det.ScaledFor(0); got != det {
		t.Errorf("Expected ScaledFor(0) to be identity, got %+v", got)
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HSVBound is one end of an inclusive HSV range, in OpenCV scale
// (hue 0-180, saturation and value 0-255).
type HSVBound struct {
	H float64 `yaml:"h"`
	S float64 `yaml:"s"`
	V float64 `yaml:"v"`
}

// ColorSignature binds a waste type to the HSV range its calendar
// pictograms are printed in.
type ColorSignature struct {
	Type  string   `yaml:"type"`
	Lower HSVBound `yaml:"lower"`
	Upper HSVBound `yaml:"upper"`
}

// Detection carries the tunable thresholds of the page analysis.
// Pixel-based defaults are calibrated against a 300 DPI render of the
// source document; use ScaledFor when rendering at a different DPI.
type Detection struct {
	DPI              int     `yaml:"dpi"`
	CannyLow         float32 `yaml:"canny_low"`
	CannyHigh        float32 `yaml:"canny_high"`
	HoughThreshold   int     `yaml:"hough_threshold"`
	MinLineLength    float64 `yaml:"min_line_length"`
	MaxLineGap       float64 `yaml:"max_line_gap"`
	AxisTolerance    float64 `yaml:"axis_tolerance"`
	ClusterDistance  float64 `yaml:"cluster_distance"`
	MinRowBoundaries int     `yaml:"min_row_boundaries"`
	MinColBoundaries int     `yaml:"min_col_boundaries"`
	MinPictogramArea float64 `yaml:"min_pictogram_area"`
	MaxPictogramArea float64 `yaml:"max_pictogram_area"`
	MaxAspectRatio   float64 `yaml:"max_aspect_ratio"`
}

// Config holds every lookup table and threshold the pipeline uses.
// All of it is data: adding a waste type or a district is a config
// change, not a code change.
type Config struct {
	Signatures   []ColorSignature    `yaml:"signatures"`
	Descriptions map[string]string   `yaml:"descriptions"`
	Districts    []string            `yaml:"districts"`
	Expansion    map[string][]string `yaml:"expansion"`
	Detection    Detection           `yaml:"detection"`
}

// Default returns the built-in configuration calibrated against the
// Winterberg Abfall-Kalender print layout.
func Default() *Config {
	return &Config{
		Signatures: []ColorSignature{
			{
				Type:  "restmuell",
				Lower: HSVBound{H: 0, S: 0, V: 115},
				Upper: HSVBound{H: 180, S: 50, V: 140},
			},
			{
				Type:  "biotonne",
				Lower: HSVBound{H: 35, S: 100, V: 100},
				Upper: HSVBound{H: 85, S: 255, V: 255},
			},
			{
				Type:  "papiertonne",
				Lower: HSVBound{H: 90, S: 200, V: 200},
				Upper: HSVBound{H: 110, S: 255, V: 255},
			},
			{
				Type:  "gelber_sack",
				Lower: HSVBound{H: 20, S: 100, V: 100},
				Upper: HSVBound{H: 35, S: 255, V: 255},
			},
		},
		Descriptions: map[string]string{
			"restmuell":   "Restmüll",
			"biotonne":    "Biotonne",
			"papiertonne": "Papiertonne",
			"gelber_sack": "Gelber Sack",
			"sondermuell": "Sondermüll",
			"altkleider":  "Altkleider",
		},
		Districts: []string{
			"Winterberg",
			"Siedlinghausen",
			"Züschen",
			"Silbach",
			"Niedersfeld",
			"Langewiese",
			"Mollseifen",
			"Neuastenberg",
			"Hoheleye",
			"Grönebach",
			"Hildfeld",
			"Elkeringhausen",
			"Altastenberg",
			"Altenfeld",
		},
		Expansion: map[string][]string{
			"Neuastenberg": {"Langewiese", "Mollseifen", "Neuastenberg", "Hoheleye"},
		},
		Detection: Detection{
			DPI:              300,
			CannyLow:         30,
			CannyHigh:        100,
			HoughThreshold:   100,
			MinLineLength:    500,
			MaxLineGap:       10,
			AxisTolerance:    10,
			ClusterDistance:  10,
			MinRowBoundaries: 30,
			MinColBoundaries: 10,
			MinPictogramArea: 100,
			MaxPictogramArea: 15000,
			MaxAspectRatio:   3,
		},
	}
}

// Load reads a YAML file over the defaults. Values present in the file
// replace the built-ins; everything else keeps its default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Description returns the display name for a waste type. Unknown types
// fall back to the identifier itself so they still serialize.
func (c *Config) Description(wasteType string) string {
	if desc, ok := c.Descriptions[wasteType]; ok {
		return desc
	}
	return wasteType
}

// ScaledFor rescales the pixel-based thresholds from the calibration
// DPI to the given render DPI. Lengths scale linearly, areas
// quadratically. Boundary-count minimums and Canny/Hough sensitivity
// are resolution independent and stay untouched.
func (d Detection) ScaledFor(dpi int) Detection {
	if dpi <= 0 || dpi == d.DPI {
		return d
	}

	factor := float64(dpi) / float64(d.DPI)
	scaled := d
	scaled.DPI = dpi
	scaled.MinLineLength = d.MinLineLength * factor
	scaled.MaxLineGap = d.MaxLineGap * factor
	scaled.AxisTolerance = d.AxisTolerance * factor
	scaled.ClusterDistance = d.ClusterDistance * factor
	scaled.MinPictogramArea = d.MinPictogramArea * factor * factor
	scaled.MaxPictogramArea = d.MaxPictogramArea * factor * factor
	return scaled
}

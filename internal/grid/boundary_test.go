package grid

import (
	"reflect"
	"testing"
)

func TestClusterPositions(t *testing.T) {
	tests := []struct {
		name     string
		values   []int
		distance float64
		expected []int
	}{
		{
			name:     "empty input",
			values:   nil,
			distance: 10,
			expected: nil,
		},
		{
			name:     "single value",
			values:   []int{42},
			distance: 10,
			expected: []int{42},
		},
		{
			name:     "near duplicates collapse to mean",
			values:   []int{100, 103, 98, 400, 404},
			distance: 10,
			expected: []int{100, 402},
		},
		{
			name:     "unsorted input is sorted first",
			values:   []int{500, 100, 300},
			distance: 10,
			expected: []int{100, 300, 500},
		},
		{
			name:     "chained values merge into one cluster",
			values:   []int{0, 9, 18, 27},
			distance: 10,
			expected: []int{13},
		},
		{
			name:     "gap at threshold starts a new cluster",
			values:   []int{0, 10},
			distance: 10,
			expected: []int{0, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clusterPositions(tt.values, tt.distance)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("clusterPositions(%v, %v) = %v, want %v",
					tt.values, tt.distance, got, tt.expected)
			}
		})
	}
}

func TestClusterPositionsIdempotent(t *testing.T) {
	values := []int{3, 7, 12, 55, 58, 120, 127, 133, 300}

	once := clusterPositions(values, 10)
	twice := clusterPositions(once, 10)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Clustering not idempotent: first %v, second %v", once, twice)
	}
}

func TestBoundarySetCell(t *testing.T) {
	boundaries := BoundarySet{
		Horizontal: []int{0, 100, 200, 300},
		Vertical:   []int{0, 500, 1000, 1500},
	}

	tests := []struct {
		name          string
		x, y          int
		expectedMonth int
		expectedDay   int
	}{
		{
			name:          "second column second row",
			x:             510,
			y:             150,
			expectedMonth: 2,
			expectedDay:   1,
		},
		{
			name:          "first column header row",
			x:             10,
			y:             50,
			expectedMonth: 1,
			expectedDay:   0,
		},
		{
			name:          "exactly on a boundary belongs to the upper interval",
			x:             500,
			y:             100,
			expectedMonth: 2,
			expectedDay:   1,
		},
		{
			name:          "beyond last boundary clamps to final interval",
			x:             2000,
			y:             9999,
			expectedMonth: 3,
			expectedDay:   2,
		},
		{
			name:          "at last boundary clamps to final interval",
			x:             1500,
			y:             300,
			expectedMonth: 3,
			expectedDay:   2,
		},
		{
			name:          "before first boundary maps to index zero",
			x:             -5,
			y:             -5,
			expectedMonth: 1,
			expectedDay:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, err := boundaries.Cell(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Cell(%d, %d) returned error: %v", tt.x, tt.y, err)
			}
			if cell.Month != tt.expectedMonth {
				t.Errorf("Expected month %d, got %d", tt.expectedMonth, cell.Month)
			}
			if cell.Day != tt.expectedDay {
				t.Errorf("Expected day %d, got %d", tt.expectedDay, cell.Day)
			}
		})
	}
}

func TestBoundarySetCellMonotonic(t *testing.T) {
	boundaries := BoundarySet{
		Horizontal: []int{0, 90, 180, 270, 360},
		Vertical:   []int{0, 150, 300, 450},
	}

	prevMonth := 0
	for x := -20; x <= 600; x += 7 {
		cell, err := boundaries.Cell(x, 50)
		if err != nil {
			t.Fatalf("Cell(%d, 50) returned error: %v", x, err)
		}
		if cell.Month < prevMonth {
			t.Fatalf("Month not monotonic at x=%d: %d after %d", x, cell.Month, prevMonth)
		}
		prevMonth = cell.Month
	}

	prevDay := 0
	for y := -20; y <= 500; y += 7 {
		cell, err := boundaries.Cell(50, y)
		if err != nil {
			t.Fatalf("Cell(50, %d) returned error: %v", y, err)
		}
		if cell.Day < prevDay {
			t.Fatalf("Day not monotonic at y=%d: %d after %d", y, cell.Day, prevDay)
		}
		prevDay = cell.Day
	}
}

func TestBoundarySetCellTooSmall(t *testing.T) {
	tests := []struct {
		name       string
		boundaries BoundarySet
	}{
		{
			name:       "single vertical boundary",
			boundaries: BoundarySet{Horizontal: []int{0, 100}, Vertical: []int{0}},
		},
		{
			name:       "empty horizontal boundaries",
			boundaries: BoundarySet{Horizontal: nil, Vertical: []int{0, 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.boundaries.Cell(50, 50); err == nil {
				t.Error("Expected error for undersized boundary set, got nil")
			}
		})
	}
}

func TestBoundarySetValid(t *testing.T) {
	full := BoundarySet{
		Horizontal: make([]int, 33),
		Vertical:   make([]int, 13),
	}
	if !full.Valid(30, 10) {
		t.Error("Expected full grid to be valid")
	}

	sparse := BoundarySet{
		Horizontal: make([]int, 5),
		Vertical:   make([]int, 13),
	}
	if sparse.Valid(30, 10) {
		t.Error("Expected sparse grid to be invalid")
	}
}

func TestCellInCalendar(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		expected bool
	}{
		{"normal date", Cell{Month: 3, Day: 14}, true},
		{"header row", Cell{Month: 3, Day: 0}, false},
		{"month too high", Cell{Month: 13, Day: 5}, false},
		{"month too low", Cell{Month: 0, Day: 5}, false},
		{"day too high", Cell{Month: 5, Day: 32}, false},
		{"last valid day", Cell{Month: 12, Day: 31}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.InCalendar(); got != tt.expected {
				t.Errorf("InCalendar(%+v) = %v, want %v", tt.cell, got, tt.expected)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	cell := Cell{Month: 3, Day: 7}
	if got := cell.String(); got != "3.7" {
		t.Errorf("Expected unpadded \"3.7\", got %q", got)
	}
}

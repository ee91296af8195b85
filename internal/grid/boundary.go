package grid

import (
	"fmt"
	"sort"
)

// BoundarySet holds the clustered separator line positions of one
// calendar page. Both lists are ascending and deduplicated; consecutive
// entries define the closed-open cell interval [b[i], b[i+1]).
type BoundarySet struct {
	Horizontal []int // row separators, y positions
	Vertical   []int // column separators, x positions
}

// Valid reports whether the geometry looks like a full calendar grid.
// Pages that fail this are covers, legends or info pages and get skipped.
func (b BoundarySet) Valid(minRows, minCols int) bool {
	return len(b.Horizontal) >= minRows && len(b.Vertical) >= minCols
}

// Cell is a calendar grid position. Month is the 1-based column. Day is
// the raw row index: row 0 is the weekday header and never a collection
// day, so callers filter on InCalendar before building events.
type Cell struct {
	Month int
	Day   int
}

// InCalendar reports whether the cell denotes a plausible collection
// date. Header rows and out-of-range columns fail this silently.
func (c Cell) InCalendar() bool {
	return c.Month >= 1 && c.Month <= 12 && c.Day >= 1 && c.Day <= 31
}

func (c Cell) String() string {
	return fmt.Sprintf("%d.%d", c.Month, c.Day)
}

// Cell maps a pictogram centroid to its calendar cell. A coordinate at
// or beyond the last boundary clamps into the final interval; one
// before the first boundary maps to index 0.
func (b BoundarySet) Cell(x, y int) (Cell, error) {
	if len(b.Vertical) < 2 || len(b.Horizontal) < 2 {
		return Cell{}, fmt.Errorf("boundary set too small: %d vertical, %d horizontal",
			len(b.Vertical), len(b.Horizontal))
	}

	return Cell{
		Month: intervalIndex(b.Vertical, x) + 1,
		Day:   intervalIndex(b.Horizontal, y),
	}, nil
}

// intervalIndex finds the interval [positions[i], positions[i+1])
// containing p. Beyond the last boundary it clamps to the final
// interval; below the first it stays at 0.
func intervalIndex(positions []int, p int) int {
	for i := 0; i < len(positions)-1; i++ {
		if positions[i] <= p && p < positions[i+1] {
			return i
		}
	}
	if p >= positions[len(positions)-1] {
		return len(positions) - 2
	}
	return 0
}

// clusterPositions collapses raw line hits into canonical boundary
// positions: sort, chain values whose gap to the previous cluster
// member is under the merge distance, represent each chain by its
// integer mean. Clustering an already clustered list is a no-op.
func clusterPositions(values []int, distance float64) []int {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	var clusters [][]int
	current := []int{sorted[0]}
	for _, v := range sorted[1:] {
		if float64(v-current[len(current)-1]) < distance {
			current = append(current, v)
		} else {
			clusters = append(clusters, current)
			current = []int{v}
		}
	}
	clusters = append(clusters, current)

	out := make([]int, 0, len(clusters))
	for _, cluster := range clusters {
		sum := 0
		for _, v := range cluster {
			sum += v
		}
		out = append(out, sum/len(cluster))
	}
	sort.Ints(out)
	return out
}

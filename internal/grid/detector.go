package grid

import (
	"math"

	"gocv.io/x/gocv"

	"github.com/klabast/wb-services/kalender-parser/internal/config"
)

// Detector finds the table grid of a rendered calendar page.
type Detector struct {
	det config.Detection
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(det config.Detection) *Detector {
	return &Detector{det: det}
}

// Segment is one raw line segment reported by the Hough transform.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Detect runs edge detection and a probabilistic Hough transform over
// the page image and returns the clustered grid boundaries. An image
// without table lines yields empty lists, which downstream code treats
// as "not a calendar page", not as an error.
func (d *Detector) Detect(img gocv.Mat) BoundarySet {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, d.det.CannyLow, d.det.CannyHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, d.det.HoughThreshold,
		float32(d.det.MinLineLength), float32(d.det.MaxLineGap))

	segments := make([]Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		l := lines.GetVeciAt(i, 0)
		segments = append(segments, Segment{
			X1: int(l[0]), Y1: int(l[1]),
			X2: int(l[2]), Y2: int(l[3]),
		})
	}

	return boundariesFromSegments(segments, d.det)
}

// boundariesFromSegments classifies segments by axis and clusters the
// hit positions. A segment counts as horizontal when its vertical
// extent is inside the axis tolerance and its horizontal extent exceeds
// the minimum line length; vertical is symmetric. Diagonals and short
// noise match neither and are dropped.
func boundariesFromSegments(segments []Segment, det config.Detection) BoundarySet {
	var hPositions, vPositions []int
	for _, s := range segments {
		dx := abs(s.X2 - s.X1)
		dy := abs(s.Y2 - s.Y1)

		if float64(dy) < det.AxisTolerance && float64(dx) > det.MinLineLength {
			hPositions = append(hPositions, (s.Y1+s.Y2)/2)
		}
		if float64(dx) < det.AxisTolerance && float64(dy) > det.MinLineLength {
			vPositions = append(vPositions, (s.X1+s.X2)/2)
		}
	}

	return BoundarySet{
		Horizontal: clusterPositions(hPositions, det.ClusterDistance),
		Vertical:   clusterPositions(vPositions, det.ClusterDistance),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package pictogram

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/klabast/wb-services/kalender-parser/internal/config"
)

// Locator finds the pictogram centroids of one waste type on a page
// image by segmenting the type's print color.
type Locator struct {
	det config.Detection
}

// NewLocator creates a locator with the given thresholds.
func NewLocator(det config.Detection) *Locator {
	return &Locator{det: det}
}

// Locate returns the centroid of every compact region whose color falls
// inside the signature's HSV range. Oversized, undersized and stretched
// regions are rejected; the aspect filter is what keeps background
// color bands out even when their area passes.
func (l *Locator) Locate(img gocv.Mat, sig config.ColorSignature) []image.Point {
	mask := l.Mask(img, sig)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var centroids []image.Point
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area <= l.det.MinPictogramArea || area >= l.det.MaxPictogramArea {
			continue
		}

		rect := gocv.BoundingRect(contour)
		if aspectRatio(rect.Dx(), rect.Dy()) >= l.det.MaxAspectRatio {
			continue
		}

		if cx, cy, ok := polygonCentroid(contour.ToPoints()); ok {
			centroids = append(centroids, image.Point{X: cx, Y: cy})
		}
	}

	return centroids
}

// Mask builds the cleaned binary mask for a color signature: HSV
// in-range segmentation followed by a morphological open and close with
// a 3x3 element to drop speckle and bridge small gaps. The caller owns
// the returned Mat.
func (l *Locator) Mask(img gocv.Mat, sig config.ColorSignature) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	lower := gocv.NewScalar(sig.Lower.H, sig.Lower.S, sig.Lower.V, 0)
	upper := gocv.NewScalar(sig.Upper.H, sig.Upper.S, sig.Upper.V, 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(mask, &opened, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(opened, &mask, gocv.MorphClose, kernel)

	return mask
}

// aspectRatio is max(w,h)/min(w,h). Degenerate boxes report an
// effectively unbounded ratio so they never pass the compactness filter.
func aspectRatio(w, h int) float64 {
	if w <= 0 || h <= 0 {
		return 999
	}
	if w > h {
		return float64(w) / float64(h)
	}
	return float64(h) / float64(w)
}

// polygonCentroid computes a contour's centroid from its area moments
// (Green's theorem over the closed polygon). Zero-mass contours are
// degenerate and report ok=false.
func polygonCentroid(points []image.Point) (cx, cy int, ok bool) {
	if len(points) < 3 {
		return 0, 0, false
	}

	var m00, m10, m01 float64
	for i := range points {
		p := points[i]
		q := points[(i+1)%len(points)]
		cross := float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
		m00 += cross
		m10 += (float64(p.X) + float64(q.X)) * cross
		m01 += (float64(p.Y) + float64(q.Y)) * cross
	}
	m00 /= 2
	m10 /= 6
	m01 /= 6

	if m00 == 0 {
		return 0, 0, false
	}
	return int(m10 / m00), int(m01 / m00), true
}

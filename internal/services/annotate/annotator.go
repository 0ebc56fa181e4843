package annotate

import (
	"fmt"
	"image"
	"image/color"

	"camwatch/internal/services/ai"

	"gocv.io/x/gocv"
)

const (
	// BannerRows and BannerCols fix the severity banner size for the whole run.
	BannerRows = 300
	BannerCols = 600
)

var (
	boxColor    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	bannerColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Annotator draws accepted detections on frames and renders severity banners.
type Annotator struct{}

func New() *Annotator {
	return &Annotator{}
}

// Annotate draws the detection box and label on frame in place and returns a
// new banner containing only severityText. The caller owns the banner.
func (a *Annotator) Annotate(frame *gocv.Mat, detection ai.Detection, severityText string) (gocv.Mat, error) {
	if err := gocv.Rectangle(frame, detection.Rect(), boxColor, 3); err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to draw rectangle: %w", err)
	}

	labelAt := image.Pt(detection.X+10, detection.Y+30)
	if err := gocv.PutText(frame, detection.Label, labelAt, gocv.FontHersheyComplex, 1, boxColor, 2); err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to draw label: %w", err)
	}

	return a.Banner(severityText)
}

// Banner renders text in white, centered on a black BannerRows x BannerCols image.
func (a *Annotator) Banner(text string) (gocv.Mat, error) {
	banner := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), BannerRows, BannerCols, gocv.MatTypeCV8UC3)

	if err := gocv.PutText(&banner, text, bannerOrigin(text), gocv.FontHersheySimplex, 1, bannerColor, 2); err != nil {
		banner.Close()
		return gocv.NewMat(), fmt.Errorf("failed to draw banner: %w", err)
	}

	return banner, nil
}

// bannerOrigin returns the text baseline origin that centers text on the banner.
func bannerOrigin(text string) image.Point {
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 1, 2)
	return image.Pt((BannerCols-size.X)/2, (BannerRows+size.Y)/2)
}

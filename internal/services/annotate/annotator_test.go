package annotate

import (
	"image"
	"testing"

	"camwatch/internal/services/ai"

	"gocv.io/x/gocv"
)

func blankFrame(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func litPixels(t *testing.T, img gocv.Mat) int {
	t.Helper()

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(img, &gray, gocv.ColorBGRToGray); err != nil {
		t.Fatalf("Failed to convert to grayscale: %v", err)
	}
	return gocv.CountNonZero(gray)
}

func TestAnnotate_DrawsOnFrameAndReturnsBanner(t *testing.T) {
	frame := blankFrame(240, 320)
	defer frame.Close()

	detection := ai.Detection{Label: "apple", Confidence: 0.9, X: 40, Y: 30, Width: 120, Height: 100}

	banner, err := New().Annotate(&frame, detection, "nivel de desastre detectado: alto")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	defer banner.Close()

	if litPixels(t, frame) == 0 {
		t.Error("Expected box and label to be drawn on the frame")
	}

	// Box outline passes through the top-left corner.
	if v := frame.GetVecbAt(30, 40); v[1] != 255 {
		t.Errorf("Expected green at box corner, got %v", v)
	}

	if banner.Rows() != BannerRows || banner.Cols() != BannerCols {
		t.Errorf("Unexpected banner size %dx%d", banner.Cols(), banner.Rows())
	}
	if litPixels(t, banner) == 0 {
		t.Error("Expected severity text on banner")
	}
}

func TestAnnotate_AccumulatesBoxes(t *testing.T) {
	frame := blankFrame(240, 320)
	defer frame.Close()

	a := New()
	first := ai.Detection{Label: "apple", X: 10, Y: 10, Width: 50, Height: 50}
	second := ai.Detection{Label: "banana", X: 200, Y: 150, Width: 60, Height: 60}

	for _, d := range []ai.Detection{first, second} {
		banner, err := a.Annotate(&frame, d, "nivel")
		if err != nil {
			t.Fatalf("Annotate failed: %v", err)
		}
		banner.Close()
	}

	if v := frame.GetVecbAt(10, 10); v[1] != 255 {
		t.Errorf("First box missing after second annotation: %v", v)
	}
	if v := frame.GetVecbAt(150, 200); v[1] != 255 {
		t.Errorf("Second box missing: %v", v)
	}
}

func TestBanner_FreshEachCall(t *testing.T) {
	a := New()

	first, err := a.Banner("nivel de desastre detectado: alto")
	if err != nil {
		t.Fatalf("Banner failed: %v", err)
	}
	defer first.Close()

	second, err := a.Banner("nivel de desastre detectado: alto")
	if err != nil {
		t.Fatalf("Banner failed: %v", err)
	}
	defer second.Close()

	first.SetUCharAt(0, 0, 255)
	if second.GetUCharAt(0, 0) != 0 {
		t.Error("Expected a new banner buffer per call")
	}
}

func TestBannerOrigin_Centered(t *testing.T) {
	text := "nivel de desastre detectado: medio"
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 1, 2)

	origin := bannerOrigin(text)
	expected := image.Pt((BannerCols-size.X)/2, (BannerRows+size.Y)/2)

	if origin != expected {
		t.Errorf("bannerOrigin = %v, expected %v", origin, expected)
	}
	if origin.Y <= BannerRows/2 {
		t.Errorf("Baseline %v should sit below the banner middle", origin)
	}
}

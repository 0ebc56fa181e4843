package ai

import (
	"fmt"
	"image"
	"os"

	"camwatch/internal/classes"
	"camwatch/internal/logger"

	"gocv.io/x/gocv"
)

const (
	// DetectionThreshold is the minimum confidence for object detections.
	DetectionThreshold = 0.5
	// InputSize is the square input the SSD MobileNet v3 graph expects.
	InputSize = 320
)

// Detection is one object found in a frame, with its box in pixel coordinates.
type Detection struct {
	Label      string
	Confidence float64
	X          int
	Y          int
	Width      int
	Height     int
}

// Rect returns the detection box as an image rectangle.
func (d Detection) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

// ModelError reports a failure of the detection network itself. Finding
// nothing is not an error.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("detector %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

type DetectorService struct {
	net        gocv.Net
	classes    *classes.List
	modelPath  string
	configPath string
	logger     *logger.Logger
}

// NewDetectorService loads the frozen graph and its pbtxt descriptor.
// names resolves the model's class ids to category names.
func NewDetectorService(modelPath, configPath string, names *classes.List, logger *logger.Logger) (*DetectorService, error) {
	service := &DetectorService{
		classes:    names,
		modelPath:  modelPath,
		configPath: configPath,
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}

	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); err != nil {
		return &ModelError{Op: "load", Err: fmt.Errorf("model file not found: %s", s.modelPath)}
	}

	if _, err := os.Stat(s.configPath); err != nil {
		return &ModelError{Op: "load", Err: fmt.Errorf("config file not found: %s", s.configPath)}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		net.Close()
		return &ModelError{Op: "load", Err: fmt.Errorf("failed to load network from %s", s.modelPath)}
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return &ModelError{Op: "load", Err: fmt.Errorf("failed to set preferable backend: %w", err)}
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return &ModelError{Op: "load", Err: fmt.Errorf("failed to set preferable target: %w", err)}
	}

	s.net = net
	s.logger.Info("Detection network initialized (%d classes)", s.classes.Len())
	return nil
}

// Detect runs the network on frame and returns detections whose confidence
// is at least floor, in the order the network reports them.
func (s *DetectorService) Detect(frame gocv.Mat, floor float64) ([]Detection, error) {
	if frame.Empty() {
		return nil, &ModelError{Op: "input", Err: fmt.Errorf("frame is empty")}
	}

	// SSD MobileNet v3 expects RGB input scaled to [-1, 1].
	blob := gocv.BlobFromImage(frame, 1.0/127.5, image.Pt(InputSize, InputSize), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, &ModelError{Op: "forward", Err: fmt.Errorf("network returned no output")}
	}

	// Output blob is [1, 1, N, 7]; take the N x 7 plane.
	rows := gocv.GetBlobChannel(output, 0, 0)
	defer rows.Close()

	detections, err := parseDetections(rows, image.Pt(frame.Cols(), frame.Rows()), floor, s.classes)
	if err != nil {
		return nil, err
	}

	for _, d := range detections {
		s.logger.Info("Detected %s (%.2f) at [%d,%d,%d,%d]", d.Label, d.Confidence, d.X, d.Y, d.Width, d.Height)
	}

	return detections, nil
}

// parseDetections converts rows of [batch_id, class_id, confidence, x1, y1, x2, y2]
// with normalized coordinates into pixel-space detections.
func parseDetections(rows gocv.Mat, frameSize image.Point, floor float64, names *classes.List) ([]Detection, error) {
	if rows.Empty() {
		return []Detection{}, nil
	}
	if rows.Cols() != 7 {
		return nil, &ModelError{Op: "parse", Err: fmt.Errorf("unexpected output width %d", rows.Cols())}
	}

	width := float32(frameSize.X)
	height := float32(frameSize.Y)

	results := make([]Detection, 0)
	for i := 0; i < rows.Rows(); i++ {
		confidence := float64(rows.GetFloatAt(i, 2))
		if confidence < floor {
			continue
		}

		label, err := names.Resolve(int(rows.GetFloatAt(i, 1)))
		if err != nil {
			return nil, &ModelError{Op: "resolve", Err: err}
		}

		x, y, w, h := clampBox(
			int(rows.GetFloatAt(i, 3)*width),
			int(rows.GetFloatAt(i, 4)*height),
			int(rows.GetFloatAt(i, 5)*width),
			int(rows.GetFloatAt(i, 6)*height),
			frameSize,
		)

		results = append(results, Detection{
			Label:      label,
			Confidence: confidence,
			X:          x,
			Y:          y,
			Width:      w,
			Height:     h,
		})
	}

	return results, nil
}

// clampBox turns inclusive corner coordinates into a box that lies inside
// the frame and is at least one pixel wide and high.
func clampBox(left, top, right, bottom int, frameSize image.Point) (x, y, w, h int) {
	w = right - left + 1
	h = bottom - top + 1

	x = max(0, min(left, frameSize.X-1))
	y = max(0, min(top, frameSize.Y-1))
	w = max(1, min(w, frameSize.X-x))
	h = max(1, min(h, frameSize.Y-y))
	return x, y, w, h
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}

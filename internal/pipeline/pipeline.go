package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"camwatch/internal/logger"
	"camwatch/internal/metrics"
	"camwatch/internal/services/ai"
	"camwatch/internal/services/camera"
	"camwatch/internal/services/storage"
	"camwatch/internal/services/websocket"
	"camwatch/internal/severity"

	"gocv.io/x/gocv"
)

const (
	// StopKey is the key (ESC) that ends the session after a frame is shown.
	StopKey = 27
	// KeyPollDelay is how long each cycle waits for operator input.
	KeyPollDelay = 5 * time.Millisecond
)

// State of the monitoring loop.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type FrameSource interface {
	Fetch(ctx context.Context) (gocv.Mat, error)
}

type Detector interface {
	Detect(frame gocv.Mat, floor float64) ([]ai.Detection, error)
}

type Annotator interface {
	Annotate(frame *gocv.Mat, detection ai.Detection, severityText string) (gocv.Mat, error)
}

type Recorder interface {
	Record(category, severityText string) error
}

type Display interface {
	ShowFrame(frame gocv.Mat)
	ShowBanner(banner gocv.Mat)
	PollKey(delay time.Duration) int
	Close() error
}

// Publisher mirrors displayed images to remote viewers.
type Publisher interface {
	Publish(stream string, img gocv.Mat) error
}

// Deps are the collaborators of a Loop. Viewers and Metrics are optional.
type Deps struct {
	Source    FrameSource
	Detector  Detector
	Table     *severity.Table
	Annotator Annotator
	Recorder  Recorder
	Display   Display
	Viewers   Publisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// Loop runs fetch, detect, annotate/log, display and stop-check cycles
// until the operator presses StopKey or any step fails.
type Loop struct {
	deps  Deps
	floor float64
	state State
}

// New returns a Loop in the Running state.
func New(deps Deps) *Loop {
	deps.Metrics.SetRunning(true)
	return &Loop{
		deps:  deps,
		floor: ai.DetectionThreshold,
		state: Running,
	}
}

// State reports whether the loop is still running.
func (l *Loop) State() State {
	return l.state
}

// Run cycles until a clean stop (nil) or the first fault (non-nil).
// The display is closed before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.state = Stopped
		l.deps.Metrics.SetRunning(false)
		if closeErr := l.deps.Display.Close(); closeErr != nil {
			l.deps.Logger.Warning("Failed to close display: %v", closeErr)
		}
	}()

	for l.state == Running {
		stop, err := l.Cycle(ctx)
		if err != nil {
			l.deps.Metrics.Fault(faultKind(err))
			l.deps.Logger.Error("Monitoring stopped: %v", err)
			return fmt.Errorf("monitoring loop: %w", err)
		}
		if stop {
			l.deps.Logger.Info("Stop key pressed, monitoring stopped")
			return nil
		}
	}

	return nil
}

// Cycle runs one iteration. stop is true when the operator pressed StopKey.
// A panic inside the cycle is returned as an error.
func (l *Loop) Cycle(ctx context.Context) (stop bool, err error) {
	if l.state != Running {
		return true, nil
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			stop, err = false, &PanicError{Value: r}
		}
		if err != nil {
			l.state = Stopped
		}
		l.deps.Metrics.ObserveCycle(time.Since(start))
	}()

	frame, err := l.deps.Source.Fetch(ctx)
	if err != nil {
		frame.Close()
		return false, err
	}
	defer frame.Close()
	l.deps.Metrics.FrameFetched()

	detections, err := l.deps.Detector.Detect(frame, l.floor)
	if err != nil {
		return false, err
	}

	for _, detection := range detections {
		if err := l.handleDetection(&frame, detection); err != nil {
			return false, err
		}
	}

	l.deps.Display.ShowFrame(frame)
	if err := l.publish(websocket.StreamFrame, frame); err != nil {
		return false, err
	}

	if l.deps.Display.PollKey(KeyPollDelay) == StopKey {
		l.state = Stopped
		return true, nil
	}

	return false, nil
}

// handleDetection annotates, shows and records one detection, or drops it
// when it is below the floor or its category is not monitored.
func (l *Loop) handleDetection(frame *gocv.Mat, detection ai.Detection) error {
	if detection.Confidence < l.floor {
		l.deps.Metrics.Dropped(metrics.DropBelowFloor)
		return nil
	}

	severityText, ok := l.deps.Table.SeverityFor(detection.Label)
	if !ok {
		l.deps.Metrics.Dropped(metrics.DropUnmonitored)
		return nil
	}

	banner, err := l.deps.Annotator.Annotate(frame, detection, severityText)
	if err != nil {
		return &RenderError{Err: err}
	}
	defer banner.Close()

	l.deps.Display.ShowBanner(banner)
	if err := l.publish(websocket.StreamBanner, banner); err != nil {
		return err
	}

	if err := l.deps.Recorder.Record(detection.Label, severityText); err != nil {
		return err
	}

	l.deps.Metrics.Accepted(detection.Label)
	l.deps.Metrics.LogLineWritten()
	l.deps.Logger.Info("%s: %s (%.2f)", detection.Label, severityText, detection.Confidence)
	return nil
}

func (l *Loop) publish(stream string, img gocv.Mat) error {
	if l.deps.Viewers == nil {
		return nil
	}
	if err := l.deps.Viewers.Publish(stream, img); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// RenderError wraps drawing and encoding failures.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking cycle.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during cycle: %v", e.Value)
}

// faultKind labels err for the faults metric.
func faultKind(err error) string {
	var (
		acquisitionErr *camera.AcquisitionError
		modelErr       *ai.ModelError
		persistenceErr *storage.PersistenceError
		renderErr      *RenderError
		panicErr       *PanicError
	)

	switch {
	case errors.As(err, &acquisitionErr):
		return "acquisition"
	case errors.As(err, &modelErr):
		return "model"
	case errors.As(err, &persistenceErr):
		return "persistence"
	case errors.As(err, &renderErr):
		return "render"
	case errors.As(err, &panicErr):
		return "panic"
	default:
		return "other"
	}
}

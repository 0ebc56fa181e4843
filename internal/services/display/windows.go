package display

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// Windows shows the annotated camera frame and the severity banner in two
// on-screen windows and reads the operator's key presses.
type Windows struct {
	frame      *gocv.Window
	banner     *gocv.Window
	bannerName string
}

// NewWindows opens the frame window. The banner window opens on the first banner.
func NewWindows(frameName, bannerName string) *Windows {
	frame := gocv.NewWindow(frameName)
	frame.SetWindowProperty(gocv.WindowPropertyAutosize, gocv.WindowAutosize)

	return &Windows{
		frame:      frame,
		bannerName: bannerName,
	}
}

// ShowFrame replaces the content of the frame window.
func (w *Windows) ShowFrame(frame gocv.Mat) {
	w.frame.IMShow(frame)
}

// ShowBanner replaces the content of the banner window.
func (w *Windows) ShowBanner(banner gocv.Mat) {
	if w.banner == nil {
		w.banner = gocv.NewWindow(w.bannerName)
	}
	w.banner.IMShow(banner)
}

// PollKey waits up to delay for a key press and returns its low byte,
// or -1 when no key was pressed.
func (w *Windows) PollKey(delay time.Duration) int {
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}

	key := w.frame.WaitKey(ms)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// Close tears down both windows.
func (w *Windows) Close() error {
	var errs []error
	if w.banner != nil {
		errs = append(errs, w.banner.Close())
		w.banner = nil
	}
	if w.frame != nil {
		errs = append(errs, w.frame.Close())
		w.frame = nil
	}
	return errors.Join(errs...)
}

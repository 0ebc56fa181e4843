package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// maxFrameBytes caps a single snapshot body.
const maxFrameBytes = 16 << 20

// AcquisitionError reports a failed fetch or decode of a camera frame.
type AcquisitionError struct {
	Op  string
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("camera %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Source fetches one JPEG snapshot per call from an HTTP camera endpoint
// (e.g. the ESP32-CAM /cam-hi.jpg handler).
type Source struct {
	url    string
	client *http.Client
}

// NewSource creates a Source. timeout bounds each request including the body read.
func NewSource(url string, timeout time.Duration) *Source {
	return &Source{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the snapshot endpoint.
func (s *Source) URL() string {
	return s.url
}

// Fetch downloads and decodes a fresh frame. The caller owns the returned Mat.
func (s *Source) Fetch(ctx context.Context) (gocv.Mat, error) {
	body, err := s.download(ctx)
	if err != nil {
		return gocv.NewMat(), err
	}

	// Force 3-channel BGR; IMReadUnchanged would pass alpha or grayscale through to the detector.
	mat, err := gocv.IMDecode(body, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), &AcquisitionError{Op: "decode", URL: s.url, Err: err}
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &AcquisitionError{Op: "decode", URL: s.url, Err: fmt.Errorf("decoded image is empty (%d bytes received)", len(body))}
	}

	return mat, nil
}

func (s *Source) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &AcquisitionError{Op: "request", URL: s.url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &AcquisitionError{Op: "get", URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AcquisitionError{Op: "get", URL: s.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, &AcquisitionError{Op: "read", URL: s.url, Err: err}
	}
	if len(body) == 0 {
		return nil, &AcquisitionError{Op: "read", URL: s.url, Err: fmt.Errorf("empty response body")}
	}

	return body, nil
}

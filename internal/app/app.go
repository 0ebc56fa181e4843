package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"camwatch/internal/classes"
	"camwatch/internal/config"
	"camwatch/internal/logger"
	"camwatch/internal/metrics"
	"camwatch/internal/pipeline"
	"camwatch/internal/routes"
	"camwatch/internal/services/ai"
	"camwatch/internal/services/annotate"
	"camwatch/internal/services/camera"
	"camwatch/internal/services/display"
	"camwatch/internal/services/storage"
	"camwatch/internal/services/websocket"
	"camwatch/internal/severity"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	detector *ai.DetectorService
	hub      *websocket.HubService
	loop     *pipeline.Loop
}

// NewApp loads the category list and the detection model and wires the
// monitoring loop. Nothing is fetched from the camera yet.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	table := severity.Default()

	names, err := classes.Load(cfg.ClassFile)
	if err != nil {
		log.Close()
		return nil, err
	}

	detector, err := ai.NewDetectorService(cfg.ModelPath, cfg.ConfigPath, names, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	recorder, err := storage.NewDetectionLog(cfg.DetectionLogPath)
	if err != nil {
		detector.Close()
		log.Close()
		return nil, err
	}

	m := metrics.New()
	deps := pipeline.Deps{
		Source:    camera.NewSource(cfg.CameraURL, cfg.FetchTimeout),
		Detector:  detector,
		Table:     table,
		Annotator: annotate.New(),
		Recorder:  recorder,
		Display:   display.NewWindows(cfg.WindowName, cfg.BannerWindowName),
		Metrics:   m,
		Logger:    log,
	}

	var hub *websocket.HubService
	if cfg.HTTPAddr != "" {
		hub = websocket.NewHubService(log)
		deps.Viewers = hub
	}

	log.Info("Monitoring categories: %v", table.Categories())

	return &App{
		config:   cfg,
		logger:   log,
		metrics:  m,
		detector: detector,
		hub:      hub,
		loop:     pipeline.New(deps),
	}, nil
}

// Run blocks until the operator presses ESC or the loop fails.
func (a *App) Run() error {
	defer a.logger.Close()
	defer a.detector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var server *http.Server
	if a.hub != nil {
		go a.hub.Run(ctx)

		server = &http.Server{
			Addr:    a.config.HTTPAddr,
			Handler: routes.SetupRoutes(a.hub, a.metrics, a.logger, a.config.LogDirectory),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("HTTP server failed: %v", err)
			}
		}()
	}

	fmt.Printf("📷 Camera: %s\n", a.config.CameraURL)
	fmt.Printf("🤖 AI Model: %s\n", a.config.ModelPath)
	fmt.Printf("📝 Detection log: %s\n", a.config.DetectionLogPath)
	if server != nil {
		fmt.Printf("📍 Viewer/metrics: http://%s\n", a.config.HTTPAddr)
	}
	fmt.Printf("⎋  Press ESC in the camera window to stop\n")

	err := a.loop.Run(ctx)

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			a.logger.Warning("HTTP server shutdown: %v", shutdownErr)
		}
	}

	return err
}

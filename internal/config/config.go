package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	CameraURL        string
	FetchTimeout     time.Duration // Limit for a single frame request
	ClassFile        string
	ModelPath        string
	ConfigPath       string
	DetectionLogPath string // Plain-text log of accepted detections
	LogDirectory     string
	HTTPAddr         string // Viewer/metrics listener, empty disables it
	WindowName       string
	BannerWindowName string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are used when the variable is not already set.
func Load() *Config {
	_ = godotenv.Load()

	modelDir := getEnv("MODEL_DIR", filepath.Join(".", "models"))

	return &Config{
		CameraURL:        getEnv("CAMERA_URL", "http://192.168.18.119/cam-hi.jpg"),
		FetchTimeout:     time.Duration(getEnvAsInt("FETCH_TIMEOUT", 10)) * time.Second,
		ClassFile:        getEnv("CLASS_FILE", filepath.Join(modelDir, "coco.names")),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(modelDir, "frozen_inference_graph.pb")),
		ConfigPath:       getEnv("CONFIG_PATH", filepath.Join(modelDir, "ssd_mobilenet_v3_large_coco_2020_01_14.pbtxt")),
		DetectionLogPath: getEnv("DETECTION_LOG", filepath.Join(".", "frutas_detectadas.txt")),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		HTTPAddr:         getEnv("HTTP_ADDR", ""),
		WindowName:       getEnv("WINDOW_NAME", "ESP32 CAMERA"),
		BannerWindowName: getEnv("BANNER_WINDOW_NAME", "Fruta Detectada"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

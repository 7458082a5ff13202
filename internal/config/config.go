package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendONNX        = "onnx"
	BackendRekognition = "rekognition"
)

type Config struct {
	Port string

	Backend      string
	ModelID      string
	ModelPath    string
	MetadataPath string
	ONNXLibPath  string
	AWSRegion    string
	TopK         int
	PreloadModel bool

	MaxUploadBytes int64
	MaxPixels      int
	UploadTypes    []string

	AppTitle  string
	AboutText string

	ShutdownTimeout time.Duration
}

// Load reads .env (if any) and the process environment.
func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	root := projectRoot()
	modelID := getEnv("MODEL_ID", "microsoft/resnet-50")

	return &Config{
		Port: getEnv("PORT", "8080"),

		Backend:      strings.ToLower(getEnv("BACKEND", BackendONNX)),
		ModelID:      modelID,
		ModelPath:    resolve(root, getEnv("MODEL_PATH", filepath.Join("models", "model.onnx"))),
		MetadataPath: resolve(root, getEnv("METADATA_PATH", filepath.Join("models", "model_metadata.json"))),
		ONNXLibPath:  getEnv("ONNX_LIB_PATH", ""),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		TopK:         getInt("TOP_K", 0),
		PreloadModel: getBool("PRELOAD_MODEL", true),

		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 10)) << 20,
		MaxPixels:      getInt("MAX_PIXELS", 40_000_000),
		UploadTypes:    splitList(getEnv("UPLOAD_TYPES", "png,jpg,jpeg")),

		AppTitle: getEnv("APP_TITLE", "AI that can see - Image Classification"),
		AboutText: getEnv("ABOUT_TEXT",
			"This is a simple image classification app. Model used: "+modelID+"."),

		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendONNX:
		if c.ModelPath == "" || c.MetadataPath == "" {
			return fmt.Errorf("onnx backend needs MODEL_PATH and METADATA_PATH")
		}
	case BackendRekognition:
		if c.AWSRegion == "" {
			return fmt.Errorf("rekognition backend needs AWS_REGION")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendONNX, BackendRekognition)
	}
	if c.TopK < 0 {
		return fmt.Errorf("TOP_K must not be negative, got %d", c.TopK)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("MAX_PIXELS must be positive")
	}
	if len(c.UploadTypes) == 0 {
		return fmt.Errorf("UPLOAD_TYPES must list at least one extension")
	}
	return nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// projectRoot returns the working directory, stepping out of cmd/server
// when the binary is started from there.
func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		return filepath.Join(wd, "../..")
	}
	return wd
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "PORT", "BACKEND", "MODEL_ID", "MODEL_PATH", "METADATA_PATH", "TOP_K",
		"PRELOAD_MODEL", "MAX_UPLOAD_MB", "MAX_PIXELS", "UPLOAD_TYPES", "ABOUT_TEXT", "SHUTDOWN_TIMEOUT")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendONNX, cfg.Backend)
	assert.Equal(t, "microsoft/resnet-50", cfg.ModelID)
	assert.True(t, filepath.IsAbs(cfg.ModelPath))
	assert.Equal(t, "model.onnx", filepath.Base(cfg.ModelPath))
	assert.Equal(t, "model_metadata.json", filepath.Base(cfg.MetadataPath))
	assert.Equal(t, 0, cfg.TopK)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 40_000_000, cfg.MaxPixels)
	assert.Equal(t, []string{"png", "jpg", "jpeg"}, cfg.UploadTypes)
	assert.True(t, cfg.PreloadModel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Contains(t, cfg.AboutText, "microsoft/resnet-50")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND", "Rekognition")
	t.Setenv("TOP_K", "3")
	t.Setenv("PRELOAD_MODEL", "false")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("MAX_PIXELS", "1000000")
	t.Setenv("UPLOAD_TYPES", " .PNG, jpg ,,")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("MODEL_PATH", "/opt/models/resnet.onnx")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendRekognition, cfg.Backend)
	assert.Equal(t, 3, cfg.TopK)
	assert.False(t, cfg.PreloadModel)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 1000000, cfg.MaxPixels)
	assert.Equal(t, []string{"png", "jpg"}, cfg.UploadTypes)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/opt/models/resnet.onnx", cfg.ModelPath)
}

func TestLoadBadNumbersFallBack(t *testing.T) {
	t.Setenv("TOP_K", "many")
	t.Setenv("PRELOAD_MODEL", "sometimes")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 0, cfg.TopK)
	assert.True(t, cfg.PreloadModel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend:        BackendONNX,
			ModelPath:      "m.onnx",
			MetadataPath:   "m.json",
			AWSRegion:      "us-east-1",
			MaxUploadBytes: 1 << 20,
			MaxPixels:      1 << 20,
			UploadTypes:    []string{"png"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid onnx", mutate: func(c *Config) {}},
		{name: "valid rekognition", mutate: func(c *Config) {
			c.Backend = BackendRekognition
			c.ModelPath = ""
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "tflite" }, wantErr: true},
		{name: "onnx without model", mutate: func(c *Config) { c.ModelPath = "" }, wantErr: true},
		{name: "rekognition without region", mutate: func(c *Config) {
			c.Backend = BackendRekognition
			c.AWSRegion = ""
		}, wantErr: true},
		{name: "negative top k", mutate: func(c *Config) { c.TopK = -1 }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: true},
		{name: "zero pixel budget", mutate: func(c *Config) { c.MaxPixels = 0 }, wantErr: true},
		{name: "no upload types", mutate: func(c *Config) { c.UploadTypes = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"png", "jpeg"}, splitList("PNG, .jpeg"))
	assert.Nil(t, splitList(" , "))
}

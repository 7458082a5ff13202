package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultInputName  = "pixel_values"
	defaultOutputName = "logits"
	defaultImageSize  = 224
	defaultCropPct    = 0.875
	defaultTopK       = 5
)

var (
	imagenetMean = []float32{0.485, 0.456, 0.406}
	imagenetStd  = []float32{0.229, 0.224, 0.225}
)

var ErrInvalidMetadata = errors.New("invalid model metadata")

// LoadMetadata reads a JSON or YAML (.yaml/.yml) metadata file, fills
// defaults and validates it.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &metadata)
	default:
		err = json.Unmarshal(raw, &metadata)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if err := metadata.normalize(); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

func (m *Metadata) normalize() error {
	if m.InputName == "" {
		m.InputName = defaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = defaultOutputName
	}
	if m.ImageSize == 0 {
		m.ImageSize = defaultImageSize
	}
	if m.CropPct == 0 {
		m.CropPct = defaultCropPct
	}
	if len(m.Mean) == 0 {
		m.Mean = append([]float32(nil), imagenetMean...)
	}
	if len(m.Std) == 0 {
		m.Std = append([]float32(nil), imagenetStd...)
	}
	if m.TopK == 0 {
		m.TopK = defaultTopK
	}
	if len(m.InputShape) == 0 {
		m.InputShape = []int64{1, 3, int64(m.ImageSize), int64(m.ImageSize)}
	}
	if len(m.Classes) == 0 && len(m.ID2Label) > 0 {
		classes, err := labelsFromIDs(m.ID2Label)
		if err != nil {
			return err
		}
		m.Classes = classes
	}
	if len(m.OutputShape) == 0 && len(m.Classes) > 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
	return m.validate()
}

func (m *Metadata) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("%w: no classes", ErrInvalidMetadata)
	}
	if len(m.InputShape) != 4 || m.InputShape[1] != 3 {
		return fmt.Errorf("%w: input shape %v is not NCHW with 3 channels", ErrInvalidMetadata, m.InputShape)
	}
	if m.InputShape[2] != int64(m.ImageSize) || m.InputShape[3] != int64(m.ImageSize) {
		return fmt.Errorf("%w: input shape %v does not match image size %d", ErrInvalidMetadata, m.InputShape, m.ImageSize)
	}
	if len(m.OutputShape) == 0 || m.OutputShape[len(m.OutputShape)-1] != int64(len(m.Classes)) {
		return fmt.Errorf("%w: output shape %v does not match %d classes", ErrInvalidMetadata, m.OutputShape, len(m.Classes))
	}
	if len(m.Mean) != 3 || len(m.Std) != 3 {
		return fmt.Errorf("%w: mean and std need 3 values each", ErrInvalidMetadata)
	}
	for _, s := range m.Std {
		if s == 0 {
			return fmt.Errorf("%w: std must be non-zero", ErrInvalidMetadata)
		}
	}
	if m.CropPct <= 0 || m.CropPct > 1 {
		return fmt.Errorf("%w: crop_pct %v out of (0,1]", ErrInvalidMetadata, m.CropPct)
	}
	if m.TopK < 0 {
		return fmt.Errorf("%w: top_k %d is negative", ErrInvalidMetadata, m.TopK)
	}
	return nil
}

// labelsFromIDs turns a Hugging Face id2label map into a dense slice.
func labelsFromIDs(id2label map[string]string) ([]string, error) {
	classes := make([]string, len(id2label))
	seen := make([]bool, len(id2label))
	for key, label := range id2label {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(classes) || seen[idx] {
			return nil, fmt.Errorf("%w: id2label key %q is not a dense index", ErrInvalidMetadata, key)
		}
		seen[idx] = true
		classes[idx] = label
	}
	return classes, nil
}

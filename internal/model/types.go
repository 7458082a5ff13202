package model

import (
	"context"
	"image"
)

// Classifier is a loaded model handle.
type Classifier interface {
	// Classify returns predictions ranked by descending score, already cut
	// to the model's default top-k. Scores are probabilities in [0,1].
	Classify(ctx context.Context, img image.Image) ([]Prediction, error)
}

type Prediction struct {
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

type Metadata struct {
	ModelID      string            `json:"model_id" yaml:"model_id"`
	InputName    string            `json:"input_name" yaml:"input_name"`
	OutputName   string            `json:"output_name" yaml:"output_name"`
	InputShape   []int64           `json:"input_shape" yaml:"input_shape"`
	OutputShape  []int64           `json:"output_shape" yaml:"output_shape"`
	ImageSize    int               `json:"image_size" yaml:"image_size"`
	CropPct      float64           `json:"crop_pct" yaml:"crop_pct"`
	Mean         []float32         `json:"mean" yaml:"mean"`
	Std          []float32         `json:"std" yaml:"std"`
	TopK         int               `json:"top_k" yaml:"top_k"`
	ApplySoftmax *bool             `json:"apply_softmax" yaml:"apply_softmax"`
	Classes      []string          `json:"classes" yaml:"classes"`
	ID2Label     map[string]string `json:"id2label" yaml:"id2label"`
}

func (m Metadata) softmax() bool {
	return m.ApplySoftmax == nil || *m.ApplySoftmax
}

// Package predictor adapts a model handle to the shape the UI renders.
package predictor

import (
	"context"
	"fmt"
	"image"

	"github.com/Brownie44l1/image-classify/internal/model"
)

// Loader hands out the process-wide model handle.
type Loader interface {
	Load() (model.Classifier, error)
}

type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Predictor struct {
	loader Loader
}

func New(loader Loader) *Predictor {
	return &Predictor{loader: loader}
}

// Predict classifies img with the cached model. Order and count are the
// model's own; only the score type changes.
func (p *Predictor) Predict(ctx context.Context, img image.Image) ([]Result, error) {
	classifier, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	preds, err := classifier.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	results := make([]Result, len(preds))
	for i, pr := range preds {
		results[i] = Result{Label: pr.Label, Score: float64(pr.Score)}
	}
	return results, nil
}

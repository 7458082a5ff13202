package model

import (
	"math"
	"sort"
)

// Softmax returns exp(x_i)/sum(exp(x)) computed with the max subtracted
// for numerical stability.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// Rank pairs scores with class labels, orders them by descending score
// (ties keep class order) and keeps the first topK. topK <= 0 keeps all.
func Rank(scores []float32, classes []string, topK int) []Prediction {
	n := len(scores)
	if len(classes) < n {
		n = len(classes)
	}

	preds := make([]Prediction, n)
	for i := 0; i < n; i++ {
		preds[i] = Prediction{Label: classes[i], Score: clamp01(scores[i])}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Score > preds[j].Score
	})

	if topK > 0 && topK < len(preds) {
		preds = preds[:topK]
	}
	return preds
}

func clamp01(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

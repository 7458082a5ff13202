package handlers

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/image-classify/internal/predictor"
)

func TestRenderChart(t *testing.T) {
	chart, err := renderChart([]predictor.Result{
		{Label: "tabby", Score: 0.6},
		{Label: "tiger cat", Score: 0.3},
		{Label: "tabby", Score: 0.05},
		{Label: "<egyptian cat>", Score: 0.05},
	})
	require.NoError(t, err)

	svg := string(chart)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Equal(t, 3, strings.Count(svg, "<rect"))
	assert.Contains(t, svg, "&lt;egyptian cat&gt;")
	assert.Contains(t, svg, "0.0500")
	assert.NotContains(t, svg, "0.6000")
	assert.Less(t, strings.Index(svg, "tabby"), strings.Index(svg, "tiger cat"))
}

func TestRenderChartErrors(t *testing.T) {
	_, err := renderChart(nil)
	assert.ErrorIs(t, err, errChartEmpty)

	for _, score := range []float64{math.NaN(), math.Inf(1), -0.1, 1.01} {
		_, err := renderChart([]predictor.Result{{Label: "x", Score: score}})
		assert.Error(t, err, "score %v", score)
	}
}

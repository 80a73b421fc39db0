package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionsurface/internal/pricing/application"
)

func TestRun_DefaultParameters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(nil, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "CALL Option Price: $10.45\n")
	assert.Contains(t, out, "PUT Option Price:  $5.57\n")
	assert.Contains(t, out, "Call Price Heatmap (Strike: $100)")
	assert.Contains(t, out, "Spot Price")
}

func TestRun_DeepInTheMoney(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-spot", "200", "-strike", "50"}, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "CALL Option Price: $152.44")
	assert.Contains(t, stdout.String(), "PUT Option Price:  $0.00")
	assert.Contains(t, stdout.String(), "(Strike: $50)")
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-json", "-points", "4"}, &stdout, &stderr))

	var out struct {
		Quote struct {
			Call float64 `json:"call"`
			Put  float64 `json:"put"`
		} `json:"quote"`
		Surface struct {
			SpotAxis []float64   `json:"spot_axis"`
			VolAxis  []float64   `json:"vol_axis"`
			Prices   [][]float64 `json:"prices"`
		} `json:"surface"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.InDelta(t, 10.4506, out.Quote.Call, 1e-4)
	assert.InDelta(t, 5.5735, out.Quote.Put, 1e-4)
	assert.Len(t, out.Surface.SpotAxis, 4)
	assert.Len(t, out.Surface.VolAxis, 4)
	assert.Len(t, out.Surface.Prices, 4)
}

func TestRun_InvalidInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-vol", "0"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volatility")
	assert.Empty(t, stdout.String())

	err = run([]string{"-spot", "abc"}, &stdout, &stderr)
	assert.Error(t, err)
	assert.True(t, strings.Contains(stderr.String(), "invalid value"))
}

func TestRun_PointsBounds(t *testing.T) {
	for _, points := range []string{"0", "-3"} {
		var stdout, stderr bytes.Buffer
		err := run([]string{"-points", points}, &stdout, &stderr)
		assert.ErrorContains(t, err, "-points must be >= 1", "points=%s", points)
		assert.Empty(t, stdout.String())
	}

	var stdout, stderr bytes.Buffer
	err := run([]string{"-points", "51"}, &stdout, &stderr)
	assert.ErrorIs(t, err, application.ErrTooManyPoints)
	assert.Empty(t, stdout.String())

	stdout.Reset()
	require.NoError(t, run([]string{"-points", "50", "-json"}, &stdout, &stderr))
	var out struct {
		Surface struct {
			SpotAxis []float64 `json:"spot_axis"`
		} `json:"surface"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Len(t, out.Surface.SpotAxis, 50)
}

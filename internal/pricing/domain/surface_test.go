package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	t.Run("endpoints inclusive", func(t *testing.T) {
		got := Linspace(50, 150, 10)
		require.Len(t, got, 10)
		assert.Equal(t, 50.0, got[0])
		assert.Equal(t, 150.0, got[9])
		for i := 1; i < len(got); i++ {
			assert.InDelta(t, 100.0/9, got[i]-got[i-1], 1e-9)
		}
	})
	t.Run("single point", func(t *testing.T) {
		assert.Equal(t, []float64{7}, Linspace(7, 9, 1))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Linspace(0, 1, 0))
		assert.Empty(t, Linspace(0, 1, -3))
	})
	t.Run("two points", func(t *testing.T) {
		assert.Equal(t, []float64{0.1, 0.3}, Linspace(0.1, 0.3, 2))
	})
}

func TestBuildSurface_Shape(t *testing.T) {
	s, err := BuildSurface(reference())
	require.NoError(t, err)

	require.Len(t, s.SpotAxis, 10)
	require.Len(t, s.VolAxis, 10)
	require.Len(t, s.Prices, len(s.VolAxis))
	for _, row := range s.Prices {
		require.Len(t, row, len(s.SpotAxis))
	}
	assert.Equal(t, 10, s.Rows())
	assert.Equal(t, 10, s.Cols())

	assert.Equal(t, 50.0, s.SpotAxis[0])
	assert.Equal(t, 150.0, s.SpotAxis[9])
	assert.InDelta(t, 0.1, s.VolAxis[0], 1e-15)
	assert.InDelta(t, 0.3, s.VolAxis[9], 1e-15)
	assert.Equal(t, reference(), s.Base)
}

func TestBuildSurface_CellsMatchEngineExactly(t *testing.T) {
	base := MarketParameters{Spot: 137, Strike: 120, Expiry: 0.4, Rate: 0.12, Volatility: 0.65}
	s, err := BuildSurface(base)
	require.NoError(t, err)

	for i, vol := range s.VolAxis {
		for j, spot := range s.SpotAxis {
			want, err := Price(base.With(spot, vol), OptionTypeCall)
			require.NoError(t, err)
			require.Equal(t, want, s.Prices[i][j], "cell [%d][%d]", i, j)
		}
	}
}

func TestBuildSurface_AxesAscendingAndPricesOrdered(t *testing.T) {
	s, err := BuildSurface(reference())
	require.NoError(t, err)

	for k := 1; k < 10; k++ {
		assert.Greater(t, s.SpotAxis[k], s.SpotAxis[k-1])
		assert.Greater(t, s.VolAxis[k], s.VolAxis[k-1])
	}
	// 行内随标的价格递增，列内随波动率递增
	for i := range s.Prices {
		for j := 1; j < len(s.Prices[i]); j++ {
			assert.GreaterOrEqual(t, s.Prices[i][j], s.Prices[i][j-1]-1e-12)
		}
	}
	for j := range s.SpotAxis {
		for i := 1; i < len(s.Prices); i++ {
			assert.GreaterOrEqual(t, s.Prices[i][j], s.Prices[i-1][j]-1e-12)
		}
	}
}

func TestBuildSurfaceWithSpec_CustomGrid(t *testing.T) {
	spec := SurfaceSpec{SpotPoints: 5, VolPoints: 3, LowFactor: 0.8, HighFactor: 1.2}
	s, err := BuildSurfaceWithSpec(reference(), spec)
	require.NoError(t, err)

	assert.Len(t, s.SpotAxis, 5)
	assert.Len(t, s.VolAxis, 3)
	require.Len(t, s.Prices, 3)
	assert.Len(t, s.Prices[0], 5)
	assert.InDelta(t, 80.0, s.SpotAxis[0], 1e-9)
	assert.InDelta(t, 120.0, s.SpotAxis[4], 1e-9)
}

func TestBuildSurface_InvalidInputFailsWhole(t *testing.T) {
	p := reference()
	p.Spot = 0

	s, err := BuildSurface(p)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNonPositiveSpot)

	p = reference()
	p.Volatility = -0.1
	s, err = BuildSurface(p)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNonPositiveVolatility)
}

func TestSurfaceSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec SurfaceSpec
		ok   bool
	}{
		{"default", DefaultSurfaceSpec(), true},
		{"single cell", SurfaceSpec{SpotPoints: 1, VolPoints: 1, LowFactor: 1, HighFactor: 1}, true},
		{"zero spot points", SurfaceSpec{SpotPoints: 0, VolPoints: 10, LowFactor: 0.5, HighFactor: 1.5}, false},
		{"zero low factor", SurfaceSpec{SpotPoints: 10, VolPoints: 10, LowFactor: 0, HighFactor: 1.5}, false},
		{"inverted factors", SurfaceSpec{SpotPoints: 10, VolPoints: 10, LowFactor: 1.5, HighFactor: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidSurfaceSpec)

			_, err = BuildSurfaceWithSpec(reference(), tt.spec)
			assert.ErrorIs(t, err, ErrInvalidSurfaceSpec)
		})
	}
}

func TestBuildSurfaceParallel_MatchesSerial(t *testing.T) {
	base := MarketParameters{Spot: 90, Strike: 105, Expiry: 1.7, Rate: 0.02, Volatility: 0.45}
	spec := SurfaceSpec{SpotPoints: 17, VolPoints: 23, LowFactor: 0.5, HighFactor: 1.5}

	serial, err := BuildSurfaceWithSpec(base, spec)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 4, 64} {
		parallel, err := BuildSurfaceParallel(context.Background(), base, spec, workers)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}
}

func TestBuildSurfaceParallel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := BuildSurfaceParallel(ctx, reference(), DefaultSurfaceSpec(), 2)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSurfaceParallel_InvalidInput(t *testing.T) {
	p := reference()
	p.Strike = -5
	s, err := BuildSurfaceParallel(context.Background(), p, DefaultSurfaceSpec(), 4)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNonPositiveStrike)
}

func TestMarketParameters_WithReturnsCopy(t *testing.T) {
	p := reference()
	q := p.With(150, 0.9)

	assert.Equal(t, 100.0, p.Spot)
	assert.Equal(t, 0.2, p.Volatility)
	assert.Equal(t, 150.0, q.Spot)
	assert.Equal(t, 0.9, q.Volatility)
	assert.Equal(t, p.Strike, q.Strike)
	assert.Equal(t, p.Expiry, q.Expiry)
	assert.Equal(t, p.Rate, q.Rate)
}

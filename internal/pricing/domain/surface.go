package domain

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidSurfaceSpec 网格定义非法
var ErrInvalidSurfaceSpec = errors.New("invalid surface spec")

// SurfaceSpec 敏感度曲面的网格定义。
// 两个轴都以当前参数为中心，从 LowFactor 倍扫到 HighFactor 倍。
type SurfaceSpec struct {
	SpotPoints int     `json:"spot_points"`
	VolPoints  int     `json:"vol_points"`
	LowFactor  float64 `json:"low_factor"`
	HighFactor float64 `json:"high_factor"`
}

// DefaultSurfaceSpec 10×10，区间 [0.5x, 1.5x]
func DefaultSurfaceSpec() SurfaceSpec {
	return SurfaceSpec{
		SpotPoints: 10,
		VolPoints:  10,
		LowFactor:  0.5,
		HighFactor: 1.5,
	}
}

// Validate 校验网格定义
func (s SurfaceSpec) Validate() error {
	if s.SpotPoints < 1 || s.VolPoints < 1 {
		return fmt.Errorf("%w: points must be >= 1 (spot=%d vol=%d)", ErrInvalidSurfaceSpec, s.SpotPoints, s.VolPoints)
	}
	if s.LowFactor <= 0 || s.LowFactor > s.HighFactor {
		return fmt.Errorf("%w: need 0 < low_factor <= high_factor (low=%v high=%v)", ErrInvalidSurfaceSpec, s.LowFactor, s.HighFactor)
	}
	return nil
}

// Surface 看涨期权价格敏感度曲面。
// Prices[i][j] 对应 VolAxis[i] 与 SpotAxis[j]，其余参数取自 Base。
type Surface struct {
	Base     MarketParameters `json:"base"`
	SpotAxis []float64        `json:"spot_axis"`
	VolAxis  []float64        `json:"vol_axis"`
	Prices   [][]float64      `json:"prices"`
}

// Rows 行数 (波动率轴长度)
func (s *Surface) Rows() int { return len(s.VolAxis) }

// Cols 列数 (标的价格轴长度)
func (s *Surface) Cols() int { return len(s.SpotAxis) }

// Linspace 生成 [start, stop] 上 n 个等距点，两端包含，末元素精确等于 stop。
// n == 1 时返回 [start]，n <= 0 返回空切片。
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := 0; i < n-1; i++ {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// BuildSurface 按默认 10×10 网格生成曲面
func BuildSurface(current MarketParameters) (*Surface, error) {
	return BuildSurfaceWithSpec(current, DefaultSurfaceSpec())
}

// BuildSurfaceWithSpec 顺序计算每个网格单元。任意单元失败则整个曲面失败。
func BuildSurfaceWithSpec(current MarketParameters, spec SurfaceSpec) (*Surface, error) {
	s, err := newSurface(current, spec)
	if err != nil {
		return nil, err
	}
	for i := range s.VolAxis {
		if err := s.fillRow(i); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// BuildSurfaceParallel 按行并发计算，结果与 BuildSurfaceWithSpec 逐位一致。
// workers <= 0 时每行一个 goroutine。首个错误会取消其余行。
func BuildSurfaceParallel(ctx context.Context, current MarketParameters, spec SurfaceSpec, workers int) (*Surface, error) {
	s, err := newSurface(current, spec)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range s.VolAxis {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.fillRow(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup 全部成功但外部 ctx 已取消时，同样视为失败
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func newSurface(current MarketParameters, spec SurfaceSpec) (*Surface, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}

	s := &Surface{
		Base:     current,
		SpotAxis: Linspace(spec.LowFactor*current.Spot, spec.HighFactor*current.Spot, spec.SpotPoints),
		VolAxis:  Linspace(spec.LowFactor*current.Volatility, spec.HighFactor*current.Volatility, spec.VolPoints),
	}
	s.Prices = make([][]float64, len(s.VolAxis))
	for i := range s.Prices {
		s.Prices[i] = make([]float64, len(s.SpotAxis))
	}
	return s, nil
}

// fillRow 计算第 i 行。每行只写自己的切片，可并发调用。
func (s *Surface) fillRow(i int) error {
	vol := s.VolAxis[i]
	for j, spot := range s.SpotAxis {
		price, err := Price(s.Base.With(spot, vol), OptionTypeCall)
		if err != nil {
			return fmt.Errorf("surface cell [%d][%d] (spot=%v vol=%v): %w", i, j, spot, vol, err)
		}
		s.Prices[i][j] = price
	}
	return nil
}

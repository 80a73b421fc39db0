package application

import (
	"time"

	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
)

// QuoteCommand 计算看涨/看跌价格对
type QuoteCommand struct {
	Parameters domain.MarketParameters
}

// SurfaceCommand 生成敏感度曲面。点数为 0 时使用服务默认值。
type SurfaceCommand struct {
	Parameters domain.MarketParameters
	SpotPoints int
	VolPoints  int
}

// QuoteDTO 报价结果。Display 字段为两位小数的货币格式。
type QuoteDTO struct {
	Parameters   domain.MarketParameters `json:"parameters"`
	Call         float64                 `json:"call"`
	Put          float64                 `json:"put"`
	CallDisplay  string                  `json:"call_display"`
	PutDisplay   string                  `json:"put_display"`
	ParityGap    float64                 `json:"parity_gap"`
	CalculatedAt time.Time               `json:"calculated_at"`
}

// SurfaceDTO 曲面结果，附带渲染视图
type SurfaceDTO struct {
	Parameters domain.MarketParameters `json:"parameters"`
	SpotAxis   []float64               `json:"spot_axis"`
	VolAxis    []float64               `json:"vol_axis"`
	Prices     [][]float64             `json:"prices"`
	Heatmap    *domain.Heatmap         `json:"heatmap"`
	DurationMs float64                 `json:"duration_ms"`
}

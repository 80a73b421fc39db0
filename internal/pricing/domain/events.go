package domain

import "time"

const (
	QuoteComputedEventType = "QuoteComputed"
	SurfaceBuiltEventType  = "SurfaceBuilt"
	PricingRejectedType    = "PricingRejected"
)

// QuoteComputedEvent 看涨/看跌价格计算完成事件
type QuoteComputedEvent struct {
	EventID    string           `json:"event_id"`
	Parameters MarketParameters `json:"parameters"`
	CallPrice  float64          `json:"call_price"`
	PutPrice   float64          `json:"put_price"`
	OccurredOn time.Time        `json:"occurred_on"`
}

// SurfaceBuiltEvent 敏感度曲面生成完成事件。只携带摘要，不携带矩阵。
type SurfaceBuiltEvent struct {
	EventID    string           `json:"event_id"`
	Parameters MarketParameters `json:"parameters"`
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	MinPrice   float64          `json:"min_price"`
	MaxPrice   float64          `json:"max_price"`
	DurationMs float64          `json:"duration_ms"`
	OccurredOn time.Time        `json:"occurred_on"`
}

// PricingRejectedEvent 参数校验失败事件
type PricingRejectedEvent struct {
	EventID    string           `json:"event_id"`
	Parameters MarketParameters `json:"parameters"`
	Field      string           `json:"field"`
	Error      string           `json:"error"`
	OccurredOn time.Time        `json:"occurred_on"`
}

package domain

import "context"

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishQuoteComputed 发布价格计算完成事件
	PublishQuoteComputed(ctx context.Context, event QuoteComputedEvent) error

	// PublishSurfaceBuilt 发布曲面生成完成事件
	PublishSurfaceBuilt(ctx context.Context, event SurfaceBuiltEvent) error

	// PublishPricingRejected 发布参数校验失败事件
	PublishPricingRejected(ctx context.Context, event PricingRejectedEvent) error
}

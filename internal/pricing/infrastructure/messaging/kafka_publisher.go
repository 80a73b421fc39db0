package messaging

import (
	"context"

	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
)

// Producer 发送 JSON 消息的最小接口，由 mq.KafkaProducer 实现
type Producer interface {
	SendMessage(ctx context.Context, key, eventType string, value any) error
}

// KafkaEventPublisher 实现 domain.EventPublisher，直接写 Kafka。
// 事件不落库，发布失败由调用方决定是否忽略。
type KafkaEventPublisher struct {
	producer Producer
}

// NewKafkaEventPublisher 创建新的 KafkaEventPublisher 实例
func NewKafkaEventPublisher(producer Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

// PublishQuoteComputed 发布价格计算完成事件
func (p *KafkaEventPublisher) PublishQuoteComputed(ctx context.Context, event domain.QuoteComputedEvent) error {
	return p.producer.SendMessage(ctx, event.EventID, domain.QuoteComputedEventType, event)
}

// PublishSurfaceBuilt 发布曲面生成完成事件
func (p *KafkaEventPublisher) PublishSurfaceBuilt(ctx context.Context, event domain.SurfaceBuiltEvent) error {
	return p.producer.SendMessage(ctx, event.EventID, domain.SurfaceBuiltEventType, event)
}

// PublishPricingRejected 发布参数校验失败事件
func (p *KafkaEventPublisher) PublishPricingRejected(ctx context.Context, event domain.PricingRejectedEvent) error {
	return p.producer.SendMessage(ctx, event.EventID, domain.PricingRejectedType, event)
}

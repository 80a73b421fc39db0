package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
)

type sent struct {
	key       string
	eventType string
	value     any
}

type fakeProducer struct {
	sent []sent
}

func (f *fakeProducer) SendMessage(_ context.Context, key, eventType string, value any) error {
	f.sent = append(f.sent, sent{key, eventType, value})
	return nil
}

func TestKafkaEventPublisher(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewKafkaEventPublisher(prod)
	ctx := context.Background()
	now := time.Now()
	params := domain.MarketParameters{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Volatility: 0.2}

	require.NoError(t, pub.PublishQuoteComputed(ctx, domain.QuoteComputedEvent{EventID: "q-1", Parameters: params, CallPrice: 10.45, PutPrice: 5.57, OccurredOn: now}))
	require.NoError(t, pub.PublishSurfaceBuilt(ctx, domain.SurfaceBuiltEvent{EventID: "s-1", Parameters: params, Rows: 10, Cols: 10, OccurredOn: now}))
	require.NoError(t, pub.PublishPricingRejected(ctx, domain.PricingRejectedEvent{EventID: "r-1", Parameters: params, Field: "spot", OccurredOn: now}))

	require.Len(t, prod.sent, 3)
	assert.Equal(t, sent{"q-1", domain.QuoteComputedEventType, domain.QuoteComputedEvent{EventID: "q-1", Parameters: params, CallPrice: 10.45, PutPrice: 5.57, OccurredOn: now}}, prod.sent[0])
	assert.Equal(t, "s-1", prod.sent[1].key)
	assert.Equal(t, domain.SurfaceBuiltEventType, prod.sent[1].eventType)
	assert.Equal(t, "r-1", prod.sent[2].key)
	assert.Equal(t, domain.PricingRejectedType, prod.sent[2].eventType)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
	"github.com/wyfcoding/optionsurface/pkg/logger"
	"github.com/wyfcoding/optionsurface/pkg/metrics"
)

// ErrTooManyPoints 请求的轴点数超过上限
var ErrTooManyPoints = fmt.Errorf("%w: too many axis points", domain.ErrInvalidSurfaceSpec)

// PricingService 定价门面服务。
// 核心计算在 domain 中完成，这里只负责日志、指标与事件。
type PricingService struct {
	spec      domain.SurfaceSpec
	maxPoints int
	workers   int
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option 服务选项
type Option func(*PricingService)

// WithPublisher 设置事件发布者
func WithPublisher(p domain.EventPublisher) Option {
	return func(s *PricingService) { s.publisher = p }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PricingService) { s.metrics = m }
}

// WithSurfaceSpec 设置默认网格
func WithSurfaceSpec(spec domain.SurfaceSpec) Option {
	return func(s *PricingService) { s.spec = spec }
}

// WithMaxPoints 设置单轴点数上限
func WithMaxPoints(n int) Option {
	return func(s *PricingService) { s.maxPoints = n }
}

// WithParallelism 设置曲面并发行数，0 表示顺序计算
func WithParallelism(workers int) Option {
	return func(s *PricingService) { s.workers = workers }
}

// NewPricingService 构造函数。
func NewPricingService(opts ...Option) *PricingService {
	s := &PricingService{
		spec:      domain.DefaultSurfaceSpec(),
		maxPoints: 50,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SurfaceSpec 当前默认网格
func (s *PricingService) SurfaceSpec() domain.SurfaceSpec {
	return s.spec
}

// Quote 计算看涨与看跌价格
func (s *PricingService) Quote(ctx context.Context, cmd QuoteCommand) (*QuoteDTO, error) {
	p := cmd.Parameters
	q, err := domain.PriceQuote(p)
	if err != nil {
		s.reject(ctx, p, err)
		return nil, fmt.Errorf("quote: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordQuote(string(domain.OptionTypeCall))
		s.metrics.RecordQuote(string(domain.OptionTypePut))
	}
	logger.Debug(ctx, "quote computed",
		"spot", p.Spot, "strike", p.Strike, "expiry", p.Expiry, "rate", p.Rate, "volatility", p.Volatility,
		"call", q.Call, "put", q.Put,
	)

	now := s.now()
	s.publish(ctx, func(pub domain.EventPublisher) error {
		return pub.PublishQuoteComputed(ctx, domain.QuoteComputedEvent{
			EventID:    uuid.NewString(),
			Parameters: p,
			CallPrice:  q.Call,
			PutPrice:   q.Put,
			OccurredOn: now,
		})
	})

	return &QuoteDTO{
		Parameters:   p,
		Call:         q.Call,
		Put:          q.Put,
		CallDisplay:  FormatCurrency(q.Call),
		PutDisplay:   FormatCurrency(q.Put),
		ParityGap:    q.ParityGap(p),
		CalculatedAt: now,
	}, nil
}

// Surface 生成看涨价格敏感度曲面
func (s *PricingService) Surface(ctx context.Context, cmd SurfaceCommand) (*SurfaceDTO, error) {
	spec := s.spec
	if cmd.SpotPoints > 0 {
		spec.SpotPoints = cmd.SpotPoints
	}
	if cmd.VolPoints > 0 {
		spec.VolPoints = cmd.VolPoints
	}
	if s.maxPoints > 0 && (spec.SpotPoints > s.maxPoints || spec.VolPoints > s.maxPoints) {
		return nil, fmt.Errorf("surface: %w (spot=%d vol=%d max=%d)", ErrTooManyPoints, spec.SpotPoints, spec.VolPoints, s.maxPoints)
	}

	defer logger.LogDuration(ctx, "surface build",
		"spot_points", spec.SpotPoints, "vol_points", spec.VolPoints, "workers", s.workers,
	)()

	start := time.Now()
	var (
		surface *domain.Surface
		err     error
	)
	if s.workers > 0 {
		surface, err = domain.BuildSurfaceParallel(ctx, cmd.Parameters, spec, s.workers)
	} else {
		surface, err = domain.BuildSurfaceWithSpec(cmd.Parameters, spec)
	}
	elapsed := time.Since(start)
	if err != nil {
		s.reject(ctx, cmd.Parameters, err)
		return nil, fmt.Errorf("surface: %w", err)
	}

	cells := surface.Rows() * surface.Cols()
	if s.metrics != nil {
		s.metrics.RecordSurface(elapsed.Seconds(), cells)
	}
	heatmap := domain.NewHeatmap(surface)
	durationMs := float64(elapsed.Microseconds()) / 1000

	s.publish(ctx, func(pub domain.EventPublisher) error {
		return pub.PublishSurfaceBuilt(ctx, domain.SurfaceBuiltEvent{
			EventID:    uuid.NewString(),
			Parameters: cmd.Parameters,
			Rows:       surface.Rows(),
			Cols:       surface.Cols(),
			MinPrice:   heatmap.Min,
			MaxPrice:   heatmap.Max,
			DurationMs: durationMs,
			OccurredOn: s.now(),
		})
	})

	return &SurfaceDTO{
		Parameters: cmd.Parameters,
		SpotAxis:   surface.SpotAxis,
		VolAxis:    surface.VolAxis,
		Prices:     surface.Prices,
		Heatmap:    heatmap,
		DurationMs: durationMs,
	}, nil
}

// reject 记录参数校验失败。非参数错误 (如 ctx 取消) 不计入。
func (s *PricingService) reject(ctx context.Context, p domain.MarketParameters, err error) {
	var perr *domain.ParameterError
	if !errors.As(err, &perr) {
		logger.Warn(ctx, "pricing failed", "error", err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordRejection(perr.Field)
	}
	logger.Warn(ctx, "pricing rejected", "field", perr.Field, "value", perr.Value, "error", perr.Err)

	s.publish(ctx, func(pub domain.EventPublisher) error {
		return pub.PublishPricingRejected(ctx, domain.PricingRejectedEvent{
			EventID:    uuid.NewString(),
			Parameters: p,
			Field:      perr.Field,
			Error:      perr.Err.Error(),
			OccurredOn: s.now(),
		})
	})
}

// publish 尽力发布，失败只记日志，不影响计算结果
func (s *PricingService) publish(ctx context.Context, fn func(domain.EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPublishFailure()
		}
		logger.Warn(ctx, "failed to publish pricing event", "error", err)
	}
}

// FormatCurrency 以两位小数的美元格式展示价格
func FormatCurrency(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

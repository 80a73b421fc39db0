// Package domain 定价服务的领域模型：Black-Scholes 定价、敏感度曲面与热力图视图
package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// ErrUnknownOptionType 无法识别的期权类型
var ErrUnknownOptionType = errors.New("unknown option type")

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(OptionTypeCall):
		return OptionTypeCall, nil
	case string(OptionTypePut):
		return OptionTypePut, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOptionType, s)
}

// 参数校验错误。所有错误均包装 ErrInvalidParameters。
var (
	ErrInvalidParameters     = errors.New("invalid market parameters")
	ErrNonPositiveSpot       = fmt.Errorf("%w: spot must be positive", ErrInvalidParameters)
	ErrNonPositiveStrike     = fmt.Errorf("%w: strike must be positive", ErrInvalidParameters)
	ErrNonPositiveVolatility = fmt.Errorf("%w: volatility must be positive", ErrInvalidParameters)
	ErrNegativeExpiry        = fmt.Errorf("%w: expiry must not be negative", ErrInvalidParameters)
	ErrNonFiniteParameter    = fmt.Errorf("%w: parameter must be finite", ErrInvalidParameters)
)

// ParameterError 描述具体哪个字段未通过校验
type ParameterError struct {
	Field string
	Value float64
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ParameterError) Unwrap() error { return e.Err }

// MarketParameters Black-Scholes 模型的五个市场参数。值类型，单次计算内不可变。
type MarketParameters struct {
	Spot       float64 `json:"spot"`       // 标的资产价格 S
	Strike     float64 `json:"strike"`     // 执行价格 K
	Expiry     float64 `json:"expiry"`     // 到期时间 T (年)
	Rate       float64 `json:"rate"`       // 无风险利率 r
	Volatility float64 `json:"volatility"` // 波动率 sigma
}

// With 返回替换了标的价格与波动率的副本，其余参数保持不变
func (p MarketParameters) With(spot, volatility float64) MarketParameters {
	p.Spot = spot
	p.Volatility = volatility
	return p
}

// Validate 校验参数。
// S、K、sigma 必须严格为正，T 不能为负，所有字段必须是有限数。
// T == 0 视为到期边界，合法。
func (p MarketParameters) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"spot", p.Spot},
		{"strike", p.Strike},
		{"expiry", p.Expiry},
		{"rate", p.Rate},
		{"volatility", p.Volatility},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ParameterError{Field: f.name, Value: f.v, Err: ErrNonFiniteParameter}
		}
	}

	switch {
	case p.Spot <= 0:
		return &ParameterError{Field: "spot", Value: p.Spot, Err: ErrNonPositiveSpot}
	case p.Strike <= 0:
		return &ParameterError{Field: "strike", Value: p.Strike, Err: ErrNonPositiveStrike}
	case p.Expiry < 0:
		return &ParameterError{Field: "expiry", Value: p.Expiry, Err: ErrNegativeExpiry}
	case p.Volatility <= 0:
		return &ParameterError{Field: "volatility", Value: p.Volatility, Err: ErrNonPositiveVolatility}
	}
	return nil
}

// Quote 同一组参数下的看涨/看跌价格对
type Quote struct {
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// ParityGap 返回 (C - P) - (S - K·e^(-rT))，理论上为 0
func (q Quote) ParityGap(p MarketParameters) float64 {
	return (q.Call - q.Put) - (p.Spot - p.Strike*math.Exp(-p.Rate*p.Expiry))
}

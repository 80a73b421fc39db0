package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Factors 计算 d1、d2 两个风险调整因子。
// 调用方需保证参数已通过 Validate 且 T > 0。
func Factors(p MarketParameters) (d1, d2 float64) {
	volSqrtT := p.Volatility * math.Sqrt(p.Expiry)
	d1 = (math.Log(p.Spot/p.Strike) + (p.Rate+0.5*p.Volatility*p.Volatility)*p.Expiry) / volSqrtT
	d2 = d1 - volSqrtT
	return d1, d2
}

// Price 使用 Black-Scholes 闭式解计算欧式期权价格。
// T == 0 时返回到期收益 max(S-K,0) / max(K-S,0)。
func Price(p MarketParameters, optionType OptionType) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Expiry == 0 {
		return payoff(p, optionType)
	}

	q := closedForm(p)
	switch optionType {
	case OptionTypeCall:
		return q.Call, nil
	case OptionTypePut:
		return q.Put, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOptionType, optionType)
}

// PriceQuote 用同一组 d1/d2 同时计算看涨与看跌价格
func PriceQuote(p MarketParameters) (Quote, error) {
	if err := p.Validate(); err != nil {
		return Quote{}, err
	}
	if p.Expiry == 0 {
		return Quote{
			Call: math.Max(p.Spot-p.Strike, 0),
			Put:  math.Max(p.Strike-p.Spot, 0),
		}, nil
	}

	return closedForm(p), nil
}

// closedForm 计算 T > 0 时的两腿价格。
// sigma·sqrt(T) 下溢为 0 且 ln(S/K)+rT == 0 时 d1 为 0/0，此时取 sigma -> 0 的极限：
// 看涨 max(S-K·e^(-rT), 0)，看跌 max(K·e^(-rT)-S, 0)。
func closedForm(p MarketParameters) Quote {
	d1, d2 := Factors(p)
	if math.IsNaN(d1) || math.IsNaN(d2) {
		forward := p.Strike * math.Exp(-p.Rate*p.Expiry)
		return Quote{
			Call: math.Max(p.Spot-forward, 0),
			Put:  math.Max(forward-p.Spot, 0),
		}
	}
	return Quote{
		Call: callPrice(p, d1, d2),
		Put:  putPrice(p, d1, d2),
	}
}

func callPrice(p MarketParameters, d1, d2 float64) float64 {
	discount := math.Exp(-p.Rate * p.Expiry)
	return nonNegative(p.Spot*normCdf(d1) - p.Strike*discount*normCdf(d2))
}

func putPrice(p MarketParameters, d1, d2 float64) float64 {
	discount := math.Exp(-p.Rate * p.Expiry)
	return nonNegative(p.Strike*discount*normCdf(-d2) - p.Spot*normCdf(-d1))
}

func payoff(p MarketParameters, optionType OptionType) (float64, error) {
	switch optionType {
	case OptionTypeCall:
		return math.Max(p.Spot-p.Strike, 0), nil
	case OptionTypePut:
		return math.Max(p.Strike-p.Spot, 0), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOptionType, optionType)
}

// nonNegative 抹掉深度虚值时的舍入残差 (如 -1e-17)
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// normCdf 标准正态分布累积分布函数 (内部为 erfc 形式，左尾精度高于 erf)
func normCdf(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsurface/internal/pricing/application"
	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
	"github.com/wyfcoding/optionsurface/pkg/config"
	"github.com/wyfcoding/optionsurface/pkg/logger"
	"github.com/wyfcoding/optionsurface/pkg/response"
)

// PricingHandler HTTP 处理器
// 负责处理与定价相关的 HTTP 请求
type PricingHandler struct {
	svc           *application.PricingService
	bounds        config.InputBounds
	enforceBounds bool
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(svc *application.PricingService, cfg config.PricingConfig) *PricingHandler {
	return &PricingHandler{
		svc:           svc,
		bounds:        cfg.Bounds,
		enforceBounds: cfg.EnforceBounds,
	}
}

// RegisterRoutes 注册路由
func (h *PricingHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/quote", h.Quote)
		api.POST("/surface", h.Surface)
		api.GET("/surface/heatmap", h.Heatmap)
		api.GET("/defaults", h.Defaults)
	}
}

// MarketRequest 市场参数。使用指针以区分缺省与 0 (利率可以为 0)。
type MarketRequest struct {
	Spot       *float64 `json:"spot" form:"spot" binding:"required"`
	Strike     *float64 `json:"strike" form:"strike" binding:"required"`
	Expiry     *float64 `json:"expiry" form:"expiry" binding:"required"`
	Rate       *float64 `json:"rate" form:"rate" binding:"required"`
	Volatility *float64 `json:"volatility" form:"volatility" binding:"required"`
}

// SurfaceRequest 曲面请求
type SurfaceRequest struct {
	MarketRequest
	SpotPoints int `json:"spot_points" form:"spot_points" binding:"omitempty,min=1"`
	VolPoints  int `json:"vol_points" form:"vol_points" binding:"omitempty,min=1"`
}

func (r MarketRequest) parameters() domain.MarketParameters {
	return domain.MarketParameters{
		Spot:       *r.Spot,
		Strike:     *r.Strike,
		Expiry:     *r.Expiry,
		Rate:       *r.Rate,
		Volatility: *r.Volatility,
	}
}

// checkBounds 按参考界面的输入范围校验。核心本身不做范围限制。
func (h *PricingHandler) checkBounds(p domain.MarketParameters) error {
	if !h.enforceBounds {
		return nil
	}
	checks := []struct {
		field string
		v     float64
		r     config.Range
	}{
		{"spot", p.Spot, h.bounds.Spot},
		{"strike", p.Strike, h.bounds.Strike},
		{"expiry", p.Expiry, h.bounds.Expiry},
		{"volatility", p.Volatility, h.bounds.Volatility},
		{"rate", p.Rate, h.bounds.Rate},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return fmt.Errorf("%s=%v out of range [%v, %v]", c.field, c.v, c.r.Min, c.r.Max)
		}
	}
	return nil
}

// Quote 计算看涨/看跌价格
func (h *PricingHandler) Quote(c *gin.Context) {
	var req MarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	params := req.parameters()
	if err := h.checkBounds(params); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "parameter out of range", err.Error())
		return
	}

	dto, err := h.svc.Quote(c.Request.Context(), application.QuoteCommand{Parameters: params})
	if err != nil {
		h.fail(c, "Failed to calculate option price", err)
		return
	}
	response.Success(c, dto)
}

// Surface 生成敏感度曲面
func (h *PricingHandler) Surface(c *gin.Context) {
	var req SurfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	dto, ok := h.buildSurface(c, req)
	if !ok {
		return
	}
	response.Success(c, dto)
}

// Heatmap 以文本表格返回曲面
func (h *PricingHandler) Heatmap(c *gin.Context) {
	var req SurfaceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	dto, ok := h.buildSurface(c, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := dto.Heatmap.Render(&buf); err != nil {
		h.fail(c, "Failed to render heatmap", err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// Defaults 返回参考界面的默认值与输入范围
func (h *PricingHandler) Defaults(c *gin.Context) {
	response.Success(c, gin.H{
		"bounds":         h.bounds,
		"enforce_bounds": h.enforceBounds,
		"surface":        h.svc.SurfaceSpec(),
	})
}

func (h *PricingHandler) buildSurface(c *gin.Context, req SurfaceRequest) (*application.SurfaceDTO, bool) {
	params := req.parameters()
	if err := h.checkBounds(params); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "parameter out of range", err.Error())
		return nil, false
	}

	dto, err := h.svc.Surface(c.Request.Context(), application.SurfaceCommand{
		Parameters: params,
		SpotPoints: req.SpotPoints,
		VolPoints:  req.VolPoints,
	})
	if err != nil {
		h.fail(c, "Failed to build surface", err)
		return nil, false
	}
	return dto, true
}

// fail 将领域错误映射为 HTTP 状态码
func (h *PricingHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, "invalid market parameters", err.Error())
	case errors.Is(err, domain.ErrInvalidSurfaceSpec):
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid surface spec", err.Error())
	default:
		logger.Error(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, msg, err.Error())
	}
}

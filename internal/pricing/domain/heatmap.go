package domain

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// viridisAnchors 色阶锚点，低值深紫到高值亮黄
var viridisAnchors = [...][3]uint8{
	{0x44, 0x01, 0x54},
	{0x3b, 0x52, 0x8b},
	{0x21, 0x91, 0x8c},
	{0x5e, 0xc9, 0x62},
	{0xfd, 0xe7, 0x25},
}

// colorSteps 色阶离散级数
const colorSteps = 256

// HeatmapCell 单元格：原值、标注 (1 位小数) 与颜色
type HeatmapCell struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Heatmap 曲面的渲染视图。
// Rows 自上而下排列，最低波动率在最底行；YTicks 与 Rows 一一对应。
type Heatmap struct {
	Title  string          `json:"title"`
	XLabel string          `json:"x_label"`
	YLabel string          `json:"y_label"`
	XTicks []float64       `json:"x_ticks"`
	YTicks []float64       `json:"y_ticks"`
	Rows   [][]HeatmapCell `json:"rows"`
	Min    float64         `json:"min"`
	Max    float64         `json:"max"`
}

// NewHeatmap 从曲面构造渲染视图
func NewHeatmap(s *Surface) *Heatmap {
	h := &Heatmap{
		Title:  fmt.Sprintf("Call Price Heatmap (Strike: $%s)", decimal.NewFromFloat(s.Base.Strike).String()),
		XLabel: "Spot Price",
		YLabel: "Volatility",
		XTicks: make([]float64, len(s.SpotAxis)),
		YTicks: make([]float64, len(s.VolAxis)),
		Rows:   make([][]HeatmapCell, len(s.Prices)),
	}
	for j, spot := range s.SpotAxis {
		h.XTicks[j] = roundTo(spot, 1)
	}

	h.Min, h.Max = math.Inf(1), math.Inf(-1)
	for _, row := range s.Prices {
		for _, v := range row {
			h.Min = math.Min(h.Min, v)
			h.Max = math.Max(h.Max, v)
		}
	}
	if len(s.Prices) == 0 || len(s.SpotAxis) == 0 {
		h.Min, h.Max = 0, 0
	}

	n := len(s.Prices)
	for k := 0; k < n; k++ {
		src := n - 1 - k
		h.YTicks[k] = roundTo(s.VolAxis[src], 2)
		cells := make([]HeatmapCell, len(s.Prices[src]))
		for j, v := range s.Prices[src] {
			cells[j] = HeatmapCell{
				Value: v,
				Label: fmt.Sprintf("%.1f", v),
				Color: colorFor(v, h.Min, h.Max),
			}
		}
		h.Rows[k] = cells
	}
	return h
}

// Render 输出对齐的文本表格
func (h *Heatmap) Render(w io.Writer) error {
	const cellWidth = 8

	var b strings.Builder
	b.WriteString(h.Title)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%*s\n", cellWidth, h.YLabel)
	for k, row := range h.Rows {
		fmt.Fprintf(&b, "%*.2f |", cellWidth, h.YTicks[k])
		for _, c := range row {
			fmt.Fprintf(&b, "%*s", cellWidth, c.Label)
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(" ", cellWidth) + " +")
	b.WriteString(strings.Repeat("-", cellWidth*len(h.XTicks)))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", cellWidth+2))
	for _, x := range h.XTicks {
		fmt.Fprintf(&b, "%*.1f", cellWidth, x)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%*s%s\n", cellWidth+2, "", h.XLabel)

	_, err := io.WriteString(w, b.String())
	return err
}

// colorFor 将值按 [min,max] 归一化后映射到色阶。min == max 时取中间色。
func colorFor(v, lo, hi float64) string {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	step := math.Round(t * (colorSteps - 1))
	t = step / (colorSteps - 1)

	seg := float64(len(viridisAnchors) - 1)
	pos := t * seg
	idx := int(math.Floor(pos))
	if idx >= len(viridisAnchors)-1 {
		idx = len(viridisAnchors) - 2
	}
	frac := pos - float64(idx)
	a, z := viridisAnchors[idx], viridisAnchors[idx+1]

	var rgb [3]uint8
	for c := range rgb {
		rgb[c] = uint8(math.Round(float64(a[c]) + frac*(float64(z[c])-float64(a[c]))))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// roundTo 四舍六入五成双，与常见绘图库的刻度取整一致
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}

// pricing-cli 在终端打印 Black-Scholes 看涨/看跌价格与看涨价格热力图
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wyfcoding/optionsurface/internal/pricing/application"
	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
	"github.com/wyfcoding/optionsurface/pkg/config"
	"github.com/wyfcoding/optionsurface/pkg/logger"
)

// maxPoints 单轴点数上限，与服务默认值一致
const maxPoints = 50

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pricing-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		spot     = fs.Float64("spot", 100, "current asset price")
		strike   = fs.Float64("strike", 100, "strike price")
		expiry   = fs.Float64("expiry", 1.0, "years to expiry")
		rate     = fs.Float64("rate", 0.05, "risk-free interest rate")
		vol      = fs.Float64("vol", 0.2, "volatility (sigma)")
		points   = fs.Int("points", 10, "grid points per heatmap axis (1-50)")
		asJSON   = fs.Bool("json", false, "print the surface as JSON")
		logLevel = fs.String("log-level", "warn", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *points < 1 {
		return fmt.Errorf("-points must be >= 1, got %d", *points)
	}

	logger.SetDefault(logger.New(config.LoggerConfig{Level: *logLevel, Format: "text"}, stderr))

	params := domain.MarketParameters{
		Spot:       *spot,
		Strike:     *strike,
		Expiry:     *expiry,
		Rate:       *rate,
		Volatility: *vol,
	}
	svc := application.NewPricingService(application.WithMaxPoints(maxPoints))
	ctx := context.Background()

	quote, err := svc.Quote(ctx, application.QuoteCommand{Parameters: params})
	if err != nil {
		return err
	}
	surface, err := svc.Surface(ctx, application.SurfaceCommand{
		Parameters: params,
		SpotPoints: *points,
		VolPoints:  *points,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Quote   *application.QuoteDTO   `json:"quote"`
			Surface *application.SurfaceDTO `json:"surface"`
		}{quote, surface})
	}

	fmt.Fprintf(stdout, "CALL Option Price: %s\n", quote.CallDisplay)
	fmt.Fprintf(stdout, "PUT Option Price:  %s\n\n", quote.PutDisplay)
	return surface.Heatmap.Render(stdout)
}

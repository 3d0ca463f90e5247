package quizgen

import (
	"fmt"

	"github.com/yungbote/pylearn-backend/internal/learning/render"
)

// ChartPNG draws the per-category performance bars.
func ChartPNG(fonts *render.FontSet, topic string, a Analysis) ([]byte, error) {
	bars := make([]render.Bar, 0, len(a.Performance))
	for _, p := range a.Performance {
		bars = append(bars, render.Bar{
			Label: p.Category,
			Ratio: p.Ratio,
			Note:  fmt.Sprintf("(%d/%d)", p.Correct, p.Total),
		})
	}
	return render.BarChartPNG(fonts, "Performance: "+topic, bars, StrengthThreshold, WeaknessThreshold)
}

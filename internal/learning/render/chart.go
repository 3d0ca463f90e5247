package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
)

// Bar is one category of a performance chart. Ratio is in [0,1].
type Bar struct {
	Label string
	Ratio float64
	Note  string
}

var (
	chartStrong = color.NRGBA{R: 0x2E, G: 0xB8, B: 0x72, A: 0xFF}
	chartMid    = color.NRGBA{R: 0xF2, G: 0xB1, B: 0x34, A: 0xFF}
	chartWeak   = color.NRGBA{R: 0xE5, G: 0x4B, B: 0x4B, A: 0xFF}
	chartAxis   = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF}
)

// BarChartPNG draws a horizontal bar per category, colored by the strong/weak thresholds.
func BarChartPNG(fonts *FontSet, title string, bars []Bar, strongAt, weakBelow float64) ([]byte, error) {
	const (
		width    = 900
		rowH     = 56.0
		left     = 220.0
		right    = 120.0
		top      = 80.0
		bottom   = 40.0
		barInset = 10.0
	)
	if fonts == nil {
		fonts = &FontSet{}
	}
	height := int(top + bottom + rowH*float64(max(len(bars), 1)))
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetFontFace(fonts.Face(26))
	dc.SetColor(chartAxis)
	dc.DrawStringAnchored(title, width/2, top/2, 0.5, 0.5)

	dc.SetFontFace(fonts.Face(18))
	plotW := width - left - right
	for i, b := range bars {
		y := top + float64(i)*rowH
		ratio := b.Ratio
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		switch {
		case ratio >= strongAt:
			dc.SetColor(chartStrong)
		case ratio < weakBelow:
			dc.SetColor(chartWeak)
		default:
			dc.SetColor(chartMid)
		}
		dc.DrawRectangle(left, y+barInset, plotW*ratio, rowH-2*barInset)
		dc.Fill()

		dc.SetColor(chartAxis)
		dc.DrawStringAnchored(b.Label, left-12, y+rowH/2, 1, 0.5)
		label := fmt.Sprintf("%.0f%%", ratio*100)
		if b.Note != "" {
			label += " " + b.Note
		}
		dc.DrawStringAnchored(label, left+plotW*ratio+8, y+rowH/2, 0, 0.5)
	}
	dc.SetLineWidth(2)
	dc.DrawLine(left, top, left, float64(height)-bottom)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
)

const (
	SlideWidth  = 1280
	SlideHeight = 720

	maxCodeLines = 12
)

var (
	slideBG     = color.NRGBA{R: 0x1E, G: 0x27, B: 0x3A, A: 0xFF}
	slideAccent = color.NRGBA{R: 0xFF, G: 0xD4, B: 0x3B, A: 0xFF}
	slideText   = color.NRGBA{R: 0xF5, G: 0xF7, B: 0xFA, A: 0xFF}
	codeBG      = color.NRGBA{R: 0x11, G: 0x16, B: 0x22, A: 0xFF}
	codeText    = color.NRGBA{R: 0x9C, G: 0xDC, B: 0xFE, A: 0xFF}
)

// Slide is the drawable content of one storyboard frame.
type Slide struct {
	Title   string
	Bullets []string
	Code    string
}

type SlideRenderer struct {
	fonts *FontSet
}

func NewSlideRenderer(fonts *FontSet) *SlideRenderer {
	if fonts == nil {
		fonts = &FontSet{}
	}
	return &SlideRenderer{fonts: fonts}
}

// pen draws text at a pixel size. The bitmap fallback has one size, so it is scaled instead.
type pen struct {
	dc    *gg.Context
	scale float64
}

func (r *SlideRenderer) pen(dc *gg.Context, size float64) pen {
	dc.SetFontFace(r.fonts.Face(size))
	if r.fonts.Scalable() {
		return pen{dc: dc, scale: 1}
	}
	return pen{dc: dc, scale: size / 13}
}

func (p pen) draw(s string, x, y float64) {
	p.dc.Push()
	p.dc.Scale(p.scale, p.scale)
	p.dc.DrawString(s, x/p.scale, y/p.scale)
	p.dc.Pop()
}

func (p pen) wrap(s string, width float64) []string {
	return p.dc.WordWrap(s, width/p.scale)
}

// RenderPNG draws one slide. index and total drive the footer progress bar.
func (r *SlideRenderer) RenderPNG(s Slide, index, total int) ([]byte, error) {
	const margin = 64.0
	dc := gg.NewContext(SlideWidth, SlideHeight)

	dc.SetColor(slideBG)
	dc.DrawRectangle(0, 0, SlideWidth, SlideHeight)
	dc.Fill()

	y := margin + 40
	title := r.pen(dc, 48)
	dc.SetColor(slideAccent)
	for _, line := range title.wrap(strings.TrimSpace(s.Title), SlideWidth-2*margin) {
		title.draw(line, margin, y)
		y += 58
	}
	y += 20

	codeTop := float64(SlideHeight)
	if code := strings.TrimRight(s.Code, "\n"); code != "" {
		lines := strings.Split(code, "\n")
		if len(lines) > maxCodeLines {
			lines = lines[:maxCodeLines]
		}
		const lineH = 28.0
		boxH := float64(len(lines))*lineH + 32
		codeTop = SlideHeight - margin - boxH
		dc.SetColor(codeBG)
		dc.DrawRoundedRectangle(margin, codeTop, SlideWidth-2*margin, boxH, 12)
		dc.Fill()

		mono := r.pen(dc, 22)
		dc.SetColor(codeText)
		for i, line := range lines {
			mono.draw(strings.ReplaceAll(line, "\t", "    "), margin+24, codeTop+16+float64(i+1)*lineH-6)
		}
	}

	body := r.pen(dc, 30)
	dc.SetColor(slideText)
	for _, b := range s.Bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		lines := body.wrap(b, SlideWidth-2*margin-40)
		if y+float64(len(lines))*40 > codeTop-16 {
			break
		}
		body.draw("-", margin, y)
		for _, line := range lines {
			body.draw(line, margin+40, y)
			y += 40
		}
		y += 12
	}

	if total > 0 {
		dc.SetColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x33})
		dc.DrawRectangle(0, SlideHeight-8, SlideWidth, 8)
		dc.Fill()
		dc.SetColor(slideAccent)
		dc.DrawRectangle(0, SlideHeight-8, SlideWidth*float64(index+1)/float64(total), 8)
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

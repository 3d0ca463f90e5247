package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSet hands out font faces. truetype faces cache glyphs and are not safe for
// concurrent use, so every caller gets its own face.
type FontSet struct {
	ttf *truetype.Font
}

// LoadFontSet parses a TTF file. An empty path yields the built-in bitmap font.
func LoadFontSet(fontPath string) (*FontSet, error) {
	if strings.TrimSpace(fontPath) == "" {
		return &FontSet{}, nil
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &FontSet{ttf: parsedFont}, nil
}

func (fs *FontSet) Scalable() bool { return fs != nil && fs.ttf != nil }

func (fs *FontSet) Face(size float64) font.Face {
	if !fs.Scalable() {
		return basicfont.Face7x13
	}
	return truetype.NewFace(fs.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

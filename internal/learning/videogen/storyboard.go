package videogen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/pylearn-backend/internal/learning/render"
)

const (
	minSlideSeconds = 2
	maxSlideSeconds = 30
	maxSlides       = 24
)

// Storyboard is the animation code of a tutorial: an ordered list of timed slides.
type Storyboard struct {
	Slides []Slide `json:"slides"`
}

type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Code    string   `json:"code"`
	Seconds int      `json:"seconds"`
}

func (s Slide) drawable() render.Slide {
	return render.Slide{Title: s.Title, Bullets: s.Bullets, Code: s.Code}
}

// ParseStoryboard decodes and normalizes a storyboard. Slides without a title,
// bullets or code are dropped.
func ParseStoryboard(raw string) (Storyboard, error) {
	var sb Storyboard
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &sb); err != nil {
		return Storyboard{}, fmt.Errorf("decode storyboard: %w", err)
	}
	sb.normalize()
	if len(sb.Slides) == 0 {
		return Storyboard{}, fmt.Errorf("storyboard has no slides")
	}
	return sb, nil
}

func (sb *Storyboard) normalize() {
	out := make([]Slide, 0, len(sb.Slides))
	for _, s := range sb.Slides {
		s.Title = strings.TrimSpace(s.Title)
		s.Code = strings.TrimRight(s.Code, " \n\t")
		bullets := make([]string, 0, len(s.Bullets))
		for _, b := range s.Bullets {
			if b = strings.TrimSpace(b); b != "" {
				bullets = append(bullets, b)
			}
		}
		s.Bullets = bullets
		if s.Title == "" && len(s.Bullets) == 0 && s.Code == "" {
			continue
		}
		if s.Seconds < minSlideSeconds {
			s.Seconds = minSlideSeconds
		}
		if s.Seconds > maxSlideSeconds {
			s.Seconds = maxSlideSeconds
		}
		out = append(out, s)
		if len(out) == maxSlides {
			break
		}
	}
	sb.Slides = out
}

func (sb Storyboard) Encode() (string, error) {
	raw, err := json.Marshal(sb)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (sb Storyboard) TotalSeconds() int {
	total := 0
	for _, s := range sb.Slides {
		total += s.Seconds
	}
	return total
}

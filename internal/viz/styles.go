package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func recordingBadge() string {
	return fg(CurrentTheme.Bad).Bold(true).Blink(true).Render("● REC")
}

// GradientText colours each rune of text along a blend from one colour to
// the other. Colours that do not parse as hex render the text unstyled.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(from))
	b, errB := colorful.Hex(string(to))
	if errA != nil || errB != nil {
		return text
	}

	var out strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		out.WriteString(fg(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return out.String()
}

// Meter draws frac of width as a filled bar, coloured by how full it is.
func Meter(frac float64, width int) string {
	filled := int(frac*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case frac > 0.8:
		return fg(CurrentTheme.Good).Render(bar)
	case frac > 0.4:
		return fg(CurrentTheme.Warn).Render(bar)
	}
	return fg(CurrentTheme.Bad).Render(bar)
}

// Sparkline squeezes values into width cells, each the mean of its bucket.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	cells := min(width, len(values))
	means := make([]float64, cells)
	for i := range means {
		lo, hi := i*len(values)/cells, (i+1)*len(values)/cells
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		means[i] = sum / float64(hi-lo)
	}

	lo, hi := means[0], means[0]
	for _, v := range means {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var out strings.Builder
	for _, v := range means {
		norm := (v - lo) / span
		idx := min(len(sparkRunes)-1, int(norm*float64(len(sparkRunes)-1)))
		out.WriteRune(sparkRunes[idx])
	}
	return fg(CurrentTheme.Title).Render(out.String())
}

// Rule is a muted horizontal line with an optional centred label.
func Rule(label string, width int) string {
	if label == "" {
		return fg(CurrentTheme.Muted).Render(strings.Repeat("─", width))
	}
	label = " " + label + " "
	side := max(1, (width-len([]rune(label)))/2)
	return fg(CurrentTheme.Muted).Render(strings.Repeat("─", side) + label + strings.Repeat("─", side))
}

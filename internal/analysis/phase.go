package analysis

import (
	"strings"

	"github.com/san-kum/botsim/internal/body"
	"github.com/san-kum/botsim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XComponent, YComponent string
	Points                 []Point
}

// PhasePortrait pairs two components of one recorded body, frame by frame.
func PhasePortrait(result *sim.Result, id body.ID, xComp, yComp string) (*PhasePortrait2D, error) {
	xs, err := result.Series(id, xComp)
	if err != nil {
		return nil, err
	}
	ys, err := result.Series(id, yComp)
	if err != nil {
		return nil, err
	}

	portrait := &PhasePortrait2D{
		XComponent: xComp,
		YComponent: yComp,
		Points:     make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	Points []Point
}

// PoincareSectionOf records (recordX, recordY) of one body each time
// crossComp rises through threshold, interpolated between frames.
func PoincareSectionOf(result *sim.Result, id body.ID, crossComp string, threshold float64, recordX, recordY string) (*PoincareSection, error) {
	cross, err := result.Series(id, crossComp)
	if err != nil {
		return nil, err
	}
	xs, err := result.Series(id, recordX)
	if err != nil {
		return nil, err
	}
	ys, err := result.Series(id, recordY)
	if err != nil {
		return nil, err
	}

	section := &PoincareSection{Points: make([]Point, 0)}
	for i := 1; i < len(cross); i++ {
		prev, curr := cross[i-1], cross[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		section.Points = append(section.Points, Point{
			X: xs[i-1] + frac*(xs[i]-xs[i-1]),
			Y: ys[i-1] + frac*(ys[i]-ys[i-1]),
		})
	}
	return section, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}

	portrait := &PhasePortrait2D{Points: section.Points}
	return PhasePortraitToASCII(portrait, width, height)
}

package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
)

// RunToSVG renders the current frame of a run as vector circles, one per
// particle, plus the nodal overlay. Call it from a frame hook or System.View.
func RunToSVG(r *particle.Run, st particle.Style, fadeFrames int) string {
	if r == nil {
		return ""
	}

	d := r.Dims()
	w, h := float64(d.Width), float64(d.Height)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s" fill-opacity="%.2f"/>
`, d.Width, d.Height, d.Width, d.Height, hex(st.Background), alpha(st.Background)))

	fill := fmt.Sprintf("#%02x%02x%02x", st.Particle[0], st.Particle[1], st.Particle[2])
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", fill))
	for _, p := range r.Particles() {
		a, size := st.Appearance(p, r.Intensity(p.Pos), fadeFrames)
		if a <= 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill-opacity="%.3f"/>
`, p.Pos.X*w, p.Pos.Y*h, size, a))
	}
	sb.WriteString("</g>\n")

	// the overlay belongs to the frame that was last drawn
	t := max(r.T()-1, 0)
	grid := field.NewGrid(field.Func(r.Pattern()), float64(t))
	sb.WriteString(fmt.Sprintf("<g fill=\"none\" stroke=\"%s\" stroke-opacity=\"%.2f\" stroke-width=\"%.1f\">\n",
		hex(st.Overlay), alpha(st.Overlay), st.OverlayWidth))
	for _, n := range grid.Nodes(st.OverlayThreshold) {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, n.X*w, n.Y*h, st.OverlayRadius))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots a metric series as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#f9fafb"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

func alpha(c color.Color) float64 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(n.A) / 255
}

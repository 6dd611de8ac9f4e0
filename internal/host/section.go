package host

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chladni/internal/field"
)

// Sections is the number of horizontally scrolled sections; section i shows
// pattern i.
const Sections = field.Count

// SwipeThreshold is the minimum horizontal travel, in pixels, of a swipe.
const SwipeThreshold = 50

var sectionNames = [Sections]string{"hero", "growth", "code", "design", "cta"}

func SectionName(i int) string {
	if i < 0 || i >= Sections {
		return ""
	}
	return sectionNames[i]
}

// Clamp limits i to a valid section index.
func Clamp(i int) int {
	return max(0, min(Sections-1, i))
}

// SectionFromScroll maps a horizontal scroll offset to the nearest section.
func SectionFromScroll(scrollLeft, width float64) int {
	if width <= 0 || math.IsNaN(scrollLeft) {
		return 0
	}
	return Clamp(int(math.Round(scrollLeft / width)))
}

// Swipe returns the section after a touch gesture that travelled dx, dy
// (start minus end). Mostly vertical or short gestures leave it unchanged.
func Swipe(current int, dx, dy float64) int {
	if math.Abs(dx) <= math.Abs(dy) || math.Abs(dx) <= SwipeThreshold {
		return current
	}
	if dx > 0 {
		return Clamp(current + 1)
	}
	return Clamp(current - 1)
}

// FreqLabel is the frequency indicator, e.g. "FREQ: 01/05".
func FreqLabel(section int) string {
	return fmt.Sprintf("FREQ: %02d/%02d", section+1, Sections)
}

// Dots renders the navigation dots with the current section filled.
func Dots(section int) string {
	var sb strings.Builder
	for i := 0; i < Sections; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i == section {
			sb.WriteString("●")
		} else {
			sb.WriteString("○")
		}
	}
	return sb.String()
}

// Package render turns annotations into display-ready badges.
package render

import (
	"fmt"
	"strings"

	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/core/ports"
	"go.trai.ch/tally/internal/ui/style"
)

var _ ports.BadgeRenderer = (*Renderer)(nil)

// Renderer produces plain-text badges. Render is a pure function so the
// engine can memoize its output.
type Renderer struct{}

// NewRenderer creates a badge renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render formats the annotation as a human-readable badge. Estimated counts
// are marked with a leading tilde.
func (r *Renderer) Render(a domain.Annotation) domain.Badge {
	count := formatCount(a.Lines)
	noun := "lines"
	if a.Lines == 1 {
		noun = "line"
	}

	if a.Estimated {
		return domain.Badge{
			Text:    style.Tilde + count + " " + noun,
			Tooltip: fmt.Sprintf("approximately %s %s, estimated from file size", count, noun),
		}
	}
	return domain.Badge{
		Text:    count + " " + noun,
		Tooltip: fmt.Sprintf("%s %s", count, noun),
	}
}

// Styled returns the badge text with terminal styling applied: exact counts
// in blue, estimates in muted italics.
func Styled(a domain.Annotation) string {
	badge := (&Renderer{}).Render(a)
	if a.Estimated {
		return style.Estimate.Render(badge.Text)
	}
	return style.Count.Render(badge.Text)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	if n < 0 {
		n = 0
	}
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

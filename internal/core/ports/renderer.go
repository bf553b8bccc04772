package ports

import "go.trai.ch/tally/internal/core/domain"

// BadgeRenderer turns a computed annotation into its display-ready form.
// Render must be a pure function of its input; the engine memoizes results.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type BadgeRenderer interface {
	Render(a domain.Annotation) domain.Badge
}

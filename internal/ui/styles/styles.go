// Package styles centralizes the lipgloss colors shared across views.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// TextPrimaryColor is used for titles and emphasized text.
	TextPrimaryColor = lipgloss.Color("15")
	// TextDescriptionColor is used for body text.
	TextDescriptionColor = lipgloss.Color("252")
	// TextMutedColor is used for hints and de-emphasized chrome.
	TextMutedColor = lipgloss.Color("240")

	// StatusSuccessColor marks good news (arrival, active voice).
	StatusSuccessColor = lipgloss.Color("42")
	// StatusWarningColor marks degraded operation.
	StatusWarningColor = lipgloss.Color("214")
	// StatusErrorColor marks failures.
	StatusErrorColor = lipgloss.Color("196")

	// UserColor marks the shopper's cell on the floor map.
	UserColor = lipgloss.Color("39")
	// ShelfColor draws shelving.
	ShelfColor = lipgloss.Color("244")
	// TargetColor marks the destination cell.
	TargetColor = lipgloss.Color("205")
	// TrailColor draws the planned route.
	TrailColor = lipgloss.Color("114")
)

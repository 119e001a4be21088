package enrichment

import "strings"

// BotType classifies a visitor from its user-agent string.
type BotType string

const (
	BotGoogle  BotType = "Googlebot"
	BotSemrush BotType = "SemrushBot"
	BotAhrefs  BotType = "AhrefsBot"
	BotOther   BotType = "OtherBot"
	BotHuman   BotType = "Human"
)

// genericBotMarkers flag a crawler when no named bot matched.
var genericBotMarkers = []string{"bot", "spider", "crawl"}

// ClassifyBot derives a BotType from a user-agent string. Matching is
// case-insensitive substring, first match wins: named crawlers before the
// generic markers, Human otherwise.
func ClassifyBot(userAgent string) BotType {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "google"):
		return BotGoogle
	case strings.Contains(ua, "semrush"):
		return BotSemrush
	case strings.Contains(ua, "ahrefs"):
		return BotAhrefs
	}

	for _, marker := range genericBotMarkers {
		if strings.Contains(ua, marker) {
			return BotOther
		}
	}

	return BotHuman
}

// IsHuman reports whether a bottype cell (possibly uploaded verbatim rather
// than derived here) names human traffic.
func IsHuman(botType string) bool {
	return botType == string(BotHuman)
}

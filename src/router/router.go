// Package router classifies a user message into a model capacity tier.
package router

import (
	"regexp"
	"strings"
)

// Tier is a model capacity category.
type Tier string

// Available tiers, cheapest first.
const (
	TierFast    Tier = "fast"
	TierChat    Tier = "chat"
	TierCode    Tier = "code"
	TierComplex Tier = "complex"
)

// Thresholds for the routing heuristic.
const (
	longMessageLen  = 500
	shortMessageLen = 50
	keywordLimit    = 3
)

var (
	technicalKeywords = []string{"code", "function", "class", "api", "database", "schema"}
	actionVerbPattern = regexp.MustCompile(`(?i)\b(write|generate|create)\b`)
)

// Route selects a tier for the given message content. It is pure and
// deterministic: identical input always yields the identical tier.
func Route(content string) Tier {
	lower := strings.ToLower(content)

	keywords := 0
	for _, kw := range technicalKeywords {
		keywords += strings.Count(lower, kw)
	}

	switch {
	case len(content) > longMessageLen || keywords > keywordLimit:
		return TierComplex
	case actionVerbPattern.MatchString(content) && keywords > 0:
		return TierCode
	case len(content) < shortMessageLen:
		return TierFast
	default:
		return TierChat
	}
}

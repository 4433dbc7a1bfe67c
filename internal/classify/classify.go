// Package classify assigns a news category to articles whose provider did
// not supply one, using weighted keyword matching on title and description.
package classify

import (
	"strings"
	"unicode"
)

// FallbackCategory labels articles no keyword set claims.
const FallbackCategory = "general"

// Categories returns the known categories in canonical order.
func Categories() []string {
	return []string{"business", "technology", "science", "health", "sports", "entertainment", "politics", "world"}
}

var categoryKeywords = map[string][]string{
	"business": {
		"market", "stocks", "shares", "earnings", "revenue", "profit", "ipo",
		"merger", "acquisition", "startup", "economy", "inflation", "interest rate",
		"bank", "investor", "trade", "tariff", "ceo", "quarterly",
	},
	"technology": {
		"software", "hardware", "smartphone", "chip", "semiconductor", "ai",
		"artificial intelligence", "machine learning", "robot", "cloud", "app",
		"cybersecurity", "data breach", "silicon valley", "gadget", "quantum",
		"startup funding", "social media", "streaming",
	},
	"science": {
		"research", "study finds", "scientists", "discovery", "nasa", "space",
		"telescope", "climate", "species", "physics", "genome", "experiment",
		"fossil", "asteroid", "quantum physics", "laboratory",
	},
	"health": {
		"health", "hospital", "vaccine", "virus", "outbreak", "disease", "cancer",
		"treatment", "drug", "fda", "clinical trial", "mental health", "diet",
		"obesity", "pandemic", "surgery", "patients",
	},
	"sports": {
		"match", "tournament", "championship", "league", "season", "coach",
		"player", "goal", "olympics", "world cup", "final", "cricket",
		"football", "soccer", "tennis", "basketball", "baseball", "formula 1",
	},
	"entertainment": {
		"film", "movie", "box office", "celebrity", "album", "concert", "actor",
		"actress", "director", "netflix", "premiere", "festival", "grammy",
		"oscar", "tv series", "trailer", "music",
	},
	"politics": {
		"election", "parliament", "congress", "senate", "president", "minister",
		"policy", "legislation", "campaign", "vote", "ballot", "government",
		"opposition", "coalition", "white house", "supreme court",
	},
	"world": {
		"united nations", "border", "treaty", "diplomacy", "sanctions", "conflict",
		"war", "ceasefire", "refugee", "summit", "embassy", "foreign minister",
		"nato", "humanitarian", "peace talks",
	},
}

// Classify picks the category whose keywords score highest against the
// title and description. Title hits are weighted double. Articles nothing
// claims fall back to the general bucket.
func Classify(title, description string) string {
	titleTokens := tokenize(title)
	descTokens := tokenize(description)
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	best := ""
	bestScore := 0

	for _, cat := range Categories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(kw, " ") {
				if strings.Contains(titleLower, kw) {
					score += 2
				}
				if strings.Contains(descLower, kw) {
					score++
				}
				continue
			}
			for _, t := range titleTokens {
				if t == kw {
					score += 2
				}
			}
			for _, t := range descTokens {
				if t == kw {
					score++
				}
			}
		}
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}

	if bestScore == 0 {
		return FallbackCategory
	}
	return best
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Package followup holds the shared short-message heuristics used by both
// the scope classifier's inheritance step and the follow-up resolver. Both
// call sites read the same word lists so the two can never drift apart.
package followup

import "strings"

// ShortTokenLimit caps how many whitespace tokens a message may have and
// still be treated as a candidate follow-up.
const ShortTokenLimit = 5

var referencePronouns = []string{"it", "this", "that", "they", "them", "these", "those"}

var topicalKeywords = []string{
	"price", "cost", "expensive", "cheap", "much", "warranty",
	"compatible", "compatibility", "work with", "fit",
	"install", "installation", "replace", "removing",
	"shipping", "delivery", "arrives", "get here",
}

// IsShort reports whether the message is short enough to be a follow-up.
func IsShort(text string) bool {
	return len(strings.Fields(text)) <= ShortTokenLimit
}

// MentionsPronoun reports whether the message contains a referential pronoun
// as a whole word.
func MentionsPronoun(text string) bool {
	lower := strings.ToLower(text)
	for _, pronoun := range referencePronouns {
		if strings.Contains(lower, " "+pronoun+" ") ||
			strings.HasPrefix(lower, pronoun+" ") ||
			strings.TrimSpace(lower) == pronoun {
			return true
		}
	}
	return false
}

// MentionsTopic reports whether the message touches follow-up vocabulary
// (price, compatibility, installation, shipping).
func MentionsTopic(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range topicalKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Likely reports whether a short message with prior history should be
// treated as a follow-up to an earlier turn.
func Likely(text string) bool {
	return IsShort(text) && (MentionsPronoun(text) || MentionsTopic(text))
}

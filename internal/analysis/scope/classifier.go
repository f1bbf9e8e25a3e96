// Package scope decides whether a message falls inside the assistant's
// supported domain of refrigerator and dishwasher parts.
package scope

import (
	"regexp"
	"strings"

	"github.com/partdesk/backend/internal/analysis/followup"
	"github.com/partdesk/backend/internal/model/chat"
)

// Reason records which classification step accepted the message.
type Reason string

const (
	ReasonKeyword      Reason = "keywordMatch"
	ReasonModelPattern Reason = "modelPatternMatch"
	ReasonFollowUp     Reason = "followUpInherited"
	ReasonNone         Reason = "none"
)

// Decision is the classification outcome logged onto the user turn.
type Decision struct {
	InScope bool
	Reason  Reason
}

var applianceKeywords = []string{
	"refrigerator", "fridge", "freezer", "ice maker", "water filter",
	"dishwasher", "dish", "rinse aid", "rack", "spray arm",
	"part", "replacement", "repair", "not working",
	"leaking", "cold", "cooling", "ice", "water", "door", "seal",
	"model", "whirlpool", "ge", "samsung", "lg", "maytag", "frigidaire",
	"kenmore", "bosch", "kitchenaid",
}

var modelShapePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[A-Z]{2,4}\d{3,5}[A-Z0-9]{0,5}\b`),
	regexp.MustCompile(`(?i)\bWDT\d{3}[A-Z]{4}\d?\b`),
	regexp.MustCompile(`(?i)\bWRF\d{3}[A-Z]{4}\d?\b`),
	regexp.MustCompile(`(?i)\bMDB\d{4}[A-Z]{3}\d?\b`),
}

// Classify runs the three scope tests in order: domain keywords, model-number
// shape, then follow-up inheritance from the most recent in-scope user turn.
// The first satisfied test determines the decision; a pure function of the
// text and the history's recorded scope flags.
func Classify(text string, history []chat.Turn) Decision {
	lower := strings.ToLower(text)

	for _, keyword := range applianceKeywords {
		if strings.Contains(lower, keyword) {
			return Decision{InScope: true, Reason: ReasonKeyword}
		}
	}

	for _, re := range modelShapePatterns {
		if re.MatchString(text) {
			return Decision{InScope: true, Reason: ReasonModelPattern}
		}
	}

	if len(history) > 0 && followup.Likely(text) {
		for i := len(history) - 1; i >= 0; i-- {
			turn := history[i]
			if turn.Role == chat.RoleUser && turn.InScope != nil && *turn.InScope {
				return Decision{InScope: true, Reason: ReasonFollowUp}
			}
		}
	}

	return Decision{InScope: false, Reason: ReasonNone}
}

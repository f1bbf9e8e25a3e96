package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/partdesk/backend/internal/analysis/extract"
	"github.com/partdesk/backend/internal/model/part"
)

// Keyword sets for the specialized instruction blocks. Independent of the
// scope vocabulary and of each other.
var (
	installKeywords = []string{"install"}
	priceKeywords   = []string{"price", "cost", "expensive", "how much"}
	symptomKeywords = []string{
		"not working", "broken", "leaking", "noisy", "problem", "issue",
		"error", "fix", "stopped", "won't", "doesn't", "failed",
	}
)

// assembled carries the grounding produced for one message.
type assembled struct {
	// Rewritten equals the original text unless a follow-up binding was
	// resolved, in which case it restates the part so generation does not
	// depend on conversational memory.
	Rewritten string
	Grounding string
	Primary   *part.Record
}

// assemble builds the grounding context block for a message. Read-only:
// the only side effects are catalog lookups.
func (s *Service) assemble(ctx context.Context, text string, binding *part.Record) assembled {
	rewritten := text
	if binding != nil {
		rewritten = fmt.Sprintf("Regarding part %s (%s): %s", binding.PartID, binding.Name, text)
	}
	lower := strings.ToLower(rewritten)

	// A resolved binding is the authoritative entity source; otherwise fall
	// back to extraction over the effective text.
	var partIDs []string
	if binding != nil {
		partIDs = []string{binding.PartID}
	} else {
		partIDs = extract.PartIDs(rewritten)
	}
	modelNumbers := extract.ModelNumbers(rewritten)

	var b strings.Builder
	var primary *part.Record

	for _, id := range partIDs {
		record := s.catalog.FetchPart(ctx, id)
		if record == nil {
			continue
		}
		if primary == nil {
			primary = record
		}
		fmt.Fprintf(&b, "\n\nPart information: %s", part.FormatParts([]part.Record{*record}))

		related := s.catalog.RelatedRepairs(ctx, id)
		if len(related) > 0 {
			if len(related) > 2 {
				related = related[:2]
			}
			fmt.Fprintf(&b, "\n\nRelated repairs for %s: %s", id, part.FormatRepairs(related))
		}
	}

	// Keep continuity when the catalog cannot re-resolve the bound id.
	if primary == nil && binding != nil {
		primary = binding
	}

	if len(modelNumbers) > 0 {
		fmt.Fprintf(&b, "\n\nDetected model number: %s", modelNumbers[0])

		if len(partIDs) > 0 && primary != nil {
			fmt.Fprintf(&b, "\n\nThe user is asking about compatibility between part %s (%s) and model %s.", partIDs[0], primary.Name, modelNumbers[0])
			b.WriteString("\nPlease provide information on how to check compatibility and include a link to the compatibility checker.")
		}
	}

	if containsAny(lower, installKeywords) && primary != nil {
		fmt.Fprintf(&b, "\n\nThe user is asking about installation for %s (%s).", primary.PartID, primary.Name)
		fmt.Fprintf(&b, "\nInstallation difficulty: %s", orUnspecified(primary.InstallDifficulty))
		fmt.Fprintf(&b, "\nInstallation time: %s", orUnspecified(primary.InstallTime))
		if primary.InstallVideoURL != "" {
			fmt.Fprintf(&b, "\nInstallation video: %s", primary.InstallVideoURL)
		}
	}

	if containsAny(lower, priceKeywords) && primary != nil {
		fmt.Fprintf(&b, "\n\nThe user is asking about the price of %s (%s).", primary.PartID, primary.Name)
		fmt.Fprintf(&b, "\nPrice: $%.2f", primary.Price)
		b.WriteString("\nMake sure to emphasize the price in your response.")
	}

	if containsAny(lower, symptomKeywords) {
		s.assembleSymptomContext(ctx, &b, rewritten, lower, modelNumbers)
	}

	if blogs := s.catalog.SearchBlogs(ctx, rewritten, 2); len(blogs) > 0 {
		fmt.Fprintf(&b, "\n\nYou might find these resources helpful: %s", part.FormatBlogs(blogs))
	}

	if primary != nil {
		fmt.Fprintf(&b, "\n\nIMPORTANT: This message is about %s (%s), priced at $%.2f.", primary.Name, primary.PartID, primary.Price)
		fmt.Fprintf(&b, "\nInstallation difficulty: %s.", orUnspecified(primary.InstallDifficulty))
		fmt.Fprintf(&b, "\nInstallation time: %s.", orUnspecified(primary.InstallTime))
		fmt.Fprintf(&b, "\nBrand: %s.", orUnspecified(primary.Brand))
		if primary.ProductURL != "" {
			fmt.Fprintf(&b, "\nProduct details can be found at: %s", primary.ProductURL)
			fmt.Fprintf(&b, "\nTo check compatibility with your model, visit: %s", primary.CompatibilityURL())
		}
		if primary.InstallVideoURL != "" {
			fmt.Fprintf(&b, "\nInstallation video is available at: %s", primary.InstallVideoURL)
		}
		b.WriteString("\n\nPlease include the links to the product page, installation video (if available), and compatibility checker in your response.")
	}

	return assembled{Rewritten: rewritten, Grounding: b.String(), Primary: primary}
}

// assembleSymptomContext searches the repair guide for the reported symptom
// and recommends the parts those repairs reference.
func (s *Service) assembleSymptomContext(ctx context.Context, b *strings.Builder, text, lower string, modelNumbers []string) {
	appliance := ""
	switch {
	case strings.Contains(lower, "refrigerator"), strings.Contains(lower, "fridge"), strings.Contains(lower, "freezer"):
		appliance = "Refrigerator"
	case strings.Contains(lower, "dishwasher"), strings.Contains(lower, "dishes"):
		appliance = "Dishwasher"
	case len(modelNumbers) > 0:
		if guessed := extract.ApplianceTypeFromModel(modelNumbers[0]); guessed != "appliance" {
			appliance = strings.ToUpper(guessed[:1]) + guessed[1:]
		}
	}

	repairs := s.catalog.SearchRepairs(ctx, text, appliance, 3)
	if len(repairs) == 0 {
		return
	}

	fmt.Fprintf(b, "\n\nRelated repair information: %s", part.FormatRepairs(repairs))

	seen := make(map[string]struct{})
	var recommended []part.Record
	for _, repair := range repairs {
		for _, id := range repair.PartIDs() {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if record := s.catalog.FetchPart(ctx, id); record != nil {
				recommended = append(recommended, *record)
			}
		}
	}
	if len(recommended) > 0 {
		if len(recommended) > 3 {
			recommended = recommended[:3]
		}
		fmt.Fprintf(b, "\n\nRecommended parts for this issue: %s", part.FormatParts(recommended))
	}
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func orUnspecified(value string) string {
	if value == "" {
		return "Not specified"
	}
	return value
}

// Package extract derives structured identifiers (part ids, model numbers)
// from free-form chat text using ranked pattern lists. Extraction is pure:
// no shared matcher state survives between calls, order of appearance is
// preserved, and duplicates are collapsed case-insensitively with the
// lowest-ranked (most specific) pattern winning attribution.
package extract

import (
	"regexp"
	"strings"
)

// pattern couples a compiled expression with an explicit priority rank.
// Lower rank means more specific and more trusted; rank is a first-class
// field rather than an accident of slice order.
type pattern struct {
	rank int
	re   *regexp.Regexp
	name string
}

var partIDPatterns = []pattern{
	{0, regexp.MustCompile(`(?i)\b(PS\d{8})\b`), "partselect ps format"},
	{1, regexp.MustCompile(`(?i)part(?:\s+number|\s+#)?\s+([A-Za-z0-9]{5,12})`), "explicit part number phrase"},
	{2, regexp.MustCompile(`(?i)\b([A-Z0-9]{2,5}\d{5,10})\b`), "alphanumeric with prefix"},
	{2, regexp.MustCompile(`(?i)\b(W10\d{6}|WP\d{8}|W\d{8})\b`), "whirlpool/maytag format"},
	{2, regexp.MustCompile(`(?i)\b(DA\d{2}-\d{5}[A-Z]?)\b`), "samsung format"},
	{2, regexp.MustCompile(`(?i)\b(00\d{6})\b`), "bosch format"},
}

// psDirect is re-run as a final safety check so the most specific format can
// never be lost to the generic sweep.
var psDirect = regexp.MustCompile(`(?i)\bPS\d{8}\b`)

var modelPatterns = []pattern{
	{0, regexp.MustCompile(`(?i)model(?:\s+number|\s+#)?\s+([A-Za-z0-9]{5,15})`), "explicit model phrase"},
	{1, regexp.MustCompile(`(?i)\b(WRF\d{3}[A-Z]{4}\d?|MDB\d{4}[A-Z]{3}\d?)\b`), "whirlpool/maytag format"},
	{1, regexp.MustCompile(`(?i)\b(GSS\d{5}[A-Z]{4}|HSM\d{5}[A-Z]{4})\b`), "ge/hotpoint format"},
	{1, regexp.MustCompile(`(?i)\b(RF\d{2}[A-Z]\d{5}[A-Z]{2})\b`), "samsung format"},
	{2, regexp.MustCompile(`(?i)\b([A-Z]{2,4}\d{3,5}[A-Z0-9]{0,5})\b`), "generic alphanumeric format"},
}

// PartIDs extracts candidate part identifiers in order of appearance across
// the ranked pattern list.
func PartIDs(text string) []string {
	ids := scan(text, partIDPatterns)

	if direct := psDirect.FindString(text); direct != "" {
		ids = prependUnique(ids, direct)
	}
	return ids
}

// ModelNumbers extracts candidate appliance model numbers. Part-id and model
// extraction are independent and may both fire on the same text.
func ModelNumbers(text string) []string {
	return scan(text, modelPatterns)
}

func scan(text string, patterns []pattern) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, p := range patterns {
		for _, match := range p.re.FindAllStringSubmatch(text, -1) {
			value := match[len(match)-1]
			key := strings.ToUpper(value)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

func prependUnique(values []string, value string) []string {
	key := strings.ToUpper(value)
	for _, v := range values {
		if strings.ToUpper(v) == key {
			return values
		}
	}
	return append([]string{value}, values...)
}

// modelOnlyPatterns anchor the whole message, used to short-circuit bare
// model-number messages before classification.
var modelOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^[A-Z]{2,4}\d{3,5}[A-Z0-9]{0,5}$`),
	regexp.MustCompile(`(?i)^WDT\d{3}[A-Z]{4}\d?$`),
	regexp.MustCompile(`(?i)^WRF\d{3}[A-Z]{4}\d?$`),
	regexp.MustCompile(`(?i)^MDB\d{4}[A-Z]{3}\d?$`),
	regexp.MustCompile(`(?i)^GSS\d{5}[A-Z]{4}$`),
	regexp.MustCompile(`(?i)^RF\d{2}[A-Z]\d{5}[A-Z]{2}$`),
	regexp.MustCompile(`(?i)^SHP\d{2}[A-Z]\d{4}[A-Z]$`),
}

var psOnly = regexp.MustCompile(`(?i)^PS\d{8}$`)

// IsModelNumberOnly reports whether the trimmed message is nothing but an
// appliance model number. A bare part id is not a model number even though
// it fits the generic shape.
func IsModelNumberOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || psOnly.MatchString(trimmed) {
		return false
	}
	for _, re := range modelOnlyPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

var appliancePrefixes = []struct {
	prefix    string
	appliance string
}{
	{"WDT", "dishwasher"},
	{"MDB", "dishwasher"},
	{"GSD", "dishwasher"},
	{"SHP", "dishwasher"},
	{"WRF", "refrigerator"},
	{"GSS", "refrigerator"},
	{"RF", "refrigerator"},
}

// ApplianceTypeFromModel guesses the appliance family from a model number
// prefix, falling back to "appliance" when the prefix is unknown.
func ApplianceTypeFromModel(model string) string {
	upper := strings.ToUpper(strings.TrimSpace(model))
	for _, p := range appliancePrefixes {
		if strings.HasPrefix(upper, p.prefix) {
			return p.appliance
		}
	}
	return "appliance"
}

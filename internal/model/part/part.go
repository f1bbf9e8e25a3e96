package part

import (
	"fmt"
	"strings"
)

// Record is the canonical shape of a catalog part. The same type is stored
// on assistant turns as the resolved binding for follow-up questions, so
// lookup, context assembly, and session history all agree on one schema.
type Record struct {
	PartID            string  `json:"partId"`
	MPNID             string  `json:"mpnId,omitempty"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	InstallDifficulty string  `json:"installDifficulty,omitempty"`
	InstallTime       string  `json:"installTime,omitempty"`
	Symptoms          string  `json:"symptoms,omitempty"`
	ApplianceTypes    string  `json:"applianceTypes,omitempty"`
	Brand             string  `json:"brand,omitempty"`
	Availability      string  `json:"availability,omitempty"`
	ProductURL        string  `json:"productUrl,omitempty"`
	InstallVideoURL   string  `json:"installVideoUrl,omitempty"`
}

// CompatibilityURL points at the model-fit checker on the product page.
func (r Record) CompatibilityURL() string {
	if r.ProductURL == "" {
		return ""
	}
	return r.ProductURL + "#compatibility"
}

// Repair describes a symptom entry from the repair guide. Parts holds a
// comma-separated list of part ids referenced by the repair.
type Repair struct {
	Product          string  `json:"product"`
	Symptom          string  `json:"symptom"`
	Description      string  `json:"description"`
	Percentage       float64 `json:"percentage,omitempty"`
	Difficulty       string  `json:"difficulty,omitempty"`
	Parts            string  `json:"parts,omitempty"`
	SymptomDetailURL string  `json:"symptomDetailUrl,omitempty"`
	RepairVideoURL   string  `json:"repairVideoUrl,omitempty"`
}

// PartIDs splits the referenced part list into trimmed ids.
func (r Repair) PartIDs() []string {
	if r.Parts == "" {
		return nil
	}
	raw := strings.Split(r.Parts, ",")
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Blog is an article from the advice section.
type Blog struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FormatParts renders part records as a numbered plain-text block for the
// generation model.
func FormatParts(records []Record) string {
	if len(records) == 0 {
		return "No parts found matching your query."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant parts:\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s (%s) - $%.2f\n", i+1, r.Name, r.PartID, r.Price)
		if r.Brand != "" {
			fmt.Fprintf(&b, "   Brand: %s\n", r.Brand)
		}
		if r.InstallDifficulty != "" {
			fmt.Fprintf(&b, "   Installation: %s\n", r.InstallDifficulty)
		}
		if r.InstallTime != "" {
			fmt.Fprintf(&b, "   Installation Time: %s\n", r.InstallTime)
		}
		if r.Symptoms != "" {
			fmt.Fprintf(&b, "   Common symptoms: %s\n", r.Symptoms)
		}
		if r.ProductURL != "" {
			fmt.Fprintf(&b, "   Product URL: %s\n", r.ProductURL)
		}
		if r.InstallVideoURL != "" {
			fmt.Fprintf(&b, "   Installation Video: %s\n", r.InstallVideoURL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRepairs renders repair guide entries for the generation model.
func FormatRepairs(repairs []Repair) string {
	if len(repairs) == 0 {
		return "No repairs found matching your query."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant repairs:\n\n", len(repairs))
	for i, r := range repairs {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.Product, r.Symptom)
		fmt.Fprintf(&b, "   Description: %s\n", r.Description)
		if r.Difficulty != "" {
			fmt.Fprintf(&b, "   Difficulty: %s\n", r.Difficulty)
		}
		if r.Percentage > 0 {
			fmt.Fprintf(&b, "   Frequency: %.0f%%\n", r.Percentage)
		}
		if r.Parts != "" {
			fmt.Fprintf(&b, "   Recommended parts: %s\n", r.Parts)
		}
		if r.SymptomDetailURL != "" {
			fmt.Fprintf(&b, "   Symptom Detail URL: %s\n", r.SymptomDetailURL)
		}
		if r.RepairVideoURL != "" {
			fmt.Fprintf(&b, "   Repair Video: %s\n", r.RepairVideoURL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatBlogs renders article references for the generation model.
func FormatBlogs(blogs []Blog) string {
	if len(blogs) == 0 {
		return "No blogs found matching your query."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant blogs:\n\n", len(blogs))
	for i, blog := range blogs {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n\n", i+1, blog.Title, blog.URL)
	}
	return b.String()
}

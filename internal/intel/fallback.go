package intel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/geo-intel/internal/model"
)

type promptTemplate struct {
	text       string
	intent     string
	commercial float64
	relevance  float64
}

// Placeholders: {brand}, {domain}, {industry} (lower case), {Industry} (title case).
var fallbackTemplates = []promptTemplate{
	{"What are the best {industry} companies?", "comparison", 0.8, 0.9},
	{"Top {Industry} Brands Compared", "comparison", 0.7, 0.9},
	{"How do I choose a {industry} provider?", "informational", 0.5, 0.8},
	{"What is {brand} known for?", "navigational", 0.3, 0.6},
	{"Is {brand} ({domain}) trustworthy?", "informational", 0.4, 0.6},
	{"{brand} pricing and plans", "transactional", 0.9, 0.7},
	{"{brand} alternatives in {industry}", "commercial", 0.8, 0.8},
}

const offeringTemplate = "Where can I get the best {offering}?"

// maxOfferingPrompts bounds how many offerings get their own prompt.
const maxOfferingPrompts = 3

// FallbackPrompts builds a deterministic prompt set from the brand context.
// It never returns an empty slice.
func FallbackPrompts(bc model.BrandContext) []model.Prompt {
	industry := strings.TrimSpace(bc.Industry)
	if industry == "" {
		industry = defaultIndustryLabel
	}
	brand := strings.TrimSpace(bc.BrandName)
	if brand == "" {
		brand = bc.Domain
	}
	domain := strings.TrimSpace(bc.Domain)
	if domain == "" {
		domain = brand
	}

	lower := cases.Lower(language.English).String(industry)
	title := cases.Title(language.English).String(industry)
	r := strings.NewReplacer(
		"{brand}", brand,
		"{domain}", domain,
		"{industry}", lower,
		"{Industry}", title,
	)

	prompts := make([]model.Prompt, 0, len(fallbackTemplates)+maxOfferingPrompts)
	for _, t := range fallbackTemplates {
		prompts = append(prompts, model.Prompt{
			Text:              r.Replace(t.text),
			Intent:            t.intent,
			CommercialIntent:  t.commercial,
			IndustryRelevance: t.relevance,
		})
	}

	n := 0
	for _, o := range bc.Summary.Offerings {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if n == maxOfferingPrompts {
			break
		}
		prompts = append(prompts, model.Prompt{
			Text:              strings.ReplaceAll(offeringTemplate, "{offering}", cases.Lower(language.English).String(o)),
			Intent:            "commercial",
			CommercialIntent:  0.85,
			IndustryRelevance: 0.9,
		})
		n++
	}
	return prompts
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/model"
)

// PromptCount is how many prompts GeneratePrompts asks for.
const PromptCount = 20

// ClassifyIndustry asks Claude which industry the domain operates in.
func (c *Client) ClassifyIndustry(ctx context.Context, _ string, domain string) (model.IndustryClassification, error) {
	var out model.IndustryClassification
	if err := c.complete(ctx, "industry_classification", industrySystem, "Domain: "+domain, &out); err != nil {
		return model.IndustryClassification{}, err
	}
	out.Primary = strings.ToLower(strings.TrimSpace(out.Primary))
	return out, nil
}

// SummarizeBusiness asks Claude what the brand sells.
func (c *Client) SummarizeBusiness(ctx context.Context, _ string, brandName, domain string, industry model.IndustryClassification) (model.BusinessSummary, error) {
	user := fmt.Sprintf("Brand: %s\nDomain: %s\nIndustry: %s", brandName, domain, industry.Primary)
	if len(industry.Secondary) > 0 {
		user += "\nRelated industries: " + strings.Join(industry.Secondary, ", ")
	}

	var out model.BusinessSummary
	if err := c.complete(ctx, "business_summary", summarySystem, user, &out); err != nil {
		return model.BusinessSummary{}, err
	}
	return out, nil
}

// GeneratePrompts asks Claude for the prompts the brand should be visible for.
func (c *Client) GeneratePrompts(ctx context.Context, _ string, bc model.BrandContext) ([]model.Prompt, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d prompts.\nBrand: %s\nDomain: %s\nIndustry: %s\n", PromptCount, bc.BrandName, bc.Domain, bc.Industry)
	if bc.Summary.Summary != "" && bc.Summary.Summary != model.Placeholder {
		fmt.Fprintf(&b, "Business: %s\n", bc.Summary.Summary)
	}
	if len(bc.Summary.Offerings) > 0 {
		fmt.Fprintf(&b, "Offerings: %s\n", strings.Join(bc.Summary.Offerings, ", "))
	}
	if bc.Summary.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", bc.Summary.Audience)
	}

	var out struct {
		Prompts []model.Prompt `json:"prompts"`
	}
	if err := c.complete(ctx, "prompt_generation", promptSystem, b.String(), &out); err != nil {
		return nil, err
	}

	prompts := make([]model.Prompt, 0, len(out.Prompts))
	seen := make(map[string]bool, len(out.Prompts))
	for _, p := range out.Prompts {
		key := strings.ToLower(strings.TrimSpace(p.Text))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p.Text = strings.TrimSpace(p.Text)
		prompts = append(prompts, p)
	}
	if len(prompts) == 0 {
		return nil, eris.New("llm: prompt_generation: response had no usable prompts")
	}
	return prompts, nil
}

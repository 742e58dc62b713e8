package cost

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rates holds the static price table.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Engines   map[string]QueryRate `yaml:"engines" mapstructure:"engines"`
	Database  QueryRate            `yaml:"database" mapstructure:"database"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	BatchDiscount float64 `yaml:"batch_discount" mapstructure:"batch_discount"`
}

// QueryRate is a flat price per query.
type QueryRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost for a Claude API call.
func (c *Calculator) Claude(model string, isBatch bool, input, output int) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}

	batchMul := 1.0
	if isBatch && rate.BatchDiscount > 0 {
		batchMul = rate.BatchDiscount
	}

	inCost := (float64(input) / 1e6) * rate.Input * batchMul
	outCost := (float64(output) / 1e6) * rate.Output * batchMul
	return inCost + outCost
}

// EngineQuery returns the flat cost of one answer-engine query. Unknown
// engines are free.
func (c *Calculator) EngineQuery(engine string) float64 {
	return c.rates.Engines[engine].PerQuery
}

// DBQuery returns the flat cost of one retrieval query.
func (c *Calculator) DBQuery() float64 {
	return c.rates.Database.PerQuery
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00, BatchDiscount: 0.5},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00, BatchDiscount: 0.5},
			"claude-opus-4-6":            {Input: 15.00, Output: 75.00, BatchDiscount: 0.5},
		},
		Engines: map[string]QueryRate{
			"chatgpt":    {PerQuery: 0.004},
			"claude":     {PerQuery: 0.004},
			"gemini":     {PerQuery: 0.002},
			"perplexity": {PerQuery: 0.005},
		},
		Database: QueryRate{PerQuery: 0.00002},
	}
}

// LoadRates reads a YAML price table from path. Entries in the file replace
// the matching defaults; anything the file omits keeps its default price.
func LoadRates(path string) (Rates, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, eris.Wrapf(err, "cost: read price table %s", path)
	}

	var file Rates
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rates{}, eris.Wrapf(err, "cost: parse price table %s", path)
	}

	for name, r := range file.Anthropic {
		rates.Anthropic[name] = r
	}
	for name, r := range file.Engines {
		rates.Engines[name] = r
	}
	if file.Database.PerQuery > 0 {
		rates.Database = file.Database
	}
	return rates, nil
}

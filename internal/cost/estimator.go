package cost

// Unit is what a stage's call counts are multiplied by.
type Unit string

const (
	PerRequest     Unit = "request"
	PerPrompt      Unit = "prompt"
	PerCluster     Unit = "cluster"
	PerCompetitor  Unit = "competitor"
	PerOpportunity Unit = "opportunity"
)

// StageProfile is the call-count assumption for one pipeline stage.
// Counts are per Unit; EngineQueries are per configured engine.
type StageProfile struct {
	Stage         string
	Per           Unit
	LLMCalls      int
	InputTokens   int
	OutputTokens  int
	EngineQueries int
	DBQueries     int
}

// Scenario describes the workload being priced.
type Scenario struct {
	Model         string   `json:"model"`
	Prompts       int      `json:"prompts"`
	Clusters      int      `json:"clusters"`
	Competitors   int      `json:"competitors"`
	Opportunities int      `json:"opportunities"`
	Engines       []string `json:"engines"`
	Batch         bool     `json:"batch"`
}

// Line is the priced cost of one stage.
type Line struct {
	Stage         string  `json:"stage"`
	Units         int     `json:"units"`
	LLMCalls      int     `json:"llm_calls"`
	EngineQueries int     `json:"engine_queries"`
	DBQueries     int     `json:"db_queries"`
	USD           float64 `json:"usd"`
}

// Estimate is a priced scenario.
type Estimate struct {
	Lines    []Line  `json:"lines"`
	TotalUSD float64 `json:"total_usd"`
}

// Estimator prices scenarios against a fixed set of stage profiles.
type Estimator struct {
	calc     *Calculator
	profiles []StageProfile
}

// NewEstimator creates an Estimator.
func NewEstimator(rates Rates, profiles []StageProfile) *Estimator {
	return &Estimator{calc: NewCalculator(rates), profiles: profiles}
}

// Estimate prices s. Lines follow profile order.
func (e *Estimator) Estimate(s Scenario) Estimate {
	est := Estimate{Lines: make([]Line, 0, len(e.profiles))}
	for _, p := range e.profiles {
		units := s.units(p.Per)
		line := Line{
			Stage:         p.Stage,
			Units:         units,
			LLMCalls:      p.LLMCalls * units,
			EngineQueries: p.EngineQueries * units * len(s.Engines),
			DBQueries:     p.DBQueries * units,
		}

		line.USD += e.calc.Claude(s.Model, s.Batch, p.InputTokens*line.LLMCalls, p.OutputTokens*line.LLMCalls)
		for _, engine := range s.Engines {
			line.USD += float64(p.EngineQueries*units) * e.calc.EngineQuery(engine)
		}
		line.USD += float64(line.DBQueries) * e.calc.DBQuery()

		est.Lines = append(est.Lines, line)
		est.TotalUSD += line.USD
	}
	return est
}

func (s Scenario) units(u Unit) int {
	var n int
	switch u {
	case PerPrompt:
		n = s.Prompts
	case PerCluster:
		n = s.Clusters
	case PerCompetitor:
		n = s.Competitors
	case PerOpportunity:
		n = s.Opportunities
	default:
		n = 1
	}
	return max(n, 0)
}

package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageKeys_Order(t *testing.T) {
	assert.Equal(t, []string{
		StageIndustry,
		StageSummary,
		StagePrompts,
		StageClustering,
		StageCompetitors,
		StageShareOfVoice,
		StageCitations,
		StageCommercialValue,
		StageCrossEngine,
		StageAdvantage,
		StageTrustFailures,
		StageFixDifficulty,
		StageComposite,
		StageOpportunities,
		StageRecommendations,
	}, StageKeys())
}

func TestCatalog_Valid(t *testing.T) {
	require.NoError(t, validateCatalog(Catalog()))
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	defs := Catalog()
	defs[1].DependsOn[0] = "tampered"
	defs[0].Key = "tampered"

	again := Catalog()
	assert.Equal(t, StageIndustry, again[0].Key)
	assert.Equal(t, []string{StageIndustry}, again[1].DependsOn)
}

func TestCatalog_FanOutStages(t *testing.T) {
	var fan []string
	for _, d := range Catalog() {
		if d.FanOut {
			fan = append(fan, d.Key)
		}
	}
	assert.Equal(t, []string{StageCommercialValue, StageAdvantage, StageFixDifficulty, StageOpportunities}, fan)
}

func TestValidateCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
		want string
	}{
		{
			name: "empty key",
			defs: []Definition{{Key: ""}},
			want: "empty key",
		},
		{
			name: "duplicate",
			defs: []Definition{{Key: "a"}, {Key: "a"}},
			want: "duplicate stage a",
		},
		{
			name: "self dependency",
			defs: []Definition{{Key: "a", DependsOn: []string{"a"}}},
			want: "stage a depends on itself",
		},
		{
			name: "forward dependency",
			defs: []Definition{{Key: "a", DependsOn: []string{"b"}}, {Key: "b"}},
			want: "stage a depends on b, which does not run before it",
		},
		{
			name: "unknown dependency",
			defs: []Definition{{Key: "a"}, {Key: "b", DependsOn: []string{"zzz"}}},
			want: "stage b depends on zzz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCatalog(tt.defs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustCatalog_Panics(t *testing.T) {
	assert.Panics(t, func() { mustCatalog([]Definition{{Key: "a"}, {Key: "a"}}) })
}

func TestCostProfiles(t *testing.T) {
	profiles := CostProfiles()
	require.Len(t, profiles, len(StageKeys()))
	for i, key := range StageKeys() {
		assert.Equal(t, key, profiles[i].Stage)
	}
	assert.Equal(t, 1, profiles[0].LLMCalls)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debatehub/internal/model"
)

func TestAnalyzeMissingRequired(t *testing.T) {
	catalog := catalogFromTags("a", "a", "a", "a", "a")
	for i := range catalog {
		catalog[i].Required = true
	}
	store := NewResponseStore()
	answer(store, "q0", 4)
	answer(store, "q3", 4)

	issues := Analyze(catalog, store)
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueIncomplete, issues[0].Type)
	assert.Equal(t, model.SeverityHigh, issues[0].Severity)
	assert.Equal(t, []string{"q1", "q2", "q4"}, issues[0].QuestionIDs)
}

func TestAnalyzeLowConfidenceCluster(t *testing.T) {
	catalog := catalogFromTags("a", "a", "a", "a")

	store := NewResponseStore()
	answer(store, "q0", 2)
	answer(store, "q1", 2)

	// Two low-confidence answers are not yet a cluster
	assert.Empty(t, Analyze(catalog, store))

	answer(store, "q2", 2)
	issues := Analyze(catalog, store)
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueUncertainty, issues[0].Type)
	assert.Equal(t, model.SeverityMedium, issues[0].Severity)
	assert.Equal(t, []string{"q0", "q1", "q2"}, issues[0].QuestionIDs)
}

func TestAnalyzeIdempotent(t *testing.T) {
	catalog := catalogFromTags("a", "a", "a")
	catalog[0].Required = true
	store := NewResponseStore()
	answer(store, "q1", 1)
	answer(store, "q2", 2)

	first := Analyze(catalog, store)
	second := Analyze(catalog, store)
	assert.Equal(t, first, second)
}

func TestAnalyzeCleanStore(t *testing.T) {
	catalog := catalogFromTags("a", "a")
	catalog[0].Required = true
	store := NewResponseStore()
	answer(store, "q0", 4)
	answer(store, "q1", 5)

	assert.Empty(t, Analyze(catalog, store))
}

func TestReadyToFinalizeGate(t *testing.T) {
	high := []model.ConsistencyIssue{{Type: model.IssueIncomplete, Severity: model.SeverityHigh}}
	medium := []model.ConsistencyIssue{{Type: model.IssueUncertainty, Severity: model.SeverityMedium}}

	cases := []struct {
		name   string
		rate   float64
		issues []model.ConsistencyIssue
		want   bool
	}{
		{"just below threshold", 0.69, nil, false},
		{"at threshold", 0.70, nil, true},
		{"above threshold", 0.85, nil, true},
		{"blocked by high issue", 0.90, high, false},
		{"medium issues pass", 0.90, medium, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReadyToFinalize(tc.rate, tc.issues))
		})
	}
}

func TestCompletionRate(t *testing.T) {
	catalog := catalogFromTags("a", "a", "a", "a")
	store := NewResponseStore()
	assert.Equal(t, 0.0, CompletionRate(catalog, store))

	answer(store, "q0", 3)
	answer(store, "q1", 3)
	answer(store, "q2", 3)
	assert.Equal(t, 0.75, CompletionRate(catalog, store))

	assert.Equal(t, 0.0, CompletionRate(nil, store))
}

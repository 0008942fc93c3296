package engine

import (
	"fmt"

	"debatehub/internal/model"
)

const (
	lowConfidenceMax        = 2
	lowConfidenceClusterMin = 3
	completionGateThreshold = 0.70
)

// Analyze scans recorded responses against the catalog and reports typed
// issues. The pass is side-effect-free and idempotent: the same store yields
// the same issues in the same order. Contradiction and outlier detection are
// not part of the current rule set.
func Analyze(catalog []model.QuestionDescriptor, store *ResponseStore) []model.ConsistencyIssue {
	var issues []model.ConsistencyIssue

	var missing []string
	for _, q := range catalog {
		if q.Required && !store.Has(q.ID) {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, model.ConsistencyIssue{
			Type:        model.IssueIncomplete,
			Severity:    model.SeverityHigh,
			QuestionIDs: missing,
			Title:       "Required questions unanswered",
			Description: fmt.Sprintf("%d required question(s) have no recorded answer.", len(missing)),
			Suggestion:  "Jump back to the highlighted questions and answer them before finalizing.",
		})
	}

	var lowConfidence []string
	for _, q := range catalog {
		if r, ok := store.Get(q.ID); ok && r.ConfidenceLevel <= lowConfidenceMax {
			lowConfidence = append(lowConfidence, q.ID)
		}
	}
	if len(lowConfidence) >= lowConfidenceClusterMin {
		issues = append(issues, model.ConsistencyIssue{
			Type:        model.IssueUncertainty,
			Severity:    model.SeverityMedium,
			QuestionIDs: lowConfidence,
			Title:       "Low-confidence answer cluster",
			Description: fmt.Sprintf("%d answers were given with confidence %d or lower.", len(lowConfidence), lowConfidenceMax),
			Suggestion:  "Revisit these answers if you'd like your profile to reflect firmer positions.",
		})
	}

	return issues
}

// CompletionRate is the share of catalog questions with a recorded response
func CompletionRate(catalog []model.QuestionDescriptor, store *ResponseStore) float64 {
	if len(catalog) == 0 {
		return 0
	}
	answered := 0
	for _, q := range catalog {
		if store.Has(q.ID) {
			answered++
		}
	}
	return float64(answered) / float64(len(catalog))
}

// ReadyToFinalize is the completion gate: at least 70% answered and no
// high-severity issues outstanding. Enforced by the caller, not by Analyze.
func ReadyToFinalize(completionRate float64, issues []model.ConsistencyIssue) bool {
	return completionRate >= completionGateThreshold && !model.HasHighSeverity(issues)
}

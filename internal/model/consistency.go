package model

// IssueType classifies a consistency finding. The contradiction and outlier
// types are reserved; the current rule set only produces incomplete and
// uncertainty issues.
type IssueType string

const (
	IssueContradiction IssueType = "contradiction"
	IssueUncertainty   IssueType = "uncertainty"
	IssueIncomplete    IssueType = "incomplete"
	IssueOutlier       IssueType = "outlier"
)

// IssueSeverity ranks how strongly an issue should gate finalization
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// ConsistencyIssue is a flagged gap or pattern in recorded responses.
// Issues are regenerated on every analysis pass, never mutated in place.
type ConsistencyIssue struct {
	Type        IssueType     `json:"type"`
	Severity    IssueSeverity `json:"severity"`
	QuestionIDs []string      `json:"questionIds"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion"`
}

// HasHighSeverity reports whether any issue in the list is high severity
func HasHighSeverity(issues []ConsistencyIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

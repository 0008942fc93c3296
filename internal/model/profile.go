package model

import "time"

// RespondentProfile is the finalized outcome of an onboarding session
type RespondentProfile struct {
	ID                  string             `json:"id" bson:"_id,omitempty"`
	RespondentID        string             `json:"respondentId" bson:"respondentId"`
	QuestionnaireID     string             `json:"questionnaireId" bson:"questionnaireId"`
	SessionID           string             `json:"sessionId" bson:"sessionId"`
	EngagementStyle     string             `json:"engagementStyle" bson:"engagementStyle"`
	ThoughtfulnessScore float64            `json:"thoughtfulnessScore" bson:"thoughtfulnessScore"`
	CompletionRate      float64            `json:"completionRate" bson:"completionRate"`
	Sections            []SectionSummary   `json:"sections" bson:"sections"`
	Issues              []ConsistencyIssue `json:"issues" bson:"issues"`
	FinalizedAt         time.Time          `json:"finalizedAt" bson:"finalizedAt"`
}

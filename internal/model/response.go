package model

import "time"

// ResponseValue is the tagged union of per-type answer payloads. Exactly one
// field is populated, matching the question's type; the engine's validators
// enforce that.
type ResponseValue struct {
	Scale   *float64 `json:"scale,omitempty" bson:"scale,omitempty"`     // SCALE
	Binary  *bool    `json:"binary,omitempty" bson:"binary,omitempty"`   // BINARY
	Choice  string   `json:"choice,omitempty" bson:"choice,omitempty"`   // MULTI_CHOICE
	Ranking []string `json:"ranking,omitempty" bson:"ranking,omitempty"` // RANKING
	Slider  *float64 `json:"slider,omitempty" bson:"slider,omitempty"`   // SLIDER
	Text    string   `json:"text,omitempty" bson:"text,omitempty"`       // FREE_TEXT
}

// RecordedResponse is one recorded answer. It is created whole or not at all;
// an edit before finalization overwrites the previous record for the question.
type RecordedResponse struct {
	QuestionID       string        `json:"questionId" bson:"questionId"`
	Value            ResponseValue `json:"value" bson:"value"`
	ConfidenceLevel  int           `json:"confidenceLevel" bson:"confidenceLevel"`   // 1..5
	CompletionTimeMs int           `json:"completionTimeMs" bson:"completionTimeMs"` // time shown -> answered
}

// ResponseRecord is the persisted form of a recorded response
type ResponseRecord struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	SessionID       string    `json:"sessionId" bson:"sessionId"`
	RespondentID    string    `json:"respondentId" bson:"respondentId"`
	QuestionnaireID string    `json:"questionnaireId" bson:"questionnaireId"`
	RecordedResponse `bson:",inline"`
	SavedAt         time.Time `json:"savedAt" bson:"savedAt"`
}

// SessionMetadata accompanies a bulk flush to persistence
type SessionMetadata struct {
	SessionID       string    `json:"sessionId" bson:"sessionId"`
	RespondentID    string    `json:"respondentId" bson:"respondentId"`
	QuestionnaireID string    `json:"questionnaireId" bson:"questionnaireId"`
	StartedAt       time.Time `json:"startedAt" bson:"startedAt"`
	FlushedAt       time.Time `json:"flushedAt" bson:"flushedAt"`
	Revision        uint64    `json:"revision" bson:"revision"`
}

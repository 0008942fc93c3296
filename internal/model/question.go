package model

import "time"

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeScale       QuestionType = "SCALE"        // 1-5 agreement scale
	QuestionTypeBinary      QuestionType = "BINARY"       // yes/no
	QuestionTypeMultiChoice QuestionType = "MULTI_CHOICE" // pick one option
	QuestionTypeRanking     QuestionType = "RANKING"      // order all options
	QuestionTypeSlider      QuestionType = "SLIDER"       // continuous value within bounds
	QuestionTypeFreeText    QuestionType = "FREE_TEXT"    // open answer
)

// QuestionDescriptor is one entry in a questionnaire's catalog. Descriptors
// are immutable once the questionnaire is created; the engine only reads them.
type QuestionDescriptor struct {
	ID       string       `json:"id" bson:"id"`
	Type     QuestionType `json:"type" bson:"type"`
	Section  string       `json:"section" bson:"section"`
	Required bool         `json:"required" bson:"required"`
	Prompt   string       `json:"prompt" bson:"prompt"`
	// For MULTI_CHOICE and RANKING
	Options []string `json:"options,omitempty" bson:"options,omitempty"`
	// For SCALE and SLIDER
	ScaleMin float64 `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"`
	ScaleMax float64 `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`
}

// Questionnaire is a persistent onboarding survey template created by a host
type Questionnaire struct {
	ID          string               `json:"id" bson:"_id,omitempty"`
	HostID      string               `json:"hostId" bson:"hostId"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Questions   []QuestionDescriptor `json:"questions" bson:"questions"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// SectionSummary is derived from the catalog plus recorded responses.
// It is recomputed on every response mutation, never stored.
// Invariant: summaries partition the catalog in order, without gaps or overlap.
type SectionSummary struct {
	Name                     string  `json:"name"`
	DisplayName              string  `json:"displayName"`
	StartIndex               int     `json:"startIndex"`
	EndIndex                 int     `json:"endIndex"`
	CompletedCount           int     `json:"completedCount"`
	TotalCount               int     `json:"totalCount"`
	AverageConfidence        float64 `json:"averageConfidence"`
	EstimatedDurationMinutes int     `json:"estimatedDurationMinutes"`
	IsOptional               bool    `json:"isOptional"`
}

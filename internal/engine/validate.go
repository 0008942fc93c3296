package engine

import (
	"fmt"
	"strings"

	"debatehub/internal/model"
)

// ValidationError rejects a response without touching any state. The message
// is user-facing; validation errors never leave the navigation boundary as
// transition failures.
type ValidationError struct {
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Message)
}

type valueValidator func(q model.QuestionDescriptor, v model.ResponseValue) string

// Per-type validity checks, resolved by question type
var valueValidators = map[model.QuestionType]valueValidator{
	model.QuestionTypeScale:       validateScale,
	model.QuestionTypeBinary:      validateBinary,
	model.QuestionTypeMultiChoice: validateMultiChoice,
	model.QuestionTypeRanking:     validateRanking,
	model.QuestionTypeSlider:      validateSlider,
	model.QuestionTypeFreeText:    validateFreeText,
}

// ValidateResponse checks a recorded response against its question
// descriptor: the shared fields first, then the per-type value shape.
func ValidateResponse(q model.QuestionDescriptor, r model.RecordedResponse) error {
	if r.QuestionID != q.ID {
		return &ValidationError{QuestionID: q.ID, Message: "response does not match this question"}
	}
	if r.ConfidenceLevel < 1 || r.ConfidenceLevel > 5 {
		return &ValidationError{QuestionID: q.ID, Message: "confidence level must be between 1 and 5"}
	}
	if r.CompletionTimeMs < 0 {
		return &ValidationError{QuestionID: q.ID, Message: "completion time cannot be negative"}
	}

	validate, ok := valueValidators[q.Type]
	if !ok {
		return &ValidationError{QuestionID: q.ID, Message: fmt.Sprintf("unknown question type %q", q.Type)}
	}
	if msg := validate(q, r.Value); msg != "" {
		return &ValidationError{QuestionID: q.ID, Message: msg}
	}
	return nil
}

func scaleBounds(q model.QuestionDescriptor) (float64, float64) {
	if q.ScaleMin == 0 && q.ScaleMax == 0 {
		return 1, 5
	}
	return q.ScaleMin, q.ScaleMax
}

func validateScale(q model.QuestionDescriptor, v model.ResponseValue) string {
	if v.Scale == nil {
		return "a scale value is required"
	}
	min, max := scaleBounds(q)
	if *v.Scale < min || *v.Scale > max {
		return fmt.Sprintf("scale value must be between %g and %g", min, max)
	}
	return ""
}

func validateBinary(_ model.QuestionDescriptor, v model.ResponseValue) string {
	if v.Binary == nil {
		return "a yes/no answer is required"
	}
	return ""
}

func validateMultiChoice(q model.QuestionDescriptor, v model.ResponseValue) string {
	if v.Choice == "" {
		return "an option must be selected"
	}
	for _, opt := range q.Options {
		if opt == v.Choice {
			return ""
		}
	}
	return fmt.Sprintf("%q is not one of the available options", v.Choice)
}

func validateRanking(q model.QuestionDescriptor, v model.ResponseValue) string {
	if len(v.Ranking) != len(q.Options) {
		return fmt.Sprintf("ranking must order all %d options", len(q.Options))
	}
	seen := make(map[string]bool, len(v.Ranking))
	for _, item := range v.Ranking {
		if seen[item] {
			return fmt.Sprintf("option %q appears more than once", item)
		}
		seen[item] = true
	}
	for _, opt := range q.Options {
		if !seen[opt] {
			return fmt.Sprintf("ranking is missing option %q", opt)
		}
	}
	return ""
}

func validateSlider(q model.QuestionDescriptor, v model.ResponseValue) string {
	if v.Slider == nil {
		return "a slider value is required"
	}
	min, max := q.ScaleMin, q.ScaleMax
	if min == 0 && max == 0 {
		min, max = 0, 100
	}
	if *v.Slider < min || *v.Slider > max {
		return fmt.Sprintf("slider value must be between %g and %g", min, max)
	}
	return ""
}

func validateFreeText(_ model.QuestionDescriptor, v model.ResponseValue) string {
	if strings.TrimSpace(v.Text) == "" {
		return "an answer cannot be empty"
	}
	return ""
}

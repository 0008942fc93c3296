package engine

import (
	"math"
	"strings"

	"debatehub/internal/model"
)

// Estimated reading-plus-answering time per question, in minutes
const minutesPerQuestion = 1.5

// SectionOptions configures section derivation
type SectionOptions struct {
	// OptionalMatcher decides whether a section name marks the section as
	// skippable. Nil falls back to DefaultOptionalMatcher.
	OptionalMatcher func(name string) bool
}

// DefaultOptionalMatcher marks sections whose name suggests they are
// skippable reflection material
func DefaultOptionalMatcher(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "optional") || strings.Contains(n, "reflection")
}

// BuildSections derives section summaries from the catalog and the current
// response store. Sections are contiguous runs of the same section tag, in
// catalog order; the resulting ranges always partition the catalog exactly,
// with no gaps or overlap. An empty catalog yields nil.
func BuildSections(catalog []model.QuestionDescriptor, store *ResponseStore, opts SectionOptions) []model.SectionSummary {
	matcher := opts.OptionalMatcher
	if matcher == nil {
		matcher = DefaultOptionalMatcher
	}

	var sections []model.SectionSummary
	for i, q := range catalog {
		if len(sections) == 0 || sections[len(sections)-1].Name != q.Section {
			sections = append(sections, model.SectionSummary{
				Name:        q.Section,
				DisplayName: displayName(q.Section),
				StartIndex:  i,
				EndIndex:    i,
				IsOptional:  matcher(q.Section),
			})
		}
		cur := &sections[len(sections)-1]
		cur.EndIndex = i
		cur.TotalCount++
	}

	for i := range sections {
		sec := &sections[i]
		confidenceSum := 0
		for idx := sec.StartIndex; idx <= sec.EndIndex; idx++ {
			if r, ok := store.Get(catalog[idx].ID); ok {
				sec.CompletedCount++
				confidenceSum += r.ConfidenceLevel
			}
		}
		if sec.CompletedCount > 0 {
			sec.AverageConfidence = float64(confidenceSum) / float64(sec.CompletedCount)
		}
		sec.EstimatedDurationMinutes = int(math.Ceil(float64(sec.TotalCount) * minutesPerQuestion))
	}

	return sections
}

// displayName turns a section tag like "debate-experience" into "Debate Experience"
func displayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// sectionAt returns the summary containing the given catalog index
func sectionAt(sections []model.SectionSummary, index int) (model.SectionSummary, bool) {
	for _, sec := range sections {
		if index >= sec.StartIndex && index <= sec.EndIndex {
			return sec, true
		}
	}
	return model.SectionSummary{}, false
}

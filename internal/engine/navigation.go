package engine

import (
	"fmt"

	"debatehub/internal/model"
)

// Unanswered questions in an optional section before suggesting a skip
const skipSuggestionThreshold = 3

// NavigationPreferences tune path generation per respondent
type NavigationPreferences struct {
	PrioritizeRequired bool `json:"prioritizeRequired"`
	SkipOptional       bool `json:"skipOptional"`
}

// NextRecommendedIndex computes where the respondent should go after the
// current position. Inside a section it progresses linearly; at a section
// boundary it prefers the first section that still has unanswered questions
// over jumping ahead. The result never exceeds len(catalog).
func NextRecommendedIndex(catalog []model.QuestionDescriptor, sections []model.SectionSummary, current int) int {
	n := len(catalog)
	next := current + 1
	if next > n {
		next = n
	}

	sec, ok := sectionAt(sections, current)
	if ok && current < sec.EndIndex {
		return next
	}

	for _, s := range sections {
		if s.CompletedCount < s.TotalCount {
			return s.StartIndex
		}
	}
	return next
}

// CanSkipCurrent reports whether the current question may be skipped: it is
// not required, or it already has a response.
func CanSkipCurrent(catalog []model.QuestionDescriptor, store *ResponseStore, current int) bool {
	if current < 0 || current >= len(catalog) {
		return false
	}
	q := catalog[current]
	return !q.Required || store.Has(q.ID)
}

// SkipRecommendation returns an advisory suggestion for the current
// position, if any. It never forces a transition; the caller must invoke an
// explicit skip.
func SkipRecommendation(catalog []model.QuestionDescriptor, sections []model.SectionSummary, store *ResponseStore, current int) (string, bool) {
	sec, ok := sectionAt(sections, current)
	if !ok {
		return "", false
	}

	unanswered := 0
	for i := sec.StartIndex; i <= sec.EndIndex; i++ {
		if !store.Has(catalog[i].ID) {
			unanswered++
		}
	}

	if sec.IsOptional && unanswered > skipSuggestionThreshold {
		return fmt.Sprintf("Consider skipping the rest of %s — it's optional.", sec.DisplayName), true
	}
	if unanswered == 1 {
		return fmt.Sprintf("Last question in %s.", sec.DisplayName), true
	}
	return "", false
}

// OptimalNavigationPath returns the indices still worth visiting, in up to
// two ordered passes: unanswered required questions first when prioritized,
// then unanswered optional questions unless skipped. Catalog order is
// preserved within each pass.
func OptimalNavigationPath(catalog []model.QuestionDescriptor, store *ResponseStore, prefs NavigationPreferences) []int {
	var path []int

	if prefs.PrioritizeRequired {
		for i, q := range catalog {
			if q.Required && !store.Has(q.ID) {
				path = append(path, i)
			}
		}
		if !prefs.SkipOptional {
			for i, q := range catalog {
				if !q.Required && !store.Has(q.ID) {
					path = append(path, i)
				}
			}
		}
		return path
	}

	for i, q := range catalog {
		if store.Has(q.ID) {
			continue
		}
		if !q.Required && prefs.SkipOptional {
			continue
		}
		path = append(path, i)
	}
	return path
}

package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debatehub/internal/model"
)

// catalogFromTags builds a catalog of free-text questions with the given
// section tags, IDs q0..qN-1, all optional unless marked.
func catalogFromTags(tags ...string) []model.QuestionDescriptor {
	catalog := make([]model.QuestionDescriptor, len(tags))
	for i, tag := range tags {
		catalog[i] = model.QuestionDescriptor{
			ID:      fmt.Sprintf("q%d", i),
			Type:    model.QuestionTypeFreeText,
			Section: tag,
		}
	}
	return catalog
}

func answer(store *ResponseStore, questionID string, confidence int) {
	store.Put(model.RecordedResponse{
		QuestionID:       questionID,
		Value:            model.ResponseValue{Text: "an answer"},
		ConfidenceLevel:  confidence,
		CompletionTimeMs: 1000,
	})
}

func TestBuildSectionsGroupsContiguousRuns(t *testing.T) {
	catalog := catalogFromTags("background", "background", "debate-experience", "debate-experience", "debate-experience", "optional-reflection")
	store := NewResponseStore()
	answer(store, "q0", 4)
	answer(store, "q1", 2)

	sections := BuildSections(catalog, store, SectionOptions{})
	require.Len(t, sections, 3)

	assert.Equal(t, "background", sections[0].Name)
	assert.Equal(t, "Background", sections[0].DisplayName)
	assert.Equal(t, 0, sections[0].StartIndex)
	assert.Equal(t, 1, sections[0].EndIndex)
	assert.Equal(t, 2, sections[0].CompletedCount)
	assert.Equal(t, 2, sections[0].TotalCount)
	assert.Equal(t, 3.0, sections[0].AverageConfidence)
	assert.Equal(t, 3, sections[0].EstimatedDurationMinutes) // ceil(2 * 1.5)
	assert.False(t, sections[0].IsOptional)

	assert.Equal(t, "Debate Experience", sections[1].DisplayName)
	assert.Equal(t, 2, sections[1].StartIndex)
	assert.Equal(t, 4, sections[1].EndIndex)
	assert.Equal(t, 0, sections[1].CompletedCount)
	assert.Equal(t, 0.0, sections[1].AverageConfidence)
	assert.Equal(t, 5, sections[1].EstimatedDurationMinutes) // ceil(3 * 1.5)

	assert.True(t, sections[2].IsOptional)
}

func TestBuildSectionsEmptyCatalog(t *testing.T) {
	sections := BuildSections(nil, NewResponseStore(), SectionOptions{})
	assert.Empty(t, sections)
}

func TestBuildSectionsCustomOptionalMatcher(t *testing.T) {
	catalog := catalogFromTags("extras")
	sections := BuildSections(catalog, NewResponseStore(), SectionOptions{
		OptionalMatcher: func(name string) bool { return name == "extras" },
	})
	require.Len(t, sections, 1)
	assert.True(t, sections[0].IsOptional)
}

// Section ranges must partition the catalog exactly once, in order, with no
// gaps, regardless of how tags are arranged.
func TestBuildSectionsPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tags := []string{"alpha", "beta", "gamma", "optional-extra"}

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(20) + 1
		picked := make([]string, n)
		for i := range picked {
			picked[i] = tags[rng.Intn(len(tags))]
		}
		catalog := catalogFromTags(picked...)

		sections := BuildSections(catalog, NewResponseStore(), SectionOptions{})
		require.NotEmpty(t, sections)

		total := 0
		cursor := 0
		for _, sec := range sections {
			require.Equal(t, cursor, sec.StartIndex, "tags %v", picked)
			require.LessOrEqual(t, sec.StartIndex, sec.EndIndex)
			require.Equal(t, sec.EndIndex-sec.StartIndex+1, sec.TotalCount)
			cursor = sec.EndIndex + 1
			total += sec.TotalCount
		}
		require.Equal(t, n, total)
		require.Equal(t, n, cursor)
	}
}

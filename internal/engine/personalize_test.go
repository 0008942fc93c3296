package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"debatehub/internal/model"
)

func responsesOf(n int) []model.RecordedResponse {
	out := make([]model.RecordedResponse, n)
	for i := range out {
		out[i] = model.RecordedResponse{
			QuestionID:       "q",
			Value:            model.ResponseValue{Text: "a considered answer"},
			ConfidenceLevel:  4,
			CompletionTimeMs: 30000,
		}
	}
	return out
}

// Fixed worked example from the scoring policy: 700s invested at 50s per
// answer over 20 answers maxes out all three engagement signals.
func TestEngagementWorkedExample(t *testing.T) {
	ctx := ComputeContext(ScorerInput{
		Responses:          responsesOf(20),
		SessionDurationSec: 700,
		AvgResponseTimeSec: 50,
		CurrentIndex:       20,
		CatalogLength:      25,
		Now:                time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, model.EngagementHigh, ctx.EngagementLevel)
}

func TestEngagementBands(t *testing.T) {
	cases := []struct {
		name        string
		durationSec float64
		avgSec      float64
		count       int
		want        model.EngagementLevel
	}{
		{"barely started", 60, 10, 2, model.EngagementLow},
		{"just below medium", 300, 10, 7, model.EngagementLow},     // 20 + 0 + 14 = 34
		{"medium", 300, 35, 7, model.EngagementMedium},             // 20 + 25 + 14 = 59
		{"just below high", 600, 10, 15, model.EngagementMedium},   // 40 + 0 + 30 = 70
		{"time cap holds at ceiling", 3600, 10, 20, model.EngagementMedium}, // 40 + 0 + 35 = 75
		{"high via all signals", 700, 50, 20, model.EngagementHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := ComputeContext(ScorerInput{
				Responses:          responsesOf(tc.count),
				SessionDurationSec: tc.durationSec,
				AvgResponseTimeSec: tc.avgSec,
				CurrentIndex:       1,
				CatalogLength:      10,
				Now:                time.Now(),
			})
			assert.Equal(t, tc.want, ctx.EngagementLevel)
		})
	}
}

func TestFatigueBands(t *testing.T) {
	cases := []struct {
		name        string
		durationSec float64
		count       int
		want        model.FatigueLevel
	}{
		{"fresh", 120, 4, model.FatigueNone},        // 2 + 2 = 4
		{"mild", 360, 5, model.FatigueMild},         // 6 + 2.5 = 8.5
		{"moderate", 720, 8, model.FatigueModerate}, // 12 + 4 = 16
		{"high", 1260, 10, model.FatigueHigh},       // 21 + 5 = 26
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := ComputeContext(ScorerInput{
				Responses:          responsesOf(tc.count),
				SessionDurationSec: tc.durationSec,
				AvgResponseTimeSec: 30, // collaborative style, multiplier 1.0
				CurrentIndex:       1,
				CatalogLength:      10,
				Now:                time.Now(),
			})
			assert.Equal(t, tc.want, ctx.FatigueLevel)
		})
	}
}

// The analytical multiplier pushes a borderline session over the band edge.
func TestFatigueStyleMultiplier(t *testing.T) {
	analytical := make([]model.RecordedResponse, 10)
	for i := range analytical {
		analytical[i] = model.RecordedResponse{
			QuestionID:      "q",
			Value:           model.ResponseValue{Text: "detailed reasoning"},
			ConfidenceLevel: 4, // avg confidence 4 >= 3.5
		}
	}

	// 17 min * 1.2 + 10 * 0.5 = 25.4 -> high; at multiplier 1.0 the same
	// session would score 22.0 -> moderate.
	ctx := ComputeContext(ScorerInput{
		Responses:          analytical,
		SessionDurationSec: 17 * 60,
		AvgResponseTimeSec: 45, // > 40s with high confidence -> analytical
		CurrentIndex:       1,
		CatalogLength:      10,
		Now:                time.Now(),
	})
	assert.Equal(t, model.StyleAnalytical, ctx.Profile.EngagementStyle)
	assert.Equal(t, model.FatigueHigh, ctx.FatigueLevel)
}

func TestSessionPhases(t *testing.T) {
	cases := []struct {
		index int
		want  model.SessionPhase
	}{
		{0, model.PhaseWarmup},
		{1, model.PhaseWarmup},
		{2, model.PhaseFocus},
		{6, model.PhaseFocus},
		{7, model.PhaseDeepthink},
		{9, model.PhaseWrapup},
		{10, model.PhaseWrapup},
	}
	for _, tc := range cases {
		got := sessionPhase(tc.index, 10)
		assert.Equal(t, tc.want, got, "index %d", tc.index)
	}
}

func TestEngagementStyleIntuitive(t *testing.T) {
	responses := []model.RecordedResponse{
		{QuestionID: "q0", Value: model.ResponseValue{Text: "I feel strongly about this"}, ConfidenceLevel: 3},
		{QuestionID: "q1", Value: model.ResponseValue{Text: "short"}, ConfidenceLevel: 3},
	}
	ctx := ComputeContext(ScorerInput{
		Responses:          responses,
		SessionDurationSec: 60,
		AvgResponseTimeSec: 12, // < 25s plus affect language
		CurrentIndex:       1,
		CatalogLength:      10,
		Now:                time.Now(),
	})
	assert.Equal(t, model.StyleIntuitive, ctx.Profile.EngagementStyle)
	assert.Equal(t, model.PacingBrisk, ctx.PreferredPacing)
}

func TestEngagementStyleDefaultsToCollaborative(t *testing.T) {
	ctx := ComputeContext(ScorerInput{
		Responses:          responsesOf(3),
		SessionDurationSec: 120,
		AvgResponseTimeSec: 30,
		CurrentIndex:       1,
		CatalogLength:      10,
		Now:                time.Now(),
	})
	assert.Equal(t, model.StyleCollaborative, ctx.Profile.EngagementStyle)
	assert.Equal(t, model.PacingSteady, ctx.PreferredPacing)
}

func TestThoughtfulnessScore(t *testing.T) {
	// avg text length 80 -> min(50, 20) = 20; avg 30s -> min(30, 15) = 15;
	// plus the fixed 20 baseline.
	text := make([]byte, 80)
	for i := range text {
		text[i] = 'a'
	}
	responses := []model.RecordedResponse{
		{QuestionID: "q0", Value: model.ResponseValue{Text: string(text)}, ConfidenceLevel: 3},
	}
	ctx := ComputeContext(ScorerInput{
		Responses:          responses,
		SessionDurationSec: 60,
		AvgResponseTimeSec: 30,
		CurrentIndex:       1,
		CatalogLength:      10,
		Now:                time.Now(),
	})
	assert.InDelta(t, 55.0, ctx.Profile.ThoughtfulnessScore, 0.001)
}

func TestComputeContextIsPure(t *testing.T) {
	in := ScorerInput{
		Responses:          responsesOf(5),
		SessionDurationSec: 400,
		AvgResponseTimeSec: 35,
		CurrentIndex:       4,
		CatalogLength:      12,
		Now:                time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC),
	}
	first := ComputeContext(in)
	second := ComputeContext(in)
	assert.Equal(t, first, second)
	assert.Equal(t, "evening", first.TimeOfDay)
}

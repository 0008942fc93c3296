package engine

import (
	"math"
	"strings"
	"time"

	"debatehub/internal/model"
)

// Scoring constants. These are the production policy values; downstream
// behavior is calibrated against them, so they must not be retuned.
const (
	timeScoreDivisor   = 15.0 // 1 engagement point per 15s invested
	timeScoreCap       = 40.0 // cap reached at the 10 minute mark
	pacingThresholdSec = 30.0 // slower than this reads as thoughtful, not rushed
	pacingBonus        = 25.0
	volumePerResponse  = 2.0
	volumeCap          = 35.0

	engagementHighMin   = 80.0
	engagementMediumMin = 50.0

	fatigueResponseWeight   = 0.5
	analyticalFatigueFactor = 1.2
	intuitiveFatigueFactor  = 0.8
	fatigueMildMin          = 8.0
	fatigueModerateMin      = 15.0
	fatigueHighMin          = 25.0

	phaseWarmupEnd    = 0.2
	phaseFocusEnd     = 0.7
	phaseDeepthinkEnd = 0.9

	analyticalMinAvgSec        = 40.0
	analyticalMinAvgConfidence = 3.5
	intuitiveMaxAvgSec         = 25.0

	thoughtfulnessComplexityBase = 20.0
)

// ScorerInput bundles everything the scorer needs. The computation is a pure
// function of these inputs; identical inputs always yield an identical
// context.
type ScorerInput struct {
	Responses          []model.RecordedResponse
	SessionDurationSec float64
	AvgResponseTimeSec float64
	CurrentIndex       int
	CatalogLength      int
	Now                time.Time
}

// ComputeContext derives the personalization context for the next question
// render. Nothing here is persisted; the UI asks again whenever it needs a
// fresh read.
func ComputeContext(in ScorerInput) model.PersonalizationContext {
	style := engagementStyle(in)

	return model.PersonalizationContext{
		Profile: model.UserProfile{
			EngagementStyle:     style,
			ThoughtfulnessScore: thoughtfulness(in),
		},
		EngagementLevel: engagementBand(engagementScore(in)),
		FatigueLevel:    fatigueBand(fatigueScore(in, style)),
		TimeOfDay:       timeOfDay(in.Now),
		SessionPhase:    sessionPhase(in.CurrentIndex, in.CatalogLength),
		PreferredPacing: preferredPacing(in.AvgResponseTimeSec),
	}
}

// engagementScore sums three signals: time invested (capped once the session
// passes 10 minutes), a pacing bonus for unhurried answers, and response
// volume.
func engagementScore(in ScorerInput) float64 {
	score := math.Min(timeScoreCap, in.SessionDurationSec/timeScoreDivisor)
	if in.AvgResponseTimeSec >= pacingThresholdSec {
		score += pacingBonus
	}
	score += math.Min(volumeCap, float64(len(in.Responses))*volumePerResponse)
	return score
}

func engagementBand(score float64) model.EngagementLevel {
	switch {
	case score >= engagementHighMin:
		return model.EngagementHigh
	case score >= engagementMediumMin:
		return model.EngagementMedium
	default:
		return model.EngagementLow
	}
}

func fatigueScore(in ScorerInput, style string) float64 {
	mult := 1.0
	switch style {
	case model.StyleAnalytical:
		mult = analyticalFatigueFactor
	case model.StyleIntuitive:
		mult = intuitiveFatigueFactor
	}
	minutes := in.SessionDurationSec / 60
	return minutes*mult + float64(len(in.Responses))*fatigueResponseWeight
}

func fatigueBand(score float64) model.FatigueLevel {
	switch {
	case score >= fatigueHighMin:
		return model.FatigueHigh
	case score >= fatigueModerateMin:
		return model.FatigueModerate
	case score >= fatigueMildMin:
		return model.FatigueMild
	default:
		return model.FatigueNone
	}
}

func sessionPhase(currentIndex, catalogLength int) model.SessionPhase {
	if catalogLength == 0 {
		return model.PhaseWrapup
	}
	ratio := float64(currentIndex) / float64(catalogLength)
	switch {
	case ratio < phaseWarmupEnd:
		return model.PhaseWarmup
	case ratio < phaseFocusEnd:
		return model.PhaseFocus
	case ratio < phaseDeepthinkEnd:
		return model.PhaseDeepthink
	default:
		return model.PhaseWrapup
	}
}

func engagementStyle(in ScorerInput) string {
	if in.AvgResponseTimeSec > analyticalMinAvgSec && avgConfidence(in.Responses) >= analyticalMinAvgConfidence {
		return model.StyleAnalytical
	}
	if in.AvgResponseTimeSec < intuitiveMaxAvgSec && hasAffectLanguage(in.Responses) {
		return model.StyleIntuitive
	}
	return model.StyleCollaborative
}

// thoughtfulness blends free-text depth and pacing on top of a fixed
// complexity baseline, clamped to 0-100 by construction.
func thoughtfulness(in ScorerInput) float64 {
	return math.Min(50, avgTextLength(in.Responses)/4) +
		math.Min(30, in.AvgResponseTimeSec/2) +
		thoughtfulnessComplexityBase
}

func preferredPacing(avgResponseTimeSec float64) string {
	switch {
	case avgResponseTimeSec > analyticalMinAvgSec:
		return model.PacingDeliberate
	case avgResponseTimeSec < 20:
		return model.PacingBrisk
	default:
		return model.PacingSteady
	}
}

func timeOfDay(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "night"
	}
}

func avgConfidence(responses []model.RecordedResponse) float64 {
	if len(responses) == 0 {
		return 0
	}
	sum := 0
	for _, r := range responses {
		sum += r.ConfidenceLevel
	}
	return float64(sum) / float64(len(responses))
}

func avgTextLength(responses []model.RecordedResponse) float64 {
	total, count := 0, 0
	for _, r := range responses {
		if r.Value.Text != "" {
			total += len(r.Value.Text)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func hasAffectLanguage(responses []model.RecordedResponse) bool {
	for _, r := range responses {
		if r.Value.Text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(r.Value.Text), "feel") {
			return true
		}
	}
	return false
}

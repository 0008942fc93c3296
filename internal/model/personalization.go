package model

// EngagementLevel is a coarse banding of how invested a respondent appears
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// FatigueLevel estimates respondent tiredness from elapsed time and volume
type FatigueLevel string

const (
	FatigueNone     FatigueLevel = "none"
	FatigueMild     FatigueLevel = "mild"
	FatigueModerate FatigueLevel = "moderate"
	FatigueHigh     FatigueLevel = "high"
)

// SessionPhase tracks where in the questionnaire the respondent is
type SessionPhase string

const (
	PhaseWarmup    SessionPhase = "warmup"
	PhaseFocus     SessionPhase = "focus"
	PhaseDeepthink SessionPhase = "deepthink"
	PhaseWrapup    SessionPhase = "wrapup"
)

// Engagement styles derived from response behavior
const (
	StyleAnalytical    = "analytical"
	StyleIntuitive     = "intuitive"
	StyleCollaborative = "collaborative"
)

// Preferred pacing bands derived from average response time
const (
	PacingDeliberate = "deliberate"
	PacingSteady     = "steady"
	PacingBrisk      = "brisk"
)

// UserProfile holds behavioral insights derived from response history
type UserProfile struct {
	EngagementStyle     string  `json:"engagementStyle"`
	ThoughtfulnessScore float64 `json:"thoughtfulnessScore"` // 0-100
}

// PersonalizationContext is recomputed per question render from the response
// history and timing telemetry. It is never persisted.
type PersonalizationContext struct {
	Profile         UserProfile     `json:"profile"`
	EngagementLevel EngagementLevel `json:"engagementLevel"`
	FatigueLevel    FatigueLevel    `json:"fatigueLevel"`
	TimeOfDay       string          `json:"timeOfDay"` // morning, afternoon, evening, night
	SessionPhase    SessionPhase    `json:"sessionPhase"`
	PreferredPacing string          `json:"preferredPacing"`
}

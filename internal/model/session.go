package model

import "time"

// SessionSnapshot is the resumable progression state cached in Redis.
// The live session in memory is authoritative; the snapshot only exists so a
// respondent can pick up where they left off after a disconnect.
type SessionSnapshot struct {
	SessionID       string                      `json:"sessionId"`
	RespondentID    string                      `json:"respondentId"`
	QuestionnaireID string                      `json:"questionnaireId"`
	CurrentIndex    int                         `json:"currentIndex"`
	Responses       map[string]RecordedResponse `json:"responses"`
	StartedAt       time.Time                   `json:"startedAt"`
	SavedAt         time.Time                   `json:"savedAt"`
}

// ProgressSnapshot is the aggregate progress view served to dashboards
type ProgressSnapshot struct {
	CompletedCount    int `json:"completedCount"`
	TotalCount        int `json:"totalCount"`
	SectionsCompleted int `json:"sectionsCompleted"`
	TotalSections     int `json:"totalSections"`
}

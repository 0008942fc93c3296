package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"debatehub/internal/cache"
	"debatehub/internal/engine"
	"debatehub/internal/event"
	"debatehub/internal/model"
	"debatehub/internal/repository"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotReady  = errors.New("session does not meet finalization requirements")
	ErrUnknownQuestion  = errors.New("question not in questionnaire")
	ErrCatalogLoad      = errors.New("failed to load questionnaire")
	ErrAlreadyFinalized = errors.New("session already finalized")
)

const defaultAutoSaveInterval = 30 * time.Second

// liveSession holds the in-memory state machine for one active respondent.
type liveSession struct {
	mu sync.Mutex

	sessionID       string
	respondentID    string
	questionnaireID string

	catalog     []model.QuestionDescriptor
	questionIdx map[string]int
	store       *engine.ResponseStore
	progression *engine.Progression

	saveTimer    *time.Timer
	flushedRev   uint64
	flushedIdx   int
	avgSampleSum int64 // total completion time across recorded responses, ms
	finalized    bool
}

// SessionView is the client-facing snapshot returned by navigation operations.
type SessionView struct {
	SessionID            string                    `json:"sessionId"`
	CurrentIndex         int                       `json:"currentIndex"`
	Complete             bool                      `json:"complete"`
	PercentComplete      float64                   `json:"percentComplete"`
	Question             *model.QuestionDescriptor `json:"question,omitempty"`
	NextRecommendedIndex int                       `json:"nextRecommendedIndex"`
	CanSkip              bool                      `json:"canSkip"`
	SkipSuggestion       string                    `json:"skipSuggestion,omitempty"`
	Sections             []model.SectionSummary    `json:"sections"`
	// SaveAdvisory carries a non-blocking persistence warning; the answer is
	// still held in memory and will be retried by the auto-save flush.
	SaveAdvisory string `json:"saveAdvisory,omitempty"`
}

// SessionService manages live survey sessions: navigation, response
// recording, auto-save, personalization and finalization.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession

	questionnaires *QuestionnaireService
	responseRepo   repository.ResponseRepo
	profileRepo    repository.ProfileRepo
	sessionCache   cache.SessionCache
	publisher      event.Publisher
	broadcaster    Broadcaster

	autoSaveInterval time.Duration
	sectionOpts      engine.SectionOptions
}

func NewSessionService(
	questionnaires *QuestionnaireService,
	responseRepo repository.ResponseRepo,
	profileRepo repository.ProfileRepo,
	sessionCache cache.SessionCache,
	publisher event.Publisher,
) *SessionService {
	return &SessionService{
		sessions:         make(map[string]*liveSession),
		questionnaires:   questionnaires,
		responseRepo:     responseRepo,
		profileRepo:      profileRepo,
		sessionCache:     sessionCache,
		publisher:        publisher,
		autoSaveInterval: defaultAutoSaveInterval,
		sectionOpts:      engine.SectionOptions{OptionalMatcher: engine.DefaultOptionalMatcher},
	}
}

// SetBroadcaster wires the WebSocket hub (done after construction to
// avoid a dependency cycle between hub and service).
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetAutoSaveInterval overrides the flush debounce interval.
func (s *SessionService) SetAutoSaveInterval(d time.Duration) {
	if d > 0 {
		s.autoSaveInterval = d
	}
}

// StartSession creates a fresh session against a questionnaire. If the
// questionnaire cannot be loaded, no session state is created.
func (s *SessionService) StartSession(ctx context.Context, questionnaireID, respondentName string) (*SessionView, string, error) {
	q, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		if errors.Is(err, ErrQuestionnaireNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	sessionID := "sess_" + uuid.New().String()[:12]
	respondentID := "resp_" + uuid.New().String()[:8]
	if respondentName != "" {
		respondentID = respondentID + "_" + respondentName
	}

	sess := s.newLiveSession(sessionID, respondentID, q, time.Now())

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	log.Printf("Session %s started for questionnaire %s (%d questions)", sessionID, questionnaireID, len(q.Questions))
	return s.viewLocked(sess), respondentID, nil
}

// ResumeSession restores a session from its cached snapshot after a
// disconnect or server restart.
func (s *SessionService) ResumeSession(ctx context.Context, sessionID string) (*SessionView, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return s.view(sess), nil
	}

	snap, err := s.sessionCache.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		// Snapshot expired; fall back to the durable store.
		snap, err = s.snapshotFromRecords(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}

	q, err := s.questionnaires.GetByID(ctx, snap.QuestionnaireID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	sess = s.newLiveSession(snap.SessionID, snap.RespondentID, q, snap.StartedAt)
	sess.store.Restore(snap.Responses)
	for _, r := range snap.Responses {
		sess.avgSampleSum += int64(r.CompletionTimeMs)
	}
	if err := sess.progression.JumpTo(snap.CurrentIndex); err != nil {
		log.Printf("Session %s: snapshot index %d out of range, resetting", sessionID, snap.CurrentIndex)
	}
	sess.flushedRev = sess.store.Revision()
	sess.flushedIdx = sess.progression.CurrentIndex()

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	log.Printf("Session %s resumed at question %d with %d responses", sessionID, snap.CurrentIndex, len(snap.Responses))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// snapshotFromRecords rebuilds a session snapshot from persisted responses
// after the cache entry has expired. The position is set past the last
// answered question; SavedAt stands in for the lost start time.
func (s *SessionService) snapshotFromRecords(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	records, err := s.responseRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrSessionNotFound
	}

	snap := &model.SessionSnapshot{
		SessionID:       sessionID,
		RespondentID:    records[0].RespondentID,
		QuestionnaireID: records[0].QuestionnaireID,
		Responses:       make(map[string]model.RecordedResponse, len(records)),
		StartedAt:       records[0].SavedAt,
		SavedAt:         time.Now(),
	}
	for _, rec := range records {
		snap.Responses[rec.QuestionID] = rec.RecordedResponse
		if rec.SavedAt.Before(snap.StartedAt) {
			snap.StartedAt = rec.SavedAt
		}
	}
	snap.CurrentIndex = len(snap.Responses)
	return snap, nil
}

func (s *SessionService) newLiveSession(sessionID, respondentID string, q *model.Questionnaire, start time.Time) *liveSession {
	idx := make(map[string]int, len(q.Questions))
	for i, question := range q.Questions {
		idx[question.ID] = i
	}
	store := engine.NewResponseStore()
	return &liveSession{
		sessionID:       sessionID,
		respondentID:    respondentID,
		questionnaireID: q.ID,
		catalog:         q.Questions,
		questionIdx:     idx,
		store:           store,
		progression:     engine.NewProgression(q.Questions, store, start),
		flushedIdx:      -1,
	}
}

func (s *SessionService) get(sessionID string) (*liveSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SaveResponse validates and records an answer, then arms the auto-save
// debounce. The session position does not change.
func (s *SessionService) SaveResponse(ctx context.Context, sessionID string, resp model.RecordedResponse) (*SessionView, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finalized {
		return nil, ErrAlreadyFinalized
	}

	i, ok := sess.questionIdx[resp.QuestionID]
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if err := engine.ValidateResponse(sess.catalog[i], resp); err != nil {
		return nil, err
	}

	if prev, had := sess.store.Get(resp.QuestionID); had {
		sess.avgSampleSum -= int64(prev.CompletionTimeMs)
	}
	sess.store.Put(resp)
	sess.avgSampleSum += int64(resp.CompletionTimeMs)

	// Advisory immediate write; the debounced flush is the durable path.
	advisory := ""
	rec := s.record(sess, resp)
	if err := s.responseRepo.Save(ctx, rec); err != nil {
		log.Printf("Session %s: immediate save for %s failed: %v", sessionID, resp.QuestionID, err)
		advisory = "Your answer is recorded but could not be saved to the server yet; it will be retried automatically."
	}

	s.armAutoSave(sess)
	s.notify(sess, "response_saved", map[string]interface{}{
		"questionId": resp.QuestionID,
		"answered":   sess.store.Len(),
	})

	view := s.view(sess)
	view.SaveAdvisory = advisory
	return view, nil
}

// Advance moves to the next question, enforcing the required-question gate.
func (s *SessionService) Advance(sessionID string) (*SessionView, error) {
	return s.navigate(sessionID, func(sess *liveSession) error {
		return sess.progression.Advance()
	})
}

// Retreat moves back one question. Going back is never blocked.
func (s *SessionService) Retreat(sessionID string) (*SessionView, error) {
	return s.navigate(sessionID, func(sess *liveSession) error {
		sess.progression.Retreat()
		return nil
	})
}

// JumpTo moves directly to a question index.
func (s *SessionService) JumpTo(sessionID string, index int) (*SessionView, error) {
	return s.navigate(sessionID, func(sess *liveSession) error {
		return sess.progression.JumpTo(index)
	})
}

// Skip advances past the current question when skip policy allows it.
func (s *SessionService) Skip(sessionID string) (*SessionView, error) {
	return s.navigate(sessionID, func(sess *liveSession) error {
		if !engine.CanSkipCurrent(sess.catalog, sess.store, sess.progression.CurrentIndex()) {
			return engine.ErrRequiredUnanswered
		}
		return sess.progression.Advance()
	})
}

func (s *SessionService) navigate(sessionID string, move func(*liveSession) error) (*SessionView, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finalized {
		return nil, ErrAlreadyFinalized
	}
	if err := move(sess); err != nil {
		return nil, err
	}
	s.armAutoSave(sess)

	view := s.view(sess)
	s.notify(sess, "position_changed", map[string]interface{}{
		"currentIndex": view.CurrentIndex,
		"complete":     view.Complete,
	})
	return view, nil
}

// View returns the current session view without changing anything.
func (s *SessionService) View(sessionID string) (*SessionView, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.viewLocked(sess), nil
}

// Personalization computes the current personalization context for a session.
func (s *SessionService) Personalization(sessionID string) (*model.PersonalizationContext, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	responses := s.responseSlice(sess)
	duration := time.Since(sess.progression.SessionStart()).Seconds()
	avg := 0.0
	if len(responses) > 0 {
		avg = float64(sess.avgSampleSum) / float64(len(responses)) / 1000.0
	}

	pctx := engine.ComputeContext(engine.ScorerInput{
		Responses:          responses,
		SessionDurationSec: duration,
		AvgResponseTimeSec: avg,
		CurrentIndex:       sess.progression.CurrentIndex(),
		CatalogLength:      len(sess.catalog),
		Now:                time.Now(),
	})
	return &pctx, nil
}

// Issues runs the consistency analyzer over the session's responses.
func (s *SessionService) Issues(sessionID string) ([]model.ConsistencyIssue, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return engine.Analyze(sess.catalog, sess.store), nil
}

// Progress returns section-level completion counters.
func (s *SessionService) Progress(sessionID string) (*model.ProgressSnapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sections := engine.BuildSections(sess.catalog, sess.store, s.sectionOpts)
	done := 0
	for _, sec := range sections {
		if sec.CompletedCount == sec.TotalCount {
			done++
		}
	}
	return &model.ProgressSnapshot{
		CompletedCount:    sess.store.Len(),
		TotalCount:        len(sess.catalog),
		SectionsCompleted: done,
		TotalSections:     len(sections),
	}, nil
}

// Finalize closes out a session: the completion gate must pass, responses
// are flushed, a respondent profile is written and an event is published.
func (s *SessionService) Finalize(ctx context.Context, sessionID string) (*model.RespondentProfile, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.finalized {
		return nil, ErrAlreadyFinalized
	}

	issues := engine.Analyze(sess.catalog, sess.store)
	rate := engine.CompletionRate(sess.catalog, sess.store)
	if !engine.ReadyToFinalize(rate, issues) {
		return nil, ErrSessionNotReady
	}

	if err := s.flush(ctx, sess); err != nil {
		return nil, err
	}

	responses := s.responseSlice(sess)
	avg := 0.0
	if len(responses) > 0 {
		avg = float64(sess.avgSampleSum) / float64(len(responses)) / 1000.0
	}
	pctx := engine.ComputeContext(engine.ScorerInput{
		Responses:          responses,
		SessionDurationSec: time.Since(sess.progression.SessionStart()).Seconds(),
		AvgResponseTimeSec: avg,
		CurrentIndex:       sess.progression.CurrentIndex(),
		CatalogLength:      len(sess.catalog),
		Now:                time.Now(),
	})

	profile := &model.RespondentProfile{
		ID:                  uuid.New().String(),
		RespondentID:        sess.respondentID,
		QuestionnaireID:     sess.questionnaireID,
		SessionID:           sess.sessionID,
		EngagementStyle:     pctx.Profile.EngagementStyle,
		ThoughtfulnessScore: pctx.Profile.ThoughtfulnessScore,
		CompletionRate:      rate,
		Sections:            engine.BuildSections(sess.catalog, sess.store, s.sectionOpts),
		Issues:              issues,
		FinalizedAt:         time.Now(),
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(event.SessionFinalized, map[string]interface{}{
		"sessionId":       sess.sessionID,
		"respondentId":    sess.respondentID,
		"questionnaireId": sess.questionnaireID,
		"engagementStyle": profile.EngagementStyle,
		"completionRate":  profile.CompletionRate,
	}); err != nil {
		log.Printf("Session %s: publish finalized event failed: %v", sessionID, err)
	}

	sess.finalized = true
	s.teardown(sess)
	s.notify(sess, "session_finalized", map[string]interface{}{
		"respondentId": sess.respondentID,
	})
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(sess.sessionID)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	log.Printf("Session %s finalized (completion %.0f%%)", sessionID, profile.CompletionRate*100)
	return profile, nil
}

// CloseSession evicts a session without finalizing, flushing pending
// responses best effort so it can be resumed later.
func (s *SessionService) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if err := s.flush(ctx, sess); err != nil {
		log.Printf("Session %s: flush on close failed: %v", sessionID, err)
	}
	s.teardown(sess)
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	log.Printf("Session %s closed", sessionID)
	return nil
}

// armAutoSave (re)starts the flush debounce. Caller holds sess.mu.
func (s *SessionService) armAutoSave(sess *liveSession) {
	if sess.saveTimer != nil {
		sess.saveTimer.Stop()
	}
	sess.saveTimer = time.AfterFunc(s.autoSaveInterval, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if sess.finalized {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.flush(ctx, sess); err != nil {
			log.Printf("Session %s: auto-save failed: %v", sess.sessionID, err)
		}
	})
}

// flush persists unflushed responses and refreshes the cache snapshot.
// Caller holds sess.mu. Skips the write when nothing changed.
func (s *SessionService) flush(ctx context.Context, sess *liveSession) error {
	rev := sess.store.Revision()
	idx := sess.progression.CurrentIndex()
	if rev == sess.flushedRev && idx == sess.flushedIdx {
		return nil
	}

	responses := sess.store.Snapshot()
	records := make([]model.ResponseRecord, 0, len(responses))
	for _, r := range responses {
		records = append(records, *s.record(sess, r))
	}

	meta := model.SessionMetadata{
		SessionID:       sess.sessionID,
		RespondentID:    sess.respondentID,
		QuestionnaireID: sess.questionnaireID,
		StartedAt:       sess.progression.SessionStart(),
		FlushedAt:       time.Now(),
		Revision:        rev,
	}
	if err := s.responseRepo.BulkSave(ctx, records, meta); err != nil {
		return err
	}

	snap := &model.SessionSnapshot{
		SessionID:       sess.sessionID,
		RespondentID:    sess.respondentID,
		QuestionnaireID: sess.questionnaireID,
		CurrentIndex:    sess.progression.CurrentIndex(),
		Responses:       responses,
		StartedAt:       sess.progression.SessionStart(),
		SavedAt:         time.Now(),
	}
	if err := s.sessionCache.SetSnapshot(ctx, snap); err != nil {
		log.Printf("Session %s: snapshot cache write failed: %v", sess.sessionID, err)
	}

	sess.flushedRev = rev
	sess.flushedIdx = idx
	return nil
}

// teardown stops the auto-save timer. Caller holds sess.mu.
func (s *SessionService) teardown(sess *liveSession) {
	if sess.saveTimer != nil {
		sess.saveTimer.Stop()
		sess.saveTimer = nil
	}
}

// responseSlice returns recorded responses in catalog order. Caller holds sess.mu.
func (s *SessionService) responseSlice(sess *liveSession) []model.RecordedResponse {
	out := make([]model.RecordedResponse, 0, sess.store.Len())
	for _, q := range sess.catalog {
		if r, ok := sess.store.Get(q.ID); ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *SessionService) record(sess *liveSession, r model.RecordedResponse) *model.ResponseRecord {
	return &model.ResponseRecord{
		SessionID:        sess.sessionID,
		RespondentID:     sess.respondentID,
		QuestionnaireID:  sess.questionnaireID,
		RecordedResponse: r,
		SavedAt:          time.Now(),
	}
}

func (s *SessionService) notify(sess *liveSession, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sess.sessionID, msgType, payload)
	}
}

// view builds the client-facing snapshot. Caller holds sess.mu.
func (s *SessionService) view(sess *liveSession) *SessionView {
	sections := engine.BuildSections(sess.catalog, sess.store, s.sectionOpts)
	cur := sess.progression.CurrentIndex()

	v := &SessionView{
		SessionID:            sess.sessionID,
		CurrentIndex:         cur,
		Complete:             sess.progression.IsComplete(),
		PercentComplete:      sess.progression.PercentComplete(),
		NextRecommendedIndex: engine.NextRecommendedIndex(sess.catalog, sections, cur),
		Sections:             sections,
	}
	if q, ok := sess.progression.Current(); ok {
		qCopy := q
		v.Question = &qCopy
		v.CanSkip = engine.CanSkipCurrent(sess.catalog, sess.store, cur)
		if msg, ok := engine.SkipRecommendation(sess.catalog, sections, sess.store, cur); ok {
			v.SkipSuggestion = msg
		}
	}
	return v
}

// viewLocked locks the session before building the view.
func (s *SessionService) viewLocked(sess *liveSession) *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess)
}

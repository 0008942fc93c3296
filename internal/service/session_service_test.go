package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debatehub/internal/engine"
	"debatehub/internal/model"
)

type fakeQuestionnaireRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.Questionnaire
	nextID int
}

func newFakeQuestionnaireRepo() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{byID: make(map[string]*model.Questionnaire)}
}

func (f *fakeQuestionnaireRepo) Create(_ context.Context, q *model.Questionnaire) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("qn_%d", f.nextID)
	q.ID = id
	f.byID[id] = q
	return id, nil
}

func (f *fakeQuestionnaireRepo) GetByID(_ context.Context, id string) (*model.Questionnaire, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeQuestionnaireRepo) GetByHostID(_ context.Context, hostID string) ([]*model.Questionnaire, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Questionnaire
	for _, q := range f.byID {
		if q.HostID == hostID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionnaireRepo) Update(_ context.Context, q *model.Questionnaire) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[q.ID] = q
	return nil
}

func (f *fakeQuestionnaireRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	saves     []model.ResponseRecord
	bulkCalls int
	lastMeta  model.SessionMetadata
	failSave  bool
	failBulk  bool
}

func (f *fakeResponseRepo) Save(_ context.Context, record *model.ResponseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("mongo unavailable")
	}
	f.saves = append(f.saves, *record)
	return nil
}

func (f *fakeResponseRepo) BulkSave(_ context.Context, records []model.ResponseRecord, meta model.SessionMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBulk {
		return errors.New("mongo unavailable")
	}
	f.bulkCalls++
	f.lastMeta = meta
	return nil
}

func (f *fakeResponseRepo) GetBySessionID(_ context.Context, sessionID string) ([]*model.ResponseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ResponseRecord
	for i := range f.saves {
		if f.saves[i].SessionID == sessionID {
			out = append(out, &f.saves[i])
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) bulkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bulkCalls
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles []*model.RespondentProfile
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile *model.RespondentProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, profile)
	return nil
}

func (f *fakeProfileRepo) GetByRespondent(_ context.Context, respondentID, questionnaireID string) (*model.RespondentProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.RespondentID == respondentID && p.QuestionnaireID == questionnaireID {
			return p, nil
		}
	}
	return nil, nil
}

type fakeSessionCache struct {
	mu    sync.Mutex
	snaps map[string]*model.SessionSnapshot
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{snaps: make(map[string]*model.SessionSnapshot)}
}

func (f *fakeSessionCache) SetSnapshot(_ context.Context, snapshot *model.SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[snapshot.SessionID] = snapshot
	return nil
}

func (f *fakeSessionCache) GetSnapshot(_ context.Context, sessionID string) (*model.SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snaps[sessionID], nil
}

func (f *fakeSessionCache) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snaps, sessionID)
	return nil
}

func (f *fakeSessionCache) has(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.snaps[sessionID]
	return ok
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(eventType string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type testEnv struct {
	svc       *SessionService
	responses *fakeResponseRepo
	profiles  *fakeProfileRepo
	cache     *fakeSessionCache
	publisher *fakePublisher
	qnID      string
}

func newTestEnv(t *testing.T, questions []model.QuestionDescriptor) *testEnv {
	t.Helper()

	qnRepo := newFakeQuestionnaireRepo()
	responses := &fakeResponseRepo{}
	profiles := &fakeProfileRepo{}
	sessCache := newFakeSessionCache()
	publisher := &fakePublisher{}

	qnSvc := NewQuestionnaireService(qnRepo)
	qn, err := qnSvc.Create(context.Background(), "host_1", &model.Questionnaire{
		Title:     "Onboarding",
		Questions: questions,
	})
	require.NoError(t, err)

	svc := NewSessionService(qnSvc, responses, profiles, sessCache, publisher)
	return &testEnv{
		svc:       svc,
		responses: responses,
		profiles:  profiles,
		cache:     sessCache,
		publisher: publisher,
		qnID:      qn.ID,
	}
}

func onboardingQuestions() []model.QuestionDescriptor {
	return []model.QuestionDescriptor{
		{ID: "q0", Type: model.QuestionTypeFreeText, Section: "background", Required: true, Prompt: "Why debate?"},
		{ID: "q1", Type: model.QuestionTypeFreeText, Section: "background", Required: true, Prompt: "Experience?"},
		{ID: "q2", Type: model.QuestionTypeFreeText, Section: "optional-reflection", Prompt: "Anything else?"},
	}
}

func textResponse(questionID, text string, confidence, timeMs int) model.RecordedResponse {
	return model.RecordedResponse{
		QuestionID:       questionID,
		Value:            model.ResponseValue{Text: text},
		ConfidenceLevel:  confidence,
		CompletionTimeMs: timeMs,
	}
}

func TestStartSession(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())

	view, respondentID, err := env.svc.StartSession(context.Background(), env.qnID, "alex")
	require.NoError(t, err)

	assert.NotEmpty(t, respondentID)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.False(t, view.Complete)
	assert.Len(t, view.Sections, 2)
	require.NotNil(t, view.Question)
	assert.Equal(t, "q0", view.Question.ID)
}

func TestStartSessionUnknownQuestionnaire(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())

	_, _, err := env.svc.StartSession(context.Background(), "qn_missing", "")
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
}

func TestSaveResponseDoesNotMovePosition(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	view, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "to sharpen my arguments", 4, 30000))
	require.NoError(t, err)

	assert.Equal(t, 0, view.CurrentIndex)
	assert.Equal(t, 1, view.Sections[0].CompletedCount)
}

func TestSaveResponseRejectsUnknownQuestion(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q99", "hi", 3, 1000))
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestSaveResponseRejectsInvalidValue(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "   ", 3, 1000))
	var verr *engine.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSaveResponseKeepsAnswerWhenPersistenceFails(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	env.responses.failSave = true
	view, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)

	// The answer is held locally and the client gets an advisory, not an error.
	assert.NotEmpty(t, view.SaveAdvisory)
	assert.Equal(t, 1, view.Sections[0].CompletedCount)
}

func TestAdvanceBlockedUntilRequiredAnswered(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.Advance(view.SessionID)
	assert.ErrorIs(t, err, engine.ErrRequiredUnanswered)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)

	view, err = env.svc.Advance(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentIndex)
}

func TestSkipOptionalQuestion(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	// Required question cannot be skipped.
	_, err = env.svc.Skip(view.SessionID)
	assert.ErrorIs(t, err, engine.ErrRequiredUnanswered)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)
	_, err = env.svc.Advance(view.SessionID)
	require.NoError(t, err)
	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q1", "ok", 3, 5000))
	require.NoError(t, err)
	_, err = env.svc.Advance(view.SessionID)
	require.NoError(t, err)

	view, err = env.svc.Skip(view.SessionID)
	require.NoError(t, err)
	assert.True(t, view.Complete)
}

func TestJumpAndRetreat(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	view, err = env.svc.JumpTo(view.SessionID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CurrentIndex)

	view, err = env.svc.Retreat(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentIndex)

	_, err = env.svc.JumpTo(view.SessionID, 42)
	assert.ErrorIs(t, err, engine.ErrIndexOutOfRange)
}

func TestFinalizeGateBlocksIncompleteSession(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.Finalize(context.Background(), view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotReady)
	assert.Empty(t, env.publisher.events)
}

func TestFinalizeWritesProfileAndPublishes(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, respondentID, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	for _, qid := range []string{"q0", "q1", "q2"} {
		_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse(qid, "a considered answer", 4, 35000))
		require.NoError(t, err)
	}

	profile, err := env.svc.Finalize(context.Background(), view.SessionID)
	require.NoError(t, err)

	assert.Equal(t, respondentID, profile.RespondentID)
	assert.Equal(t, env.qnID, profile.QuestionnaireID)
	assert.InDelta(t, 1.0, profile.CompletionRate, 1e-9)
	require.Len(t, env.profiles.profiles, 1)
	assert.Equal(t, []string{"survey.session.finalized"}, env.publisher.events)

	// Session is gone after finalization.
	_, err = env.svc.Advance(view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAutoSaveDebounce(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	env.svc.SetAutoSaveInterval(20 * time.Millisecond)

	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)
	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q1", "ok", 3, 5000))
	require.NoError(t, err)

	assert.Equal(t, 0, env.responses.bulkCount())

	require.Eventually(t, func() bool {
		return env.responses.bulkCount() == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, env.cache.has(view.SessionID))

	// Nothing new to flush; no second bulk write even after another interval.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, env.responses.bulkCount())
}

func TestResumeSessionFromSnapshot(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)
	sessionID := view.SessionID

	_, err = env.svc.SaveResponse(context.Background(), sessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)
	_, err = env.svc.Advance(sessionID)
	require.NoError(t, err)

	require.NoError(t, env.svc.CloseSession(context.Background(), sessionID))
	_, err = env.svc.Advance(sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	resumed, err := env.svc.ResumeSession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.CurrentIndex)
	assert.Equal(t, 1, resumed.Sections[0].CompletedCount)
}

func TestResumeSessionFromDurableStore(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)
	sessionID := view.SessionID

	_, err = env.svc.SaveResponse(context.Background(), sessionID, textResponse("q0", "ok", 3, 5000))
	require.NoError(t, err)

	require.NoError(t, env.svc.CloseSession(context.Background(), sessionID))
	// Simulate the snapshot expiring from the cache.
	require.NoError(t, env.cache.Delete(context.Background(), sessionID))

	resumed, err := env.svc.ResumeSession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed.CurrentIndex)
	assert.Equal(t, 1, resumed.Sections[0].CompletedCount)
}

func TestResumeSessionUnknown(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())

	_, err := env.svc.ResumeSession(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPersonalizationAndProgress(t *testing.T) {
	env := newTestEnv(t, onboardingQuestions())
	view, _, err := env.svc.StartSession(context.Background(), env.qnID, "")
	require.NoError(t, err)

	_, err = env.svc.SaveResponse(context.Background(), view.SessionID, textResponse("q0", "ok", 4, 5000))
	require.NoError(t, err)

	pctx, err := env.svc.Personalization(view.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, pctx.Profile.EngagementStyle)
	assert.Equal(t, model.PhaseWarmup, pctx.SessionPhase)

	progress, err := env.svc.Progress(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedCount)
	assert.Equal(t, 3, progress.TotalCount)
	assert.Equal(t, 0, progress.SectionsCompleted)
	assert.Equal(t, 2, progress.TotalSections)
}

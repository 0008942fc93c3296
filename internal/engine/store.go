package engine

import "debatehub/internal/model"

// ResponseStore is the in-memory map from question ID to recorded response
// for one session. The engine is event-driven and single-threaded per
// session; the owning service serializes access. Every mutation bumps the
// revision, which drives auto-save debouncing and lets callers detect
// unflushed changes.
type ResponseStore struct {
	responses map[string]model.RecordedResponse
	revision  uint64
}

// NewResponseStore creates an empty response store
func NewResponseStore() *ResponseStore {
	return &ResponseStore{
		responses: make(map[string]model.RecordedResponse),
	}
}

// Put records or overwrites the response for a question
func (s *ResponseStore) Put(r model.RecordedResponse) {
	s.responses[r.QuestionID] = r
	s.revision++
}

// Get returns the recorded response for a question, if any
func (s *ResponseStore) Get(questionID string) (model.RecordedResponse, bool) {
	r, ok := s.responses[questionID]
	return r, ok
}

// Has reports whether a response exists for the question
func (s *ResponseStore) Has(questionID string) bool {
	_, ok := s.responses[questionID]
	return ok
}

// Len returns the number of recorded responses
func (s *ResponseStore) Len() int {
	return len(s.responses)
}

// Revision returns the mutation counter
func (s *ResponseStore) Revision() uint64 {
	return s.revision
}

// Snapshot returns a copy of the recorded responses
func (s *ResponseStore) Snapshot() map[string]model.RecordedResponse {
	out := make(map[string]model.RecordedResponse, len(s.responses))
	for id, r := range s.responses {
		out[id] = r
	}
	return out
}

// Restore replaces the store contents, used when resuming a session from a
// cached snapshot. Counts as one mutation.
func (s *ResponseStore) Restore(responses map[string]model.RecordedResponse) {
	s.responses = make(map[string]model.RecordedResponse, len(responses))
	for id, r := range responses {
		s.responses[id] = r
	}
	s.revision++
}

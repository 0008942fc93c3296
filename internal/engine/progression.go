package engine

import (
	"errors"
	"time"

	"debatehub/internal/model"
)

var (
	// ErrRequiredUnanswered blocks Advance on an unanswered required question
	ErrRequiredUnanswered = errors.New("current question is required and unanswered")
	// ErrIndexOutOfRange rejects a jump outside [0, len(catalog)]
	ErrIndexOutOfRange = errors.New("target index out of range")
)

// Progression is the state machine tracking a respondent's position through
// the catalog. Index len(catalog) is the terminal Complete state; responses
// stay editable from there via JumpTo.
//
// Invariant: 0 <= currentIndex <= len(catalog), and the index only moves
// through Advance, Retreat and JumpTo.
type Progression struct {
	catalog      []model.QuestionDescriptor
	store        *ResponseStore
	currentIndex int
	sessionStart time.Time
}

// NewProgression creates a progression at index 0 over the given catalog
func NewProgression(catalog []model.QuestionDescriptor, store *ResponseStore, sessionStart time.Time) *Progression {
	return &Progression{
		catalog:      catalog,
		store:        store,
		sessionStart: sessionStart,
	}
}

// CurrentIndex returns the current catalog position
func (p *Progression) CurrentIndex() int {
	return p.currentIndex
}

// SessionStart returns when the session began
func (p *Progression) SessionStart() time.Time {
	return p.sessionStart
}

// IsComplete reports whether the progression is in the terminal state
func (p *Progression) IsComplete() bool {
	return p.currentIndex == len(p.catalog)
}

// Current returns the question at the current position. The second return is
// false in the Complete state.
func (p *Progression) Current() (model.QuestionDescriptor, bool) {
	if p.IsComplete() {
		return model.QuestionDescriptor{}, false
	}
	return p.catalog[p.currentIndex], true
}

// Advance moves forward one question. It fails without moving when the
// current question is required and has no recorded response; back navigation
// and jumps are never blocked this way.
func (p *Progression) Advance() error {
	if p.IsComplete() {
		return nil
	}
	q := p.catalog[p.currentIndex]
	if q.Required && !p.store.Has(q.ID) {
		return ErrRequiredUnanswered
	}
	p.currentIndex++
	return nil
}

// Retreat moves back one question, flooring at 0. Always allowed.
func (p *Progression) Retreat() {
	if p.currentIndex > 0 {
		p.currentIndex--
	}
}

// JumpTo sets the position directly. Used for section-map navigation and
// issue resolution; jumping to len(catalog) enters Complete, and jumping
// back out of Complete is allowed.
func (p *Progression) JumpTo(index int) error {
	if index < 0 || index > len(p.catalog) {
		return ErrIndexOutOfRange
	}
	p.currentIndex = index
	return nil
}

// PercentComplete is position-based progress in [0, 100]
func (p *Progression) PercentComplete() float64 {
	if len(p.catalog) == 0 {
		return 100
	}
	return float64(p.currentIndex) / float64(len(p.catalog)) * 100
}

// CompletionRate is the share of catalog questions with a recorded response
func (p *Progression) CompletionRate() float64 {
	return CompletionRate(p.catalog, p.store)
}

package session

import "scholarship-test-service/internal/domain"

// Snapshot is a read-only view of a session at one point in time.
type Snapshot struct {
	s state
}

func (v Snapshot) Phase() Phase { return v.s.phase }

func (v Snapshot) Loading() bool { return v.s.loading }

func (v Snapshot) Loaded() bool { return v.s.loaded }

// Submitting reports whether a submission request is in flight.
func (v Snapshot) Submitting() bool { return v.s.inFlight }

func (v Snapshot) Questions() []domain.SanitizedQuestion {
	return append([]domain.SanitizedQuestion(nil), v.s.questions...)
}

func (v Snapshot) QuestionCount() int { return len(v.s.questions) }

func (v Snapshot) CurrentIndex() int { return v.s.index }

// CurrentQuestion returns the question under the pointer.
func (v Snapshot) CurrentQuestion() (domain.SanitizedQuestion, bool) {
	if v.s.index < 0 || v.s.index >= len(v.s.questions) {
		return domain.SanitizedQuestion{}, false
	}
	return v.s.questions[v.s.index], true
}

func (v Snapshot) HasPrev() bool { return v.s.index > 0 }

func (v Snapshot) HasNext() bool { return v.s.index < len(v.s.questions)-1 }

func (v Snapshot) Answer(questionID int64) (string, bool) {
	opt, ok := v.s.answers[questionID]
	return opt, ok
}

func (v Snapshot) AnsweredCount() int { return len(v.s.answers) }

func (v Snapshot) Flagged(questionID int64) bool {
	_, ok := v.s.flags[questionID]
	return ok
}

func (v Snapshot) FlaggedCount() int { return len(v.s.flags) }

func (v Snapshot) Remaining() int { return v.s.remaining }

func (v Snapshot) Duration() int { return v.s.duration }

func (v Snapshot) Result() (domain.SubmitResponse, bool) {
	if v.s.result == nil {
		return domain.SubmitResponse{}, false
	}
	return *v.s.result, true
}

// Err is the last load or submission failure, cleared on the next attempt.
func (v Snapshot) Err() error { return v.s.err }

// BlocksNavigation reports whether leaving should ask for confirmation.
func (v Snapshot) BlocksNavigation() bool {
	return v.s.result != nil && !v.s.acknowledged
}

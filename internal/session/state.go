package session

import (
	"errors"

	"scholarship-test-service/internal/domain"
)

// Phase is the lifecycle position of one attempt.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Submitting
	Completed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	}
	return "unknown"
}

var (
	// ErrNotLoaded is returned when questions have not been fetched yet.
	ErrNotLoaded = errors.New("questions not loaded")
	// ErrNotStarted is returned when submitting before the timer started.
	ErrNotStarted = errors.New("test not started")
	// ErrNotInProgress is returned when answering outside an active attempt.
	ErrNotInProgress = errors.New("test not in progress")
	// ErrInvalidOption is returned for option labels other than A..D.
	ErrInvalidOption = errors.New("option must be one of A, B, C, D")
	// ErrUnknownQuestion is returned for ids outside the loaded question set.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidDuration is returned for non-positive timer durations.
	ErrInvalidDuration = errors.New("duration must be positive")

	errSuppressed = errors.New("submission suppressed")
	errIgnored    = errors.New("action ignored")
)

// state is the whole mutable attempt. It is only ever replaced by reduce;
// maps are copied on write so published snapshots never change underneath a view.
type state struct {
	questions    []domain.SanitizedQuestion
	loaded       bool
	loading      bool
	index        int
	answers      map[int64]string
	flags        map[int64]struct{}
	duration     int
	remaining    int
	phase        Phase
	inFlight     bool
	result       *domain.SubmitResponse
	err          error
	acknowledged bool
}

func newState() state {
	return state{
		answers: make(map[int64]string),
		flags:   make(map[int64]struct{}),
	}
}

type (
	loadStarted     struct{}
	loadFailed      struct{ err error }
	questionsLoaded struct{ questions []domain.SanitizedQuestion }
	timerStarted    struct{ seconds int }
	ticked          struct{ remaining int }
	expired         struct{}
	answerSelected  struct {
		questionID int64
		option     string
	}
	flagToggled     struct{ questionID int64 }
	moved           struct{ index int }
	submitStarted   struct{}
	submitSucceeded struct{ result domain.SubmitResponse }
	submitFailed    struct{ err error }
	acknowledged    struct{}
)

// reduce is the single mutation entry point of a session.
func reduce(s state, action any) (state, error) {
	switch a := action.(type) {
	case loadStarted:
		s.loading = true
		s.err = nil
	case loadFailed:
		s.loading = false
		s.err = a.err
	case questionsLoaded:
		s.loading = false
		s.loaded = true
		s.questions = append([]domain.SanitizedQuestion(nil), a.questions...)
		s.index = 0
	case timerStarted:
		if !s.loaded {
			return s, ErrNotLoaded
		}
		if a.seconds <= 0 {
			return s, ErrInvalidDuration
		}
		if s.phase != NotStarted && s.phase != InProgress {
			return s, ErrNotInProgress
		}
		s.duration = a.seconds
		s.remaining = a.seconds
		s.phase = InProgress
	case ticked:
		if s.phase == Completed || a.remaining >= s.remaining {
			return s, errIgnored
		}
		s.remaining = max(a.remaining, 0)
	case expired:
		if s.phase == Completed {
			return s, errIgnored
		}
		s.remaining = 0
	case answerSelected:
		if s.phase != InProgress {
			return s, ErrNotInProgress
		}
		if !domain.ValidOption(a.option) {
			return s, ErrInvalidOption
		}
		if !s.hasQuestion(a.questionID) {
			return s, ErrUnknownQuestion
		}
		answers := make(map[int64]string, len(s.answers)+1)
		for k, v := range s.answers {
			answers[k] = v
		}
		answers[a.questionID] = a.option
		s.answers = answers
	case flagToggled:
		if s.phase == Completed {
			return s, ErrNotInProgress
		}
		if !s.hasQuestion(a.questionID) {
			return s, ErrUnknownQuestion
		}
		flags := make(map[int64]struct{}, len(s.flags)+1)
		for k := range s.flags {
			flags[k] = struct{}{}
		}
		if _, ok := flags[a.questionID]; ok {
			delete(flags, a.questionID)
		} else {
			flags[a.questionID] = struct{}{}
		}
		s.flags = flags
	case moved:
		if a.index < 0 || a.index >= len(s.questions) || a.index == s.index {
			return s, errIgnored
		}
		s.index = a.index
	case submitStarted:
		switch {
		case s.phase == NotStarted:
			return s, ErrNotStarted
		case s.phase == Completed, s.inFlight:
			return s, errSuppressed
		}
		s.phase = Submitting
		s.inFlight = true
		s.err = nil
	case submitSucceeded:
		result := a.result
		s.result = &result
		s.phase = Completed
		s.inFlight = false
		s.err = nil
	case submitFailed:
		s.inFlight = false
		s.err = a.err
		if s.remaining > 0 {
			s.phase = InProgress
		}
	case acknowledged:
		if s.result == nil {
			return s, errIgnored
		}
		s.acknowledged = true
	default:
		return s, errIgnored
	}
	return s, nil
}

func (s state) hasQuestion(id int64) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s state) request() domain.SubmitRequest {
	answers := make([]domain.AnswerSubmission, 0, len(s.answers))
	// bank order keeps the payload deterministic
	for _, q := range s.questions {
		if opt, ok := s.answers[q.ID]; ok {
			answers = append(answers, domain.AnswerSubmission{QuestionID: q.ID, SelectedOption: opt})
		}
	}
	elapsed := s.duration - s.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	return domain.SubmitRequest{Answers: answers, TimeTaken: elapsed}
}

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"scholarship-test-service/internal/domain"
)

func TestLoadQuestionsFetchesOnce(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.LoadQuestions(context.Background()); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()
	qs, _ := c.LoadQuestions(context.Background())

	if len(qs) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(qs))
	}
	if api.questionCalls() != 1 {
		t.Fatalf("expected one fetch, got %d", api.questionCalls())
	}
	if c.Snapshot().Loading() {
		t.Fatalf("expected loading flag cleared")
	}
}

func TestSelectAnswerRules(t *testing.T) {
	c, _ := startedController(t, 60, time.Second)
	defer c.Close()

	if err := c.SelectAnswer(1, "E"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	if err := c.SelectAnswer(404, "A"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected unknown question, got %v", err)
	}
	if err := c.SelectAnswer(1, "B"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := c.SelectAnswer(1, "A"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	snap := c.Snapshot()
	if opt, ok := snap.Answer(1); !ok || opt != "A" || snap.AnsweredCount() != 1 {
		t.Fatalf("expected single answer A, got %q (%d answers)", opt, snap.AnsweredCount())
	}
}

func TestSelectAnswerBeforeStart(t *testing.T) {
	c := NewController(newFakeAPI())
	if _, err := c.LoadQuestions(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.SelectAnswer(1, "A"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected not in progress, got %v", err)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected not started, got %v", err)
	}
	if err := NewController(newFakeAPI()).StartTimer(context.Background(), 10); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected not loaded, got %v", err)
	}
}

func TestToggleFlagIsSymmetric(t *testing.T) {
	c, _ := startedController(t, 60, time.Second)
	defer c.Close()

	before := c.Snapshot()
	_ = c.ToggleFlag(3)
	if !c.Snapshot().Flagged(3) {
		t.Fatalf("expected question 3 flagged")
	}
	if before.Flagged(3) {
		t.Fatalf("earlier snapshot must not change")
	}
	_ = c.ToggleFlag(3)
	if c.Snapshot().Flagged(3) || c.Snapshot().FlaggedCount() != 0 {
		t.Fatalf("expected flag removed")
	}
}

func TestNavigationIsClamped(t *testing.T) {
	c, _ := startedController(t, 60, time.Second)
	defer c.Close()

	if c.Navigate(-1) {
		t.Fatalf("expected no move before first question")
	}
	if c.Snapshot().CurrentIndex() != 0 {
		t.Fatalf("index changed at lower bound")
	}
	if !c.GoTo(9) {
		t.Fatalf("expected move to last question")
	}
	if c.Navigate(1) || c.GoTo(10) {
		t.Fatalf("expected no move past last question")
	}
	snap := c.Snapshot()
	if snap.CurrentIndex() != 9 || snap.HasNext() || !snap.HasPrev() {
		t.Fatalf("unexpected pointer state at upper bound: %d", snap.CurrentIndex())
	}
	if !c.Navigate(-1) || c.Snapshot().CurrentIndex() != 8 {
		t.Fatalf("expected move back to 8")
	}
}

func TestSubmitTwiceSendsOnce(t *testing.T) {
	c, api := startedController(t, 600, time.Second)
	defer c.Close()
	api.block()
	_ = c.SelectAnswer(1, "A")

	errs := make(chan error, 1)
	go func() { errs <- c.Submit(context.Background()) }()
	<-api.entered

	if !c.Snapshot().Submitting() {
		t.Fatalf("expected submission in flight")
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("duplicate submit should be a no-op, got %v", err)
	}
	api.release()
	if err := <-errs; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit after completion should be a no-op, got %v", err)
	}
	if api.submitCalls() != 1 {
		t.Fatalf("expected exactly one submission, got %d", api.submitCalls())
	}
	if c.Snapshot().Phase() != Completed {
		t.Fatalf("expected completed, got %s", c.Snapshot().Phase())
	}
}

func TestTimerExpiryAutoSubmitsOnce(t *testing.T) {
	c, api := startedController(t, 5, time.Millisecond)
	for id := int64(1); id <= 4; id++ {
		if err := c.SelectAnswer(id, "A"); err != nil {
			t.Fatalf("select %d: %v", id, err)
		}
	}

	waitDone(t, c)
	if api.submitCalls() != 1 {
		t.Fatalf("expected one auto submission, got %d", api.submitCalls())
	}
	req := api.lastRequest()
	if len(req.Answers) != 4 {
		t.Fatalf("expected 4 answers sent, got %d", len(req.Answers))
	}
	if req.TimeTaken != 5 {
		t.Fatalf("expected elapsed 5s, got %d", req.TimeTaken)
	}
	if snap := c.Snapshot(); snap.Remaining() != 0 || !snap.BlocksNavigation() {
		t.Fatalf("expected expired completed session, remaining %d", snap.Remaining())
	}
}

func TestExpiryWhileSubmittingDoesNotDuplicate(t *testing.T) {
	c, api := startedController(t, 3, 5*time.Millisecond)
	api.block()

	errs := make(chan error, 1)
	go func() { errs <- c.Submit(context.Background()) }()
	<-api.entered

	waitFor(t, func() bool { return c.Snapshot().Remaining() == 0 })
	time.Sleep(20 * time.Millisecond)
	api.release()

	if err := <-errs; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.submitCalls() != 1 {
		t.Fatalf("expected one submission, got %d", api.submitCalls())
	}
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	c, api := startedController(t, 600, time.Second)
	defer c.Close()
	_ = c.SelectAnswer(2, "C")
	_ = c.ToggleFlag(5)
	api.failNext(errors.New("network down"))

	if err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected submission error")
	}
	snap := c.Snapshot()
	if snap.Phase() != InProgress || snap.Err() == nil {
		t.Fatalf("expected resumable session, got %s err=%v", snap.Phase(), snap.Err())
	}
	if opt, _ := snap.Answer(2); opt != "C" || !snap.Flagged(5) {
		t.Fatalf("local state lost after failure")
	}
	if snap.Remaining() <= 0 {
		t.Fatalf("timer stopped after failure")
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	snap = c.Snapshot()
	result, ok := snap.Result()
	if !ok || result.Score != 1 || snap.Phase() != Completed {
		t.Fatalf("expected completed with score 1, got %+v", result)
	}
	if !c.BlocksNavigation() {
		t.Fatalf("expected navigation guard after result")
	}
	c.Acknowledge()
	if c.BlocksNavigation() {
		t.Fatalf("expected guard lifted after acknowledge")
	}
}

func TestFailureAfterExpiryWaitsForManualRetry(t *testing.T) {
	api := newFakeAPI()
	api.failNext(errors.New("server error"))
	c := NewController(api, WithTickPeriod(time.Millisecond))
	if _, err := c.LoadQuestions(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.StartTimer(context.Background(), 2); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, func() bool {
		s := c.Snapshot()
		return api.submitCalls() == 1 && s.Phase() == Submitting && !s.Submitting()
	})
	if err := c.SelectAnswer(1, "A"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected answers frozen after expiry, got %v", err)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("manual retry: %v", err)
	}
	if api.submitCalls() != 2 || c.Snapshot().Phase() != Completed {
		t.Fatalf("expected completed after retry, calls %d", api.submitCalls())
	}
}

func TestStartTimerCancelsRunningCountdown(t *testing.T) {
	c, api := startedController(t, 3, 20*time.Millisecond)
	defer c.Close()
	if err := c.StartTimer(context.Background(), 100); err != nil {
		t.Fatalf("restart: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if api.submitCalls() != 0 {
		t.Fatalf("cancelled countdown still submitted")
	}
	if r := c.Snapshot().Remaining(); r <= 80 || r >= 100 {
		t.Fatalf("expected a single running countdown, remaining %d", r)
	}
}

func TestObserverSeesChanges(t *testing.T) {
	var mu sync.Mutex
	var phases []Phase
	api := newFakeAPI()
	c := NewController(api, WithObserver(func(s Snapshot) {
		mu.Lock()
		phases = append(phases, s.Phase())
		mu.Unlock()
	}))
	_, _ = c.LoadQuestions(context.Background())
	_ = c.StartTimer(context.Background(), 60)
	_ = c.Submit(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(phases) == 0 || phases[len(phases)-1] != Completed {
		t.Fatalf("expected final observed phase completed, got %v", phases)
	}
}

func TestObserverNeverSeesPhaseRegress(t *testing.T) {
	for round := 0; round < 20; round++ {
		var mu sync.Mutex
		var seen []Snapshot
		api := newFakeAPI()
		c := NewController(api, WithTickPeriod(time.Millisecond), WithObserver(func(s Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}))
		_, _ = c.LoadQuestions(context.Background())
		_ = c.StartTimer(context.Background(), 1000)
		time.Sleep(2 * time.Millisecond)
		_ = c.Submit(context.Background())
		time.Sleep(5 * time.Millisecond)
		c.Close()

		mu.Lock()
		completedAt := -1
		for i, s := range seen {
			if completedAt >= 0 && s.Phase() != Completed {
				mu.Unlock()
				t.Fatalf("round %d: snapshot %d has phase %s after completion", round, i, s.Phase())
			}
			if s.Phase() == Completed && completedAt < 0 {
				completedAt = i
			}
			if i > 0 && s.Remaining() > seen[i-1].Remaining() && seen[i-1].Phase() != NotStarted {
				mu.Unlock()
				t.Fatalf("round %d: remaining went back from %d to %d", round, seen[i-1].Remaining(), s.Remaining())
			}
		}
		mu.Unlock()
		if completedAt < 0 {
			t.Fatalf("round %d: completion never observed", round)
		}
	}
}

func TestCancelledTimerContextStopsCountdown(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, WithTickPeriod(5*time.Millisecond))
	defer c.Close()
	if _, err := c.LoadQuestions(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := c.StartTimer(ctx, 20); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	waitFor(t, func() bool { return c.Snapshot().Remaining() < 20 })
	cancel()
	time.Sleep(10 * time.Millisecond)
	frozen := c.Snapshot().Remaining()

	time.Sleep(60 * time.Millisecond)
	snap := c.Snapshot()
	if snap.Remaining() != frozen {
		t.Fatalf("countdown kept running after cancel: %d then %d", frozen, snap.Remaining())
	}
	if api.submitCalls() != 0 || snap.Phase() != InProgress {
		t.Fatalf("expected no automatic submission, got %d calls in phase %s", api.submitCalls(), snap.Phase())
	}
}

func startedController(t *testing.T, seconds int, tick time.Duration) (*Controller, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	c := NewController(api, WithTickPeriod(tick))
	if _, err := c.LoadQuestions(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.StartTimer(context.Background(), seconds); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	return c, api
}

func waitDone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for completion")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type fakeAPI struct {
	mu       sync.Mutex
	bank     []domain.Question
	qCalls   int
	sCalls   int
	last     domain.SubmitRequest
	failures []error
	gate     chan struct{}
	entered  chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bank: domain.SampleQuestions(), entered: make(chan struct{}, 8)}
}

func (f *fakeAPI) Questions(context.Context) ([]domain.SanitizedQuestion, error) {
	f.mu.Lock()
	f.qCalls++
	f.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	out := make([]domain.SanitizedQuestion, 0, len(f.bank))
	for _, q := range f.bank {
		out = append(out, q.Sanitize())
	}
	return out, nil
}

func (f *fakeAPI) SubmitTest(_ context.Context, req domain.SubmitRequest) (domain.SubmitResponse, error) {
	f.mu.Lock()
	f.sCalls++
	f.last = req
	gate := f.gate
	var err error
	if len(f.failures) > 0 {
		err = f.failures[0]
		f.failures = f.failures[1:]
	}
	f.mu.Unlock()

	f.entered <- struct{}{}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.SubmitResponse{}, err
	}

	score := 0
	for _, a := range req.Answers {
		for _, q := range f.bank {
			if q.ID == a.QuestionID && q.CorrectOption == a.SelectedOption {
				score++
			}
		}
	}
	return domain.SubmitResponse{
		Score:          score,
		TotalQuestions: len(f.bank),
		Percentage:     domain.Percentage(score, len(f.bank)),
		TimeTaken:      req.TimeTaken,
	}, nil
}

func (f *fakeAPI) block() {
	f.mu.Lock()
	f.gate = make(chan struct{})
	f.mu.Unlock()
}

func (f *fakeAPI) release() {
	f.mu.Lock()
	close(f.gate)
	f.mu.Unlock()
}

func (f *fakeAPI) failNext(err error) {
	f.mu.Lock()
	f.failures = append(f.failures, err)
	f.mu.Unlock()
}

func (f *fakeAPI) questionCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.qCalls
}

func (f *fakeAPI) submitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sCalls
}

func (f *fakeAPI) lastRequest() domain.SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

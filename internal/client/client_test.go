package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"scholarship-test-service/internal/app"
	"scholarship-test-service/internal/auth"
	"scholarship-test-service/internal/client"
	"scholarship-test-service/internal/domain"
	"scholarship-test-service/internal/infra/memory"
	"scholarship-test-service/internal/session"
	transport "scholarship-test-service/internal/transport/http"
)

var _ session.API = (*client.Client)(nil)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewRecordStoreWithQuestions(domain.SampleQuestions())
	scoring := app.NewScoringService(memory.NewQuestionBank(store, time.Minute), store, store)
	hub := app.NewLeaderboardHub(scoring)
	scoring.SetPublisher(hub)
	authSvc := auth.NewService(store, memory.NewSessionStore(), auth.ServiceConfig{BcryptCost: bcrypt.MinCost})

	server := httptest.NewServer(transport.NewRouter(transport.NewHandler(scoring, authSvc, hub, transport.Options{})))
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	c, err := client.New(baseURL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClientUnauthenticated(t *testing.T) {
	server := newServer(t)
	c := newClient(t, server.URL)

	_, err := c.Questions(context.Background())
	if !client.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Not authenticated" {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestClientDrivesControllerToResult(t *testing.T) {
	ctx := context.Background()
	server := newServer(t)
	c := newClient(t, server.URL)

	if _, err := c.Register(ctx, "alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctrl := session.NewController(c)
	defer ctrl.Close()
	questions, err := ctrl.LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	if err := ctrl.StartTimer(ctx, 60); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	// correct keys: A C D B D A B C D C
	for i, pick := range []string{"A", "C", "D", "B", "D", "A", "B", "A", "A", "A"} {
		if err := ctrl.SelectAnswer(questions[i].ID, pick); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
	}
	if err := ctrl.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, ok := ctrl.Snapshot().Result()
	if !ok {
		t.Fatalf("expected a result after submit")
	}
	if result.Score != 7 || result.TotalQuestions != 10 || result.Percentage != 70 {
		t.Fatalf("unexpected result %+v", result)
	}

	results, err := c.UserResults(ctx)
	if err != nil {
		t.Fatalf("user results: %v", err)
	}
	if len(results) != 1 || results[0].Score != 7 {
		t.Fatalf("unexpected stored results %+v", results)
	}

	entries, err := c.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].User.Username != "alice" {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}
}

func TestClientLoginLogout(t *testing.T) {
	ctx := context.Background()
	server := newServer(t)

	if _, err := newClient(t, server.URL).Register(ctx, "bob", "bob@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	c := newClient(t, server.URL)
	if _, err := c.Login(ctx, "bob", "nope"); !client.IsUnauthenticated(err) {
		t.Fatalf("expected 401 on bad login, got %v", err)
	}
	if _, err := c.Login(ctx, "bob", "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	me, err := c.CurrentUser(ctx)
	if err != nil || me.Username != "bob" {
		t.Fatalf("current user: %+v %v", me, err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.CurrentUser(ctx); !client.IsUnauthenticated(err) {
		t.Fatalf("expected 401 after logout, got %v", err)
	}
}

type countingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) Leaderboard(context.Context) ([]domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 2 {
		return nil, errors.New("temporary")
	}
	return []domain.LeaderboardEntry{{ID: int64(f.calls)}}, nil
}

func TestPollLeaderboardContinuesAfterErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &countingFetcher{}
	var got []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		client.PollLeaderboard(ctx, fetcher, 5*time.Millisecond, func(_ []domain.LeaderboardEntry, err error) {
			got = append(got, err)
			if len(got) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop after cancel")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 callbacks, got %d", len(got))
	}
	if got[0] != nil || got[1] == nil || got[2] != nil {
		t.Fatalf("unexpected error sequence %v", got)
	}
}

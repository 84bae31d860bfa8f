package app_test

import (
	"context"
	"testing"
	"time"

	"scholarship-test-service/internal/app"
	"scholarship-test-service/internal/domain"
)

func TestHubPushesAfterSubmit(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	hub := app.NewLeaderboardHub(service)
	service.SetPublisher(hub)

	ch, cancel, err := hub.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial leaderboard, got %+v", initial.Entries)
	}

	_, err = service.SubmitTest(ctx, 1, domain.SubmitRequest{
		Answers:   []domain.AnswerSubmission{{QuestionID: 1, SelectedOption: "A"}},
		TimeTaken: 12,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case update := <-ch:
		if len(update.Entries) != 1 || update.Entries[0].Score != 1 {
			t.Fatalf("expected one entry with score 1, got %+v", update.Entries)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for leaderboard push")
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	service, _ := newTestService()
	hub := app.NewLeaderboardHub(service)

	ch, cancel, err := hub.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	<-ch
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
}

func TestHubSlowSubscriberKeepsLatest(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	hub := app.NewLeaderboardHub(service)
	service.SetPublisher(hub)

	ch, cancel, _ := hub.Subscribe(ctx)
	defer cancel()

	for i := 0; i < 20; i++ {
		_, _ = service.SubmitTest(ctx, 1, domain.SubmitRequest{TimeTaken: i})
	}

	var last domain.Leaderboard
	for len(ch) > 0 {
		last = <-ch
	}
	if len(last.Entries) != 20 {
		t.Fatalf("expected latest snapshot with 20 entries, got %d", len(last.Entries))
	}
}

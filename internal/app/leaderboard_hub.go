package app

import (
	"context"
	"log"
	"sync"
	"time"

	"scholarship-test-service/internal/domain"
)

// LeaderboardSource computes the current ranking.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardHub fans out freshly computed leaderboards to live subscribers.
type LeaderboardHub struct {
	source LeaderboardSource
	now    func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub(source LeaderboardSource) *LeaderboardHub {
	return &LeaderboardHub{
		source:      source,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe returns a channel primed with the current leaderboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := h.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish recomputes the leaderboard and delivers it to every subscriber.
func (h *LeaderboardHub) Publish(ctx context.Context) {
	if h.subscriberCount() == 0 {
		return
	}
	lb, err := h.snapshot(ctx)
	if err != nil {
		log.Printf("leaderboard publish failed: %v", err)
		return
	}
	h.broadcast(lb)
}

// Run republishes on every interval until ctx is done.
func (h *LeaderboardHub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Publish(ctx)
		}
	}
}

func (h *LeaderboardHub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *LeaderboardHub) broadcast(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// drop the oldest snapshot so a slow reader never blocks publishers
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (h *LeaderboardHub) snapshot(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := h.source.Leaderboard(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: h.now()}, nil
}

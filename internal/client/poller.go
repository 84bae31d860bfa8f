package client

import (
	"context"
	"time"

	"scholarship-test-service/internal/domain"
)

// DefaultPollInterval matches the leaderboard refresh cadence of the web client.
const DefaultPollInterval = 30 * time.Second

// LeaderboardFetcher is satisfied by *Client.
type LeaderboardFetcher interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// PollLeaderboard fetches immediately and then every interval until ctx ends.
// fn receives each result or fetch error; polling continues after errors.
func PollLeaderboard(ctx context.Context, src LeaderboardFetcher, interval time.Duration, fn func([]domain.LeaderboardEntry, error)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		entries, err := src.Leaderboard(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(entries, err)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

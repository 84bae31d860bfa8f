package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"scholarship-test-service/internal/domain"
)

// QuestionRepository loads the current question bank.
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// ResultRepository persists attempts. SaveAttempt must write the result and its answers as one
// unit: either everything is stored or an error is returned.
type ResultRepository interface {
	SaveAttempt(ctx context.Context, result domain.TestResult, answers []domain.UserAnswer) (domain.TestResult, error)
	ListTestResults(ctx context.Context) ([]domain.TestResult, error)
	ListTestResultsByUser(ctx context.Context, userID int64) ([]domain.TestResult, error)
}

// UserRepository resolves users by id.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

// Publisher is notified after every stored attempt.
type Publisher interface {
	Publish(ctx context.Context)
}

// ScoringService scores submissions and serves ranked views.
type ScoringService struct {
	questions QuestionRepository
	results   ResultRepository
	users     UserRepository
	publisher Publisher
	now       func() time.Time
}

func NewScoringService(questions QuestionRepository, results ResultRepository, users UserRepository) *ScoringService {
	return NewScoringServiceWithClock(questions, results, users, time.Now)
}

// NewScoringServiceWithClock is used by tests for deterministic completion times.
func NewScoringServiceWithClock(questions QuestionRepository, results ResultRepository, users UserRepository, now func() time.Time) *ScoringService {
	return &ScoringService{questions: questions, results: results, users: users, now: now}
}

// SetPublisher registers the leaderboard notifier.
func (s *ScoringService) SetPublisher(p Publisher) {
	s.publisher = p
}

// Questions returns the bank with correct options removed.
func (s *ScoringService) Questions(ctx context.Context) ([]domain.SanitizedQuestion, error) {
	bank, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.SanitizedQuestion, 0, len(bank))
	for _, q := range bank {
		out = append(out, q.Sanitize())
	}
	return out, nil
}

// SubmitTest scores a full answer set against the current bank and stores the attempt.
// Answers for unknown questions are dropped. Every call creates an independent result.
func (s *ScoringService) SubmitTest(ctx context.Context, userID int64, req domain.SubmitRequest) (domain.SubmitResponse, error) {
	if err := validateSubmission(req); err != nil {
		return domain.SubmitResponse{}, err
	}

	bank, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return domain.SubmitResponse{}, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[int64]domain.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	score := 0
	answers := make([]domain.UserAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		correct := q.CorrectOption == a.SelectedOption
		if correct {
			score++
		}
		answers = append(answers, domain.UserAnswer{
			UserID:         userID,
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			IsCorrect:      correct,
		})
	}

	result := domain.TestResult{
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(bank),
		TimeTaken:      req.TimeTaken,
		CompletedAt:    s.now(),
	}
	stored, err := s.results.SaveAttempt(ctx, result, answers)
	if err != nil {
		return domain.SubmitResponse{}, fmt.Errorf("save attempt: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx)
	}

	return domain.SubmitResponse{
		Score:          stored.Score,
		TotalQuestions: stored.TotalQuestions,
		Percentage:     stored.Percentage(),
		TimeTaken:      stored.TimeTaken,
	}, nil
}

// Leaderboard ranks every stored result. It is recomputed on each call.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := s.results.ListTestResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	profiles := make(map[int64]domain.PublicUser)
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for _, r := range results {
		profile, ok := profiles[r.UserID]
		if !ok {
			profile, err = s.resolveUser(ctx, r.UserID)
			if err != nil {
				return nil, err
			}
			profiles[r.UserID] = profile
		}
		entries = append(entries, domain.LeaderboardEntry{
			ID:             r.ID,
			User:           profile,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage(),
			TimeTaken:      r.TimeTaken,
			CompletedAt:    r.CompletedAt,
		})
	}

	domain.SortLeaderboard(entries)
	return entries, nil
}

// ResultsForUser lists a user's attempts, most recent first.
func (s *ScoringService) ResultsForUser(ctx context.Context, userID int64) ([]domain.UserResult, error) {
	results, err := s.results.ListTestResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user results: %w", err)
	}

	out := make([]domain.UserResult, 0, len(results))
	for _, r := range results {
		out = append(out, domain.UserResult{
			ID:             r.ID,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage(),
			TimeTaken:      r.TimeTaken,
			CompletedAt:    r.CompletedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// resolveUser falls back to a placeholder for users that no longer exist.
func (s *ScoringService) resolveUser(ctx context.Context, id int64) (domain.PublicUser, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.PublicUser{ID: id, Username: "Unknown", Email: "Unknown"}, nil
	}
	if err != nil {
		return domain.PublicUser{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user.Public(), nil
}

func validateSubmission(req domain.SubmitRequest) error {
	if req.TimeTaken < 0 {
		return fmt.Errorf("%w: timeTaken must not be negative", domain.ErrValidation)
	}
	seen := make(map[int64]struct{}, len(req.Answers))
	for _, a := range req.Answers {
		if _, dup := seen[a.QuestionID]; dup {
			return fmt.Errorf("%w: question %d answered more than once", domain.ErrValidation, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"scholarship-test-service/internal/domain"
)

// RecordStore keeps questions, users, results and answers in memory with
// auto-incrementing ids. It satisfies the app and auth repository interfaces.
type RecordStore struct {
	mu        sync.RWMutex
	questions map[int64]domain.Question
	users     map[int64]domain.User
	results   map[int64]domain.TestResult
	answers   map[int64]domain.UserAnswer

	nextQuestionID int64
	nextUserID     int64
	nextResultID   int64
	nextAnswerID   int64
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		questions:      make(map[int64]domain.Question),
		users:          make(map[int64]domain.User),
		results:        make(map[int64]domain.TestResult),
		answers:        make(map[int64]domain.UserAnswer),
		nextQuestionID: 1,
		nextUserID:     1,
		nextResultID:   1,
		nextAnswerID:   1,
	}
}

// NewRecordStoreWithQuestions seeds the bank; question ids are reassigned in order.
func NewRecordStoreWithQuestions(questions []domain.Question) *RecordStore {
	s := NewRecordStore()
	for _, q := range questions {
		_, _ = s.CreateQuestion(context.Background(), q)
	}
	return s
}

func (s *RecordStore) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.nextQuestionID
	s.nextQuestionID++
	s.questions[q.ID] = q
	return q, nil
}

func (s *RecordStore) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadQuestions lets the store back a cached QuestionBank.
func (s *RecordStore) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.ListQuestions(ctx)
}

func (s *RecordStore) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *RecordStore) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *RecordStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *RecordStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.User{}, domain.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = user
	return user, nil
}

// DeleteUser removes an account; its results stay behind.
func (s *RecordStore) DeleteUser(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *RecordStore) SaveAttempt(_ context.Context, result domain.TestResult, answers []domain.UserAnswer) (domain.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.ID = s.nextResultID
	s.nextResultID++
	s.results[result.ID] = result
	for _, a := range answers {
		a.ID = s.nextAnswerID
		s.nextAnswerID++
		a.ResultID = result.ID
		s.answers[a.ID] = a
	}
	return result, nil
}

func (s *RecordStore) ListTestResults(_ context.Context) ([]domain.TestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TestResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RecordStore) ListTestResultsByUser(ctx context.Context, userID int64) ([]domain.TestResult, error) {
	all, _ := s.ListTestResults(ctx)
	out := all[:0]
	for _, r := range all {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListUserAnswers returns every answer row written for a user, in insertion order.
func (s *RecordStore) ListUserAnswers(_ context.Context, userID int64) ([]domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserAnswer, 0)
	for _, a := range s.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

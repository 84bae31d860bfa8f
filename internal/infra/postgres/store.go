package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"scholarship-test-service/internal/domain"
)

// Store implements the question, user and result repositories on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const questionColumns = `id, text, option_a, option_b, option_c, option_d, correct_option`

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// LoadQuestions lets the store back a cached question bank.
func (s *Store) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.ListQuestions(ctx)
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (text, option_a, option_b, option_c, option_d, correct_option)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption,
	).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

const userColumns = `id, username, email, password, is_admin`

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.getUserWhere(ctx, `id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.getUserWhere(ctx, `lower(username) = lower($1)`, username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getUserWhere(ctx, `lower(email) = lower($1)`, email)
}

func (s *Store) getUserWhere(ctx context.Context, cond string, arg any) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, is_admin) VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.IsAdmin,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_email_lower_idx" {
				return domain.User{}, domain.ErrEmailTaken
			}
			return domain.User{}, domain.ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// SaveAttempt writes the result and its answers in one transaction.
func (s *Store) SaveAttempt(ctx context.Context, result domain.TestResult, answers []domain.UserAnswer) (domain.TestResult, error) {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO test_results (user_id, score, total_questions, time_taken, completed_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			result.UserID, result.Score, result.TotalQuestions, result.TimeTaken, result.CompletedAt,
		).Scan(&result.ID)
		if err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, a := range answers {
			batch.Queue(
				`INSERT INTO user_answers (result_id, user_id, question_id, selected_option, is_correct)
				 VALUES ($1, $2, $3, $4, $5)`,
				result.ID, a.UserID, a.QuestionID, a.SelectedOption, a.IsCorrect,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range answers {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert answer: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return domain.TestResult{}, err
	}
	return result, nil
}

const resultColumns = `id, user_id, score, total_questions, time_taken, completed_at`

func (s *Store) ListTestResults(ctx context.Context) ([]domain.TestResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+` FROM test_results ORDER BY id`)
}

func (s *Store) ListTestResultsByUser(ctx context.Context, userID int64) ([]domain.TestResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+` FROM test_results WHERE user_id = $1 ORDER BY id`, userID)
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]domain.TestResult, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []domain.TestResult
	for rows.Next() {
		var r domain.TestResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.Score, &r.TotalQuestions, &r.TimeTaken, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListUserAnswers(ctx context.Context, userID int64) ([]domain.UserAnswer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, result_id, user_id, question_id, selected_option, is_correct
		 FROM user_answers WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []domain.UserAnswer
	for rows.Next() {
		var a domain.UserAnswer
		if err := rows.Scan(&a.ID, &a.ResultID, &a.UserID, &a.QuestionID, &a.SelectedOption, &a.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

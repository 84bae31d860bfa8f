package domain

import "time"

// Option labels accepted for every question, in display order.
var Options = []string{"A", "B", "C", "D"}

// ValidOption reports whether label is one of A, B, C or D.
func ValidOption(label string) bool {
	for _, o := range Options {
		if o == label {
			return true
		}
	}
	return false
}

// Question models an MCQ question with four labeled options. It is immutable once created.
type Question struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption"`
}

// SanitizedQuestion is the only question form sent to a test taker.
type SanitizedQuestion struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`
}

// Sanitize strips the correct option.
func (q Question) Sanitize() SanitizedQuestion {
	return SanitizedQuestion{
		ID:      q.ID,
		Text:    q.Text,
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
	}
}

// OptionText returns the text behind an option label, or "" for an unknown label.
func (q SanitizedQuestion) OptionText(label string) string {
	switch label {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// User is an account known to the identity provider.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
}

// PublicUser is the profile exposed on the leaderboard.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserAnswer is one scored answer of a submitted attempt. Written once, never updated.
type UserAnswer struct {
	ID             int64  `json:"id"`
	ResultID       int64  `json:"resultId"`
	UserID         int64  `json:"userId"`
	QuestionID     int64  `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

// TestResult is one completed attempt. Immutable after creation.
type TestResult struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeTaken      int       `json:"timeTaken"` // seconds, client reported
	CompletedAt    time.Time `json:"completedAt"`
}

func (r TestResult) Percentage() int {
	return Percentage(r.Score, r.TotalQuestions)
}

// LeaderboardEntry is a TestResult joined with its owner's public profile.
type LeaderboardEntry struct {
	ID             int64      `json:"id"`
	User           PublicUser `json:"user"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Percentage     int        `json:"percentage"`
	TimeTaken      int        `json:"timeTaken"`
	CompletedAt    time.Time  `json:"completedAt"`
}

// UserResult is a caller's own attempt as listed in their history.
type UserResult struct {
	ID             int64     `json:"id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	TimeTaken      int       `json:"timeTaken"`
	CompletedAt    time.Time `json:"completedAt"`
}

// AnswerSubmission is one (question, option) pair of a submission.
type AnswerSubmission struct {
	QuestionID     int64  `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// SubmitRequest carries a full answer set and the elapsed time in seconds.
type SubmitRequest struct {
	Answers   []AnswerSubmission `json:"answers"`
	TimeTaken int                `json:"timeTaken"`
}

// SubmitResponse is the authoritative score of an attempt.
type SubmitResponse struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
	TimeTaken      int `json:"timeTaken"`
}

// Leaderboard is a timestamped snapshot pushed to live subscribers.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

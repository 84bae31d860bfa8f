package http

import (
	"encoding/json"
	"net/http"

	"scholarship-test-service/internal/auth"
	"scholarship-test-service/internal/domain"
	"scholarship-test-service/internal/report"
)

// submitBody uses pointers so absent fields can be told apart from zero values.
type submitBody struct {
	Answers *[]struct {
		QuestionID     *int64  `json:"questionId"`
		SelectedOption *string `json:"selectedOption"`
	} `json:"answers"`
	TimeTaken *int `json:"timeTaken"`
}

func (b submitBody) toRequest() (domain.SubmitRequest, bool) {
	if b.Answers == nil || b.TimeTaken == nil {
		return domain.SubmitRequest{}, false
	}
	req := domain.SubmitRequest{
		Answers:   make([]domain.AnswerSubmission, 0, len(*b.Answers)),
		TimeTaken: *b.TimeTaken,
	}
	for _, a := range *b.Answers {
		if a.QuestionID == nil || a.SelectedOption == nil {
			return domain.SubmitRequest{}, false
		}
		req.Answers = append(req.Answers, domain.AnswerSubmission{
			QuestionID:     *a.QuestionID,
			SelectedOption: *a.SelectedOption,
		})
	}
	return req, true
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.scoring.Questions(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated, "")
		return
	}

	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrValidation, "")
		return
	}
	req, ok := body.toRequest()
	if !ok {
		writeError(w, domain.ErrValidation, "")
		return
	}

	resp, err := h.scoring.SubmitTest(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, "Failed to submit test")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoring.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch leaderboard data")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) UserResults(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated, "")
		return
	}
	results, err := h.scoring.ResultsForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "Failed to fetch user test results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) ExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoring.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch leaderboard data")
		return
	}
	data, err := report.LeaderboardWorkbook(entries)
	if err != nil {
		writeError(w, err, "Failed to export leaderboard")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

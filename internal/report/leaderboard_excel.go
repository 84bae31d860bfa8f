package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"scholarship-test-service/internal/domain"
)

var leaderboardHeaders = []string{"rank", "username", "email", "score", "total_questions", "percentage", "time_taken_seconds", "completed_at"}

// LeaderboardWorkbook renders ranked entries as a single-sheet xlsx file.
func LeaderboardWorkbook(entries []domain.LeaderboardEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, h := range leaderboardHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, e := range entries {
		row := i + 2
		values := []any{
			i + 1,
			e.User.Username,
			e.User.Email,
			e.Score,
			e.TotalQuestions,
			e.Percentage,
			e.TimeTaken,
			e.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "H", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"scholarship-test-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Text          string `bun:"text,notnull"`
	OptionA       string `bun:"option_a,notnull"`
	OptionB       string `bun:"option_b,notnull"`
	OptionC       string `bun:"option_c,notnull"`
	OptionD       string `bun:"option_d,notnull"`
	CorrectOption string `bun:"correct_option,notnull"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			count, err := db.NewSelect().Model((*questionRow)(nil)).Count(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				return nil
			}

			sample := domain.SampleQuestions()
			rows := make([]questionRow, 0, len(sample))
			for _, q := range sample {
				rows = append(rows, questionRow{
					Text:          q.Text,
					OptionA:       q.OptionA,
					OptionB:       q.OptionB,
					OptionC:       q.OptionC,
					OptionD:       q.OptionD,
					CorrectOption: q.CorrectOption,
				})
			}
			_, err = db.NewInsert().Model(&rows).Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDelete().Model((*questionRow)(nil)).Where("1 = 1").Exec(ctx)
			return err
		},
	)
}

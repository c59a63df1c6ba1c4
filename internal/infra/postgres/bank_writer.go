package postgres

import (
	"context"
	"fmt"
	"time"

	"timed-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

type questionBankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	ID        string              `bun:"id,pk"`
	Title     string              `bun:"title"`
	Data      domain.QuestionBank `bun:"data,type:jsonb"`
	UpdatedAt time.Time           `bun:"updated_at"`
}

// BankSummary is a listing row for stored banks.
type BankSummary struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// BankWriter upserts question banks through bun.
type BankWriter struct {
	db *bun.DB
}

func NewBankWriter(db *bun.DB) *BankWriter {
	return &BankWriter{db: db}
}

// Upsert validates and stores a bank, replacing any bank with the same ID.
func (w *BankWriter) Upsert(ctx context.Context, bank domain.QuestionBank) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	row := questionBankRow{
		ID:        bank.ID,
		Title:     bank.Title,
		Data:      bank,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := w.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert bank %q: %w", bank.ID, err)
	}
	return nil
}

// List returns the stored banks ordered by ID.
func (w *BankWriter) List(ctx context.Context) ([]BankSummary, error) {
	var rows []questionBankRow
	if err := w.db.NewSelect().Model(&rows).Column("id", "title", "updated_at").Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	out := make([]BankSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, BankSummary{ID: r.ID, Title: r.Title, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"linguaclip/internal/domain"
)

//go:generate mockgen -source=store.go -destination=mock/mock_history.go

const table = "translations"

// QueryI is the subset of *sqlx.DB the store needs.
type QueryI interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Store persists successful translations. It implements ports.HistoryStore.
type Store struct {
	db QueryI
	sq sq.StatementBuilderType
}

func NewStore(db QueryI) *Store {
	return &Store{db: db, sq: sq.StatementBuilder}
}

func (s *Store) Append(ctx context.Context, record domain.HistoryRecord) error {
	if strings.TrimSpace(record.SourceText) == "" || strings.TrimSpace(record.TranslatedText) == "" {
		return errors.New("history record requires source and translated text")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	query, args, err := s.sq.Insert(table).
		Columns("source_text", "translated_text", "source_lang", "target_lang", "created_at").
		Values(record.SourceText, record.TranslatedText, record.SourceLang, record.TargetLang, record.Timestamp.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := s.sq.
		Select("id", "source_text", "translated_text", "source_lang", "target_lang", "created_at").
		From(table).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history select: %w", err)
	}

	var records []domain.HistoryRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args, err := s.sq.Select("COUNT(1)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build history count: %w", err)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

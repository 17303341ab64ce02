package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaclip/internal/domain"
	mock_history "linguaclip/internal/history/mock"
)

func newStoreMock(t *testing.T, ctrl *gomock.Controller, setupMock func(*mock_history.MockQueryI)) *Store {
	t.Helper()
	db := mock_history.NewMockQueryI(ctrl)
	if setupMock != nil {
		setupMock(db)
	}
	return NewStore(db)
}

func TestStore_Append(t *testing.T) {
	t.Parallel()

	record := domain.HistoryRecord{
		SourceText:     "Hello",
		TranslatedText: "Hola",
		SourceLang:     "en",
		TargetLang:     "es",
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		name    string
		record  domain.HistoryRecord
		f       func(*mock_history.MockQueryI)
		wantErr bool
	}{
		{
			name:   "success",
			record: record,
			f: func(mqi *mock_history.MockQueryI) {
				mqi.EXPECT().
					ExecContext(gomock.Any(), "INSERT INTO translations (source_text,translated_text,source_lang,target_lang,created_at) VALUES (?,?,?,?,?)", gomock.Any()).
					Return(nil, nil)
			},
		},
		{
			name:   "failed exec",
			record: record,
			f: func(mqi *mock_history.MockQueryI) {
				mqi.EXPECT().ExecContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("exec error"))
			},
			wantErr: true,
		},
		{
			name:    "empty translation",
			record:  domain.HistoryRecord{SourceText: "Hello"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := newStoreMock(t, ctrl, tt.f)
			err := store.Append(context.Background(), tt.record)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStore_Recent(t *testing.T) {
	t.Parallel()

	want := []domain.HistoryRecord{{ID: 2, SourceText: "Bye", TranslatedText: "Adiós"}}

	tests := []struct {
		name    string
		limit   int
		f       func(*mock_history.MockQueryI)
		want    []domain.HistoryRecord
		wantErr bool
	}{
		{
			name:  "success",
			limit: 5,
			f: func(mqi *mock_history.MockQueryI) {
				mqi.EXPECT().
					SelectContext(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
						assert.Contains(t, query, "ORDER BY id DESC LIMIT 5")
						*dest.(*[]domain.HistoryRecord) = want
						return nil
					})
			},
			want: want,
		},
		{
			name:  "default limit",
			limit: 0,
			f: func(mqi *mock_history.MockQueryI) {
				mqi.EXPECT().
					SelectContext(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ interface{}, query string, _ ...interface{}) error {
						assert.Contains(t, query, "LIMIT 50")
						return nil
					})
			},
		},
		{
			name:  "failed select",
			limit: 5,
			f: func(mqi *mock_history.MockQueryI) {
				mqi.EXPECT().SelectContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("select error"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := newStoreMock(t, ctrl, tt.f)
			got, err := store.Recent(context.Background(), tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreWithSQLite(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()
	db, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, domain.HistoryRecord{
		SourceText: "Hello", TranslatedText: "Hola", SourceLang: "en", TargetLang: "es", Timestamp: first,
	}))
	require.NoError(t, store.Append(ctx, domain.HistoryRecord{
		SourceText: "Bonjour le monde", TranslatedText: "Hello world", SourceLang: "fr", TargetLang: "en", Timestamp: first.Add(time.Minute),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bonjour le monde", records[0].SourceText)
	assert.Equal(t, "Hola", records[1].TranslatedText)
	assert.True(t, first.Equal(records[1].Timestamp))

	// Re-opening must not re-apply migrations.
	db2, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer db2.Close()
	n, err = NewStore(db2).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var version int
	require.NoError(t, db2.GetContext(ctx, &version, "PRAGMA user_version"))
	assert.Equal(t, 1, version)
}

package googletts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguaclip/internal/domain"
)

func TestSplitText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, splitText("   ", 100))
	assert.Equal(t, []string{"Hola mundo"}, splitText("  Hola \n mundo ", 100))

	long := strings.Repeat("palabra ", 40) + "fin. " + strings.Repeat("otra ", 10)
	chunks := splitText(long, 100)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
		assert.NotEmpty(t, chunk)
	}
	assert.Equal(t, strings.Join(strings.Fields(long), " "), strings.Join(chunks, " "))

	assert.Equal(t, []string{"Uno, dos.", "Tres"}, splitText("Uno, dos. Tres", 12))
	assert.Equal(t, []string{"abcde", "fghij"}, splitText("abcdefghij", 5))
}

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		assert.Equal(t, "es", r.URL.Query().Get("tl"))
		mu.Lock()
		seen = append(seen, r.URL.Query().Get("idx"))
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-" + r.URL.Query().Get("idx") + ";"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := New(Config{BaseURL: srv.URL, Dir: dir})

	text := strings.Repeat("hola ", 30)
	artifact, err := s.Synthesize(context.Background(), text, "es-ES")
	require.NoError(t, err)
	assert.Equal(t, "es", artifact.Language)
	assert.Equal(t, dir, filepath.Dir(artifact.Path))
	assert.Equal(t, []string{"0", "1"}, seen)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "mp3-0;mp3-1;", string(data))

	require.NoError(t, s.Release(artifact))
	_, err = os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.Release(artifact))
}

func TestSynthesizeFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := New(Config{BaseURL: srv.URL, Dir: dir})

	_, err := s.Synthesize(context.Background(), "Hola", "es")
	require.Error(t, err)

	_, err = s.Synthesize(context.Background(), "  ", "es")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSynthesizeAutoLanguageFallsBackToNative(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, domain.NativeLanguage, r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL, Dir: t.TempDir()})
	artifact, err := s.Synthesize(context.Background(), "Hello", domain.AutoLanguage)
	require.NoError(t, err)
	require.NoError(t, s.Release(artifact))
}

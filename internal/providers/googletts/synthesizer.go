package googletts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"linguaclip/internal/domain"
)

const (
	defaultBaseURL = "https://translate.google.com"
	maxChunkRunes  = 100
)

// Config controls the translate_tts client.
type Config struct {
	BaseURL string
	TLD     string
	Dir     string
	Timeout time.Duration
}

// Synthesizer implements ports.Synthesizer. Each call writes one MP3 file
// that stays on disk until Release.
type Synthesizer struct {
	cfg  Config
	http *resty.Client
}

func New(cfg Config) *Synthesizer {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
		if tld := strings.TrimSpace(cfg.TLD); tld != "" {
			cfg.BaseURL = "https://translate.google." + tld
		}
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Referer", strings.TrimRight(cfg.BaseURL, "/")+"/")
	return &Synthesizer{cfg: cfg, http: c}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, language string) (domain.AudioArtifact, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return domain.AudioArtifact{}, errors.New("googletts: nothing to speak")
	}
	language = domain.NormalizeLanguage(language)
	if language == "" || language == domain.AutoLanguage {
		language = domain.NativeLanguage
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		r, err := s.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      language,
				"q":       chunk,
				"total":   strconv.Itoa(len(chunks)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(utf8.RuneCountInString(chunk)),
			}).
			Get("/translate_tts")
		if err != nil {
			return domain.AudioArtifact{}, fmt.Errorf("googletts request failed: %w", err)
		}
		if r.IsError() {
			return domain.AudioArtifact{}, fmt.Errorf("googletts: chunk %d: %s", i, r.Status())
		}
		if len(r.Body()) == 0 {
			return domain.AudioArtifact{}, fmt.Errorf("googletts: chunk %d returned no audio", i)
		}
		audio.Write(r.Body())
	}

	path := filepath.Join(s.cfg.Dir, "linguaclip-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, audio.Bytes(), 0o600); err != nil {
		return domain.AudioArtifact{}, fmt.Errorf("failed to write speech file: %w", err)
	}
	return domain.AudioArtifact{Path: path, Language: language}, nil
}

// Release deletes the artifact's file. A file that is already gone is not an error.
func (s *Synthesizer) Release(artifact domain.AudioArtifact) error {
	if artifact.Path == "" {
		return nil
	}
	if err := os.Remove(artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove speech file: %w", err)
	}
	return nil
}

// splitText breaks text into chunks of at most limit runes, preferring
// sentence punctuation and then whitespace as cut points.
func splitText(text string, limit int) []string {
	text = strings.Join(strings.Fields(text), " ")
	var chunks []string
	for text != "" {
		runes := []rune(text)
		if len(runes) <= limit {
			chunks = append(chunks, text)
			break
		}
		cut := cutPoint(runes[:limit])
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(string(runes[cut:]))
	}
	return chunks
}

func cutPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		switch window[i] {
		case '.', '!', '?', ';', ':', ',', '。', '！', '？', '、':
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return len(window)
}

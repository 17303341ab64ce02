package whatlang

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detector implements ports.Detector with offline trigram detection.
type Detector struct {
	minConfidence float64
}

func New(minConfidence float64) *Detector {
	return &Detector{minConfidence: minConfidence}
}

func (d *Detector) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("whatlang: empty text")
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", errors.New("whatlang: language not recognised")
	}
	if info.Confidence < d.minConfidence {
		return "", fmt.Errorf("whatlang: %s detected with low confidence %.2f", code, info.Confidence)
	}
	return code, nil
}

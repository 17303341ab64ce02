package mymemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"linguaclip/internal/domain"
)

const defaultBaseURL = "https://api.mymemory.translated.net"

// Config controls the MyMemory translation client.
type Config struct {
	BaseURL string
	Email   string
	Timeout time.Duration
}

// Client implements ports.Translator against the MyMemory REST API.
type Client struct {
	cfg  Config
	http *resty.Client
}

func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{cfg: cfg, http: c}
}

type response struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  status `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
	QuotaFinished   bool   `json:"quotaFinished"`
}

// status accepts both the numeric and the quoted form the API returns.
type status int

func (s *status) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = status(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("mymemory: unexpected responseStatus %s", string(data))
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("mymemory: unexpected responseStatus %q", str)
	}
	*s = status(n)
	return nil
}

func (c *Client) Translate(ctx context.Context, text string, source string, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("mymemory: empty text")
	}

	params := map[string]string{
		"q":        text,
		"langpair": langPair(source, target),
	}
	if email := strings.TrimSpace(c.cfg.Email); email != "" {
		params["de"] = email
	}

	var resp response
	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&resp).
		Get("/get")
	if err != nil {
		return "", fmt.Errorf("mymemory request failed: %w", err)
	}
	if r.IsError() {
		return "", fmt.Errorf("mymemory translate: %s; body: %s", r.Status(), abbreviate(r.String(), 200))
	}
	if resp.QuotaFinished {
		return "", errors.New("mymemory: daily quota exhausted")
	}
	if int(resp.ResponseStatus) != http.StatusOK {
		return "", fmt.Errorf("mymemory translate: status %d: %s", resp.ResponseStatus, resp.ResponseDetails)
	}

	translated := strings.TrimSpace(html.UnescapeString(resp.ResponseData.TranslatedText))
	if translated == "" {
		return "", errors.New("mymemory: no translation returned")
	}
	return translated, nil
}

func langPair(source string, target string) string {
	if source == "" || source == domain.AutoLanguage {
		source = "Autodetect"
	}
	return source + "|" + target
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

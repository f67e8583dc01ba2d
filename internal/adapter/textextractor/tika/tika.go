// Package tika provides Apache Tika integration for text extraction.
//
// Documents are streamed to a Tika server with PUT /tika and the plain
// text answer is sanitized and whitespace-collapsed. See
// https://tika.apache.org/server/ for the API.
package tika

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/domain"
	"github.com/punithkumar/resume-analyzer/pkg/textx"
)

// DefaultURL is used when no base URL is configured.
const DefaultURL = "http://localhost:9998"

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxElapsed time.Duration
}

// New constructs a Tika client. Zero durations fall back to 15s per call
// and 20s across retries.
func New(baseURL string, timeout, maxElapsed time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxElapsed <= 0 {
		maxElapsed = 20 * time.Second
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: observability.NewHTTPClient("tika.extract", timeout),
		maxElapsed: maxElapsed,
	}
}

// Extract uploads data to the Tika server and returns plain text. Transport
// errors and 5xx answers are retried; 4xx answers are not.
func (c *Client) Extract(ctx context.Context, fileName, mimeType string, data []byte) (string, error) {
	ct := domain.BaseMIME(mimeType)
	if ct == "" {
		ct = contentTypeFromExt(filepath.Ext(fileName))
	}

	var result string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "text/plain")
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("tika status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Warn("tika non-2xx", slog.Int("status", resp.StatusCode), slog.String("file", fileName))
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		result = textx.CollapseWhitespace(string(b))
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 200 * time.Millisecond
	expo.MaxInterval = 2 * time.Second
	expo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return "", fmt.Errorf("op=tika.Extract: %w: %w", domain.ErrExtraction, err)
	}
	return result, nil
}

// Ping reports whether the Tika server answers GET /version.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("op=tika.Ping: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("op=tika.Ping: %w", errors.New(resp.Status))
	}
	return nil
}

func contentTypeFromExt(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return domain.MIMEPDF
	case ".doc":
		return domain.MIMEDOC
	case ".docx":
		return domain.MIMEDOCX
	case ".txt":
		return domain.MIMEPlainText
	default:
		if ext != "" {
			return mime.TypeByExtension(ext)
		}
	}
	return ""
}

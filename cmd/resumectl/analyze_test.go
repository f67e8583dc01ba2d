package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punithkumar/resume-analyzer/internal/client"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func analysisServer(t *testing.T, hits *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req domain.AnalyzeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAnalyze_JSONOutput(t *testing.T) {
	var hits atomic.Int32
	srv := analysisServer(t, &hits, 200, `{"analysis":{"score":91,"summary":"great","strengths":["x"],"improvements":["y"],"recommendations":["z"]}}`)
	path := writeFile(t, "cv.txt", "Jane Doe")

	var out, errOut bytes.Buffer
	err := runAnalyze(context.Background(), &out, &errOut, path, analyzeOptions{
		Endpoint: srv.URL, Output: "json", Timeout: time.Second, NoColor: true,
	})
	require.NoError(t, err)

	var got domain.Analysis
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.InDelta(t, 91.0, got.Score, 0)
	assert.Contains(t, errOut.String(), "Analysis complete!")
	assert.Contains(t, errOut.String(), "Your resume scored 91/100")
	assert.Equal(t, int32(1), hits.Load())
}

func TestRunAnalyze_RejectedFileMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := analysisServer(t, &hits, 200, `{}`)
	path := writeFile(t, "cv.png", "\x89PNG\r\n\x1a\n0000")

	var errOut bytes.Buffer
	err := runAnalyze(context.Background(), io.Discard, &errOut, path, analyzeOptions{
		Endpoint: srv.URL, Output: "human", NoColor: true,
	})
	require.ErrorIs(t, err, client.ErrUnsupportedType)
	assert.Contains(t, errOut.String(), "Invalid file type")
	assert.Zero(t, hits.Load())
}

func TestRunAnalyze_BackendError(t *testing.T) {
	var hits atomic.Int32
	srv := analysisServer(t, &hits, 402, `{"error":"Payment required. Please add credits to your workspace."}`)
	path := writeFile(t, "cv.txt", "Jane Doe")

	var errOut bytes.Buffer
	err := runAnalyze(context.Background(), io.Discard, &errOut, path, analyzeOptions{
		Endpoint: srv.URL, Output: "human", NoColor: true,
	})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.PaymentRequired())
	assert.Contains(t, errOut.String(), "Analysis failed")
	assert.Contains(t, errOut.String(), "Payment required. Please add credits to your workspace.")
}

func TestRunAnalyze_BadOptions(t *testing.T) {
	path := writeFile(t, "cv.txt", "x")
	err := runAnalyze(context.Background(), io.Discard, io.Discard, path, analyzeOptions{Endpoint: "http://x", Output: "xml"})
	require.Error(t, err)
	err = runAnalyze(context.Background(), io.Discard, io.Discard, path, analyzeOptions{Endpoint: "http://x", Output: "json", Extractor: "ocr"})
	require.Error(t, err)
	err = runAnalyze(context.Background(), io.Discard, io.Discard, path, analyzeOptions{Output: "json"})
	require.Error(t, err)
}

func TestRootCmd_EnvBinding(t *testing.T) {
	var hits atomic.Int32
	srv := analysisServer(t, &hits, 200, `{"analysis":{"score":50,"summary":"","strengths":[],"improvements":[],"recommendations":[]}}`)
	path := writeFile(t, "cv.txt", "Jane Doe")
	t.Setenv("RESUMECTL_ENDPOINT", srv.URL)
	t.Setenv("RESUMECTL_OUTPUT", "yaml")
	t.Setenv("RESUMECTL_NO_COLOR", "true")
	t.Cleanup(func() { color.NoColor = true })

	var out bytes.Buffer
	root := newRootCmd(viper.New())
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"analyze", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "score: 50")
	assert.Equal(t, int32(1), hits.Load())
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(viper.New())
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "resumectl version dev\n", out.String())
}

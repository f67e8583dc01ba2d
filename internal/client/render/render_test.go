package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

func sample() domain.Analysis {
	return domain.Analysis{
		Score:           72.5,
		Summary:         "Solid backend profile.",
		Strengths:       []string{"Go", "Kubernetes", "Postgres"},
		Improvements:    []string{"Quantify impact", "Trim older roles"},
		Recommendations: []string{"Add metrics", "Lead with summary"},
	}
}

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestHuman_OrderAndScore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, sample(), FormatHuman))
	out := buf.String()

	assert.Contains(t, out, "72.5 out of 100")
	order := []string{
		"Overall Assessment", "Solid backend profile.",
		"Strengths", "Go", "Kubernetes", "Postgres",
		"Areas for Improvement", "Quantify impact", "Trim older roles",
		"Recommendations", "Add metrics", "Lead with summary",
	}
	pos := 0
	for _, s := range order {
		i := strings.Index(out[pos:], s)
		require.GreaterOrEqualf(t, i, 0, "%q missing or out of order", s)
		pos += i + len(s)
	}
}

func TestHuman_EmptyLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, domain.Analysis{Score: 10}, ""))
	assert.Equal(t, 3, strings.Count(buf.String(), "(none)"))
}

func TestJSONAndYAML(t *testing.T) {
	var jb bytes.Buffer
	require.NoError(t, Analysis(&jb, sample(), FormatJSON))
	var got domain.Analysis
	require.NoError(t, json.Unmarshal(jb.Bytes(), &got))
	assert.Equal(t, sample(), got)

	var yb bytes.Buffer
	require.NoError(t, Analysis(&yb, domain.Analysis{Score: 90}, FormatYAML))
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &m))
	assert.Equal(t, 90, m["score"])
	assert.Equal(t, []any{}, m["strengths"])
}

func TestUnknownFormat(t *testing.T) {
	err := Analysis(&bytes.Buffer{}, sample(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestScoreColor(t *testing.T) {
	cases := []struct {
		score float64
		want  color.Attribute
	}{
		{100, color.FgGreen}, {80, color.FgGreen},
		{79.9, color.FgYellow}, {60, color.FgYellow},
		{59, color.FgRed}, {0, color.FgRed},
	}
	for _, c := range cases {
		assert.True(t, scoreColor(c.score).Equals(color.New(c.want, color.Bold)), "score %v", c.score)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]", ProgressBar(50, 10))
	assert.Equal(t, "[░░░░░░░░░░]", ProgressBar(-5, 10))
	assert.Equal(t, "[██████████]", ProgressBar(150, 10))
	assert.Equal(t, "", ProgressBar(50, 0))
}

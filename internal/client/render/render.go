// Package render prints an analysis for humans or machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// Output formats.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatHuman, FormatJSON, FormatYAML}

const barWidth = 40

// Analysis writes a in the given format. Unknown formats are an error.
func Analysis(w io.Writer, a domain.Analysis, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return displayJSON(w, a)
	case FormatYAML:
		return displayYAML(w, a)
	case FormatHuman, "":
		displayHuman(w, a)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func displayJSON(w io.Writer, a domain.Analysis) error {
	out, err := json.MarshalIndent(nonNil(a), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func displayYAML(w io.Writer, a domain.Analysis) error {
	out, err := yaml.Marshal(nonNil(a))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(out))
	return err
}

func displayHuman(w io.Writer, a domain.Analysis) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)

	fmt.Fprintln(w)
	scoreColor(a.Score).Fprintf(w, "%s", strconv.FormatFloat(a.Score, 'f', -1, 64))
	fmt.Fprintln(w, " out of 100")
	fmt.Fprintln(w, ProgressBar(a.Score, barWidth))
	fmt.Fprintln(w)

	cyan.Fprintln(w, "Overall Assessment")
	fmt.Fprintf(w, "   %s\n\n", a.Summary)

	list(w, green, "Strengths", "✓", a.Strengths)
	list(w, yellow, "Areas for Improvement", "!", a.Improvements)
	list(w, blue, "Recommendations", "→", a.Recommendations)
}

func list(w io.Writer, heading *color.Color, title, bullet string, items []string) {
	heading.Fprintln(w, title)
	if len(items) == 0 {
		fmt.Fprintln(w, "   (none)")
	}
	for _, item := range items {
		fmt.Fprintf(w, "   %s %s\n", bullet, item)
	}
	fmt.Fprintln(w)
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 60:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// ProgressBar draws score (0..100) as a fixed-width bar.
func ProgressBar(score float64, width int) string {
	if width <= 0 {
		return ""
	}
	s := math.Max(0, math.Min(100, score))
	filled := int(math.Round(s / 100 * float64(width)))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func nonNil(a domain.Analysis) domain.Analysis {
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Improvements == nil {
		a.Improvements = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	return a
}

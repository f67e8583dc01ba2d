package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/punithkumar/resume-analyzer/internal/adapter/textextractor/tika"
	"github.com/punithkumar/resume-analyzer/internal/client"
	"github.com/punithkumar/resume-analyzer/internal/client/render"
	"github.com/punithkumar/resume-analyzer/internal/config"
)

const envPrefix = "RESUMECTL"

type analyzeOptions struct {
	Endpoint  string
	APIKey    string
	Output    string
	Extractor string
	TikaURL   string
	Timeout   time.Duration
	NoColor   bool
}

func newAnalyzeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze a resume file",
		Long: `Analyze a resume with AI and print the result.

Examples:
  # Analyze against a local server
  resumectl analyze cv.pdf -e http://localhost:8080/functions/v1/analyze-resume

  # Machine-readable output
  resumectl analyze cv.txt -o json

  # Parse the document with Apache Tika before sending it
  resumectl analyze cv.docx --extractor tika --tika-url http://localhost:9998

Flags can also be set with RESUMECTL_ENDPOINT, RESUMECTL_API_KEY,
RESUMECTL_OUTPUT, RESUMECTL_EXTRACTOR, RESUMECTL_TIKA_URL and RESUMECTL_TIMEOUT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analyzeOptions{
				Endpoint:  v.GetString("endpoint"),
				APIKey:    v.GetString("api-key"),
				Output:    v.GetString("output"),
				Extractor: v.GetString("extractor"),
				TikaURL:   v.GetString("tika-url"),
				Timeout:   v.GetDuration("timeout"),
				NoColor:   v.GetBool("no-color"),
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringP("endpoint", "e", "http://localhost:8080/functions/v1/analyze-resume", "Analysis function URL")
	f.StringP("api-key", "k", "", "Key sent as Authorization bearer and apikey header")
	f.StringP("output", "o", render.FormatHuman, "Output format (human, json, yaml)")
	f.String("extractor", config.ExtractorRaw, "Text extraction (raw, tika)")
	f.String("tika-url", tika.DefaultURL, "Apache Tika server URL, used with --extractor tika")
	f.Duration("timeout", 90*time.Second, "Request timeout")
	f.Bool("no-color", false, "Disable colored output")

	for _, name := range []string{"endpoint", "api-key", "output", "extractor", "tika-url", "timeout", "no-color"} {
		_ = v.BindPFlag(name, f.Lookup(name))
		_ = v.BindEnv(name, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
	}
	return cmd
}

func runAnalyze(ctx context.Context, stdout, stderr io.Writer, path string, opts analyzeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.NoColor {
		color.NoColor = true
	}
	if !validFormat(opts.Output) {
		return fmt.Errorf("unknown output format %q (want one of %s)", opts.Output, strings.Join(render.Formats, ", "))
	}
	if strings.TrimSpace(opts.Endpoint) == "" {
		return errors.New("endpoint is required (--endpoint or RESUMECTL_ENDPOINT)")
	}

	sessionOpts := []client.Option{client.WithNotifier(stderrNotifier(stderr))}
	switch opts.Extractor {
	case config.ExtractorRaw, "":
	case config.ExtractorTika:
		sessionOpts = append(sessionOpts, client.WithExtractor(tika.New(opts.TikaURL, 0, 0)))
	default:
		return fmt.Errorf("unknown extractor %q (want raw or tika)", opts.Extractor)
	}

	backend := client.NewHTTPBackend(opts.Endpoint, opts.APIKey, opts.Timeout)
	session := client.NewSession(backend, sessionOpts...)

	doc, err := client.LoadFile(path)
	if err != nil {
		return err
	}
	if err := session.Select(doc); err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(stderr))
	s.Suffix = " Analyzing " + doc.Name + "..."
	s.Start()
	analysis, err := session.Analyze(ctx)
	s.Stop()
	if err != nil {
		return err
	}
	return render.Analysis(stdout, analysis, opts.Output)
}

func validFormat(f string) bool {
	for _, ok := range render.Formats {
		if strings.EqualFold(f, ok) {
			return true
		}
	}
	return false
}

func stderrNotifier(w io.Writer) client.Notifier {
	if w == nil {
		w = os.Stderr
	}
	return client.NotifierFunc(func(n client.Notification) {
		c := color.New(color.FgGreen)
		mark := "✓"
		if n.Destructive {
			c = color.New(color.FgRed)
			mark = "✗"
		}
		c.Fprintf(w, "%s %s\n", mark, n.Title)
		if n.Description != "" {
			fmt.Fprintf(w, "  %s\n", n.Description)
		}
	})
}

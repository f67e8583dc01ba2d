package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/punithkumar/resume-analyzer/internal/config"
	"github.com/punithkumar/resume-analyzer/internal/domain"
	"github.com/punithkumar/resume-analyzer/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Analyze    usecase.AnalyzeService
	RedisCheck func(ctx context.Context) error
	TikaCheck  func(ctx context.Context) error
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, analyze usecase.AnalyzeService, redisCheck, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Analyze: analyze, RedisCheck: redisCheck, TikaCheck: tikaCheck}
}

// AnalyzeHandler accepts {"resumeText": "..."} and answers {"analysis": {...}}
// or {"error": "..."}.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Analyze.Configured(); err != nil {
			writeError(w, r, err)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.MaxBodyBytes())
		var req domain.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeError(w, r, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrPayloadTooLarge, mbe.Limit))
				return
			}
			writeError(w, r, domain.Invalid(MsgInvalidRequest))
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, domain.Invalid("resumeText is required"))
			return
		}
		a, err := s.Analyze.Analyze(r.Context(), req.ResumeText)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.AnalyzeResponse{Analysis: &a})
	}
}

// UploadHandler accepts a multipart document in field "file", extracts its
// text with the configured extractor and analyzes it.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Analyze.Configured(); err != nil {
			writeError(w, r, err)
			return
		}
		maxBytes := s.Cfg.MaxUploadBytes()
		// multipart framing needs headroom above the file cap
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge) {
				writeError(w, r, fmt.Errorf("%w: %v", domain.ErrPayloadTooLarge, err))
				return
			}
			writeError(w, r, domain.Invalid("multipart form with a file field is required"))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, domain.Invalid("file is required"))
			return
		}
		defer func() { _ = file.Close() }()
		if header.Size > maxBytes {
			writeError(w, r, fmt.Errorf("%w: %d bytes", domain.ErrPayloadTooLarge, header.Size))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read upload: %v", domain.ErrInvalidArgument, err))
			return
		}
		if int64(len(data)) > maxBytes {
			writeError(w, r, fmt.Errorf("%w: %d bytes", domain.ErrPayloadTooLarge, len(data)))
			return
		}

		mimeType := detectMIME(header.Header.Get("Content-Type"), data)
		LoggerFrom(r).Info("document received",
			"filename", header.Filename, "mime", mimeType, "size", len(data))

		a, err := s.Analyze.AnalyzeDocument(r.Context(), header.Filename, mimeType, data)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.AnalyzeResponse{Analysis: &a})
	}
}

// detectMIME trusts the declared part type unless it is missing or generic,
// in which case the content is sniffed.
func detectMIME(declared string, data []byte) string {
	base := domain.BaseMIME(declared)
	if base != "" && base != "application/octet-stream" {
		return base
	}
	sniffed := mimetype.Detect(data)
	// text/plain; charset=utf-8 and friends
	for m := sniffed; m != nil; m = m.Parent() {
		if domain.IsAllowedDocumentMIME(m.String()) {
			return domain.BaseMIME(m.String())
		}
	}
	return domain.BaseMIME(sniffed.String())
}

// RateLimitedHandler answers requests rejected by the rate limiter.
func (s *Server) RateLimitedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, domain.ErrRateLimited)
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler checks upstream configuration, Redis and Tika.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		runCheck := func(name string, fn func(context.Context) error) check {
			if err := fn(ctx); err != nil {
				return check{Name: name, OK: false, Details: err.Error()}
			}
			return check{Name: name, OK: true}
		}

		checks := []check{runCheck("ai_gateway", func(context.Context) error { return s.Analyze.Configured() })}
		if s.RedisCheck != nil {
			checks = append(checks, runCheck("redis", s.RedisCheck))
		}
		if s.TikaCheck != nil {
			checks = append(checks, runCheck("tika", s.TikaCheck))
		}

		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

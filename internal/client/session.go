// Package client implements the upload and display side of resume
// analysis: document selection rules, text extraction, a single in-flight
// request to the analysis function and user notifications.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/punithkumar/resume-analyzer/internal/adapter/textextractor/raw"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// Selection and submission errors.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrNoDocument      = errors.New("no document selected")
	ErrBusy            = errors.New("analysis already in progress")
	ErrEmptyText       = errors.New("document contains no text")
)

// EmptyTextMessage is shown when the selected document yields no text.
const EmptyTextMessage = "The selected file contains no text."

// FallbackMessage is shown when a failure carries no message of its own.
const FallbackMessage = "Failed to analyze resume. Please try again."

// Session holds one user's selected document and latest analysis.
type Session struct {
	backend   Backend
	extractor domain.TextExtractor
	notifier  Notifier

	mu       sync.Mutex
	doc      *Document
	analysis *domain.Analysis

	busy atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithExtractor replaces the raw byte reinterpretation.
func WithExtractor(e domain.TextExtractor) Option {
	return func(s *Session) { s.extractor = e }
}

// WithNotifier sets where notifications go.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// NewSession returns a session that submits through backend.
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{backend: backend, extractor: raw.New(), notifier: discardNotifier{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select validates doc and makes it the current selection, clearing any
// previous analysis. A rejected document leaves the session unchanged.
func (s *Session) Select(doc Document) error {
	if !domain.IsAllowedDocumentMIME(doc.MIME) {
		s.notifier.Notify(invalidTypeNotification())
		return fmt.Errorf("%w: %q", ErrUnsupportedType, doc.MIME)
	}
	if doc.Size > domain.MaxDocumentBytes {
		s.notifier.Notify(tooLargeNotification())
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, doc.Size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &doc
	s.analysis = nil
	return nil
}

// Document returns the current selection.
func (s *Session) Document() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Document{}, false
	}
	return *s.doc, true
}

// Analysis returns the latest successful analysis.
func (s *Session) Analysis() (domain.Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analysis == nil {
		return domain.Analysis{}, false
	}
	return *s.analysis, true
}

// Busy reports whether a request is outstanding.
func (s *Session) Busy() bool { return s.busy.Load() }

// ExtractText turns doc into the text sent for analysis.
func (s *Session) ExtractText(ctx context.Context, doc Document) (string, error) {
	return s.extractor.Extract(ctx, doc.Name, doc.MIME, doc.Data)
}

// Analyze submits the selected document. While a request is outstanding
// further calls return ErrBusy without touching the network. A document
// that yields no text fails with ErrEmptyText before any request is made.
func (s *Session) Analyze(ctx context.Context) (domain.Analysis, error) {
	doc, ok := s.Document()
	if !ok {
		return domain.Analysis{}, ErrNoDocument
	}
	if !s.busy.CompareAndSwap(false, true) {
		return domain.Analysis{}, ErrBusy
	}
	defer s.busy.Store(false)

	text, err := s.ExtractText(ctx, doc)
	if err == nil && text == "" {
		err = fmt.Errorf("%w: %s", ErrEmptyText, doc.Name)
	}
	if err != nil {
		s.notifier.Notify(failedNotification(ErrorMessage(err)))
		return domain.Analysis{}, err
	}
	a, err := s.backend.Analyze(ctx, text)
	if err != nil {
		s.notifier.Notify(failedNotification(ErrorMessage(err)))
		return domain.Analysis{}, err
	}

	s.mu.Lock()
	s.analysis = &a
	s.mu.Unlock()
	s.notifier.Notify(completeNotification(a.Score))
	return a, nil
}

// ErrorMessage is the text shown to the user for a failed analysis.
func ErrorMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrNoAnalysis):
		return ErrNoAnalysis.Error()
	case errors.Is(err, ErrEmptyText):
		return EmptyTextMessage
	default:
		return FallbackMessage
	}
}

// Package raw reinterprets uploaded bytes as text without parsing the
// document format.
//
// Plain text survives intact. PDF and Word files come out as whatever their
// bytes decode to, which is usually noisy; use the tika extractor when the
// content matters.
package raw

import (
	"context"

	"github.com/punithkumar/resume-analyzer/internal/domain"
	"github.com/punithkumar/resume-analyzer/pkg/textx"
)

// Unextractable is returned in place of an empty result for non-text files.
const Unextractable = "Unable to extract text from file"

// Extractor implements domain.TextExtractor.
type Extractor struct{}

// New returns a raw extractor.
func New() Extractor { return Extractor{} }

// Extract never fails. text/plain content is returned verbatim apart from
// a leading BOM and invalid UTF-8; any other type is decoded the same way
// and an empty result becomes Unextractable.
func (Extractor) Extract(_ context.Context, _ string, mimeType string, data []byte) (string, error) {
	text := textx.DecodeLossy(data)
	if domain.BaseMIME(mimeType) == domain.MIMEPlainText {
		return text, nil
	}
	if text == "" {
		return Unextractable, nil
	}
	return text, nil
}

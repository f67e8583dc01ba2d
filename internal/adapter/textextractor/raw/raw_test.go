package raw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		mime string
		data []byte
		want string
	}{
		{"plain text verbatim", domain.MIMEPlainText, []byte("  Jane Doe\n\tGo  "), "  Jane Doe\n\tGo  "},
		{"plain text with charset", "text/plain; charset=utf-8", []byte("héllo"), "héllo"},
		{"empty plain text stays empty", domain.MIMEPlainText, nil, ""},
		{"pdf bytes reinterpreted", domain.MIMEPDF, []byte("%PDF-1.4 Jane"), "%PDF-1.4 Jane"},
		{"invalid utf8 replaced", domain.MIMEDOCX, []byte{'P', 'K', 0xff, 0xfe, 'x'}, "PK��x"},
		{"plain text bom dropped", domain.MIMEPlainText, []byte("\xEF\xBB\xBFJane Doe"), "Jane Doe"},
		{"bom-only binary", domain.MIMEPDF, []byte("\xEF\xBB\xBF"), Unextractable},
		{"empty binary", domain.MIMEDOC, []byte{}, Unextractable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), "f", tt.mime, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

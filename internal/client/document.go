package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// Document is a file picked for analysis.
type Document struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// NewDocument builds a Document from in-memory content.
func NewDocument(name, mimeType string, data []byte) Document {
	return Document{Name: name, MIME: mimeType, Size: int64(len(data)), Data: data}
}

// LoadFile reads path into a Document. Files above domain.MaxDocumentBytes
// are not read; only their size is recorded so Select can reject them.
func LoadFile(path string) (Document, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("op=client.LoadFile: %w", err)
	}
	if fi.IsDir() {
		return Document{}, fmt.Errorf("op=client.LoadFile: %s is a directory", path)
	}
	doc := Document{Name: filepath.Base(path), Size: fi.Size()}
	if fi.Size() > domain.MaxDocumentBytes {
		doc.MIME = DetectMIME(doc.Name, nil)
		return doc, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user on the command line
	if err != nil {
		return Document{}, fmt.Errorf("op=client.LoadFile: %w", err)
	}
	doc.Data = data
	doc.Size = int64(len(data))
	doc.MIME = DetectMIME(doc.Name, data)
	return doc, nil
}

var extMIME = map[string]string{
	".pdf":  domain.MIMEPDF,
	".doc":  domain.MIMEDOC,
	".docx": domain.MIMEDOCX,
	".txt":  domain.MIMEPlainText,
}

// DetectMIME returns the document type implied by the file extension, the
// way a browser file picker reports it, and sniffs the content otherwise.
func DetectMIME(name string, data []byte) string {
	if m, ok := extMIME[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	if len(data) == 0 {
		return ""
	}
	return domain.BaseMIME(mimetype.Detect(data).String())
}

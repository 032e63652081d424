// Package report handles uploaded medical documents. Text extraction is
// simulated: no file content is ever read.
package report

import (
	"context"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"pdf":  {},
}

type Extraction struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
	Summary       string `json:"summary"`
}

// Extractor turns an uploaded document into text plus a short summary.
type Extractor interface {
	Extract(ctx context.Context, filename string) (Extraction, error)
}

// IsAllowed reports whether filename carries one of the accepted extensions.
func IsAllowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}

	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// MockExtractor returns the same canned record for every document.
type MockExtractor struct{}

func NewMockExtractor() *MockExtractor { return &MockExtractor{} }

func (MockExtractor) Extract(_ context.Context, filename string) (Extraction, error) {
	return Extraction{
		Filename:      filename,
		ExtractedText: "Patient Name: John Doe\nTest: Full Blood Count\nResult: Haemoglobin 13.5 g/dL (Normal)",
		Summary:       "Everything looks normal. Keep up the good work!",
	}, nil
}

// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// MockResumeScorer is a mock implementation of domain.ResumeScorer.
type MockResumeScorer struct {
	mock.Mock
}

// Score provides a mock function with given fields: ctx, resumeText
func (m *MockResumeScorer) Score(ctx domain.Context, resumeText string) (domain.Analysis, error) {
	ret := m.Called(ctx, resumeText)

	var r0 domain.Analysis
	if rf, ok := ret.Get(0).(func(domain.Context, string) domain.Analysis); ok {
		r0 = rf(ctx, resumeText)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.Analysis)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(domain.Context, string) error); ok {
		r1 = rf(ctx, resumeText)
	} else {
		r1 = ret.Error(1)
	}
	return r0, r1
}

// MockTextExtractor is a mock implementation of domain.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

// Extract provides a mock function with given fields: ctx, fileName, mimeType, data
func (m *MockTextExtractor) Extract(ctx domain.Context, fileName, mimeType string, data []byte) (string, error) {
	ret := m.Called(ctx, fileName, mimeType, data)
	return ret.String(0), ret.Error(1)
}

var (
	_ domain.ResumeScorer  = (*MockResumeScorer)(nil)
	_ domain.TextExtractor = (*MockTextExtractor)(nil)
)

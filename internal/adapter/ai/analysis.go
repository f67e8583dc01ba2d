// Package ai holds the provider-neutral parts of resume scoring: the fixed
// prompt, the analyze_resume tool contract, and decoding of tool arguments.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// ToolName is the function the model is forced to call.
const ToolName = "analyze_resume"

// ToolDescription describes ToolName to the model.
const ToolDescription = "Analyze a resume and provide structured feedback"

// Score bounds enforced by the tool schema and re-checked after decoding.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// RequiredFields are the tool argument keys; no others are allowed.
var RequiredFields = []string{"score", "summary", "strengths", "improvements", "recommendations"}

// SystemPrompt instructs the model on what to produce.
const SystemPrompt = `You are an expert resume analyzer. Analyze resumes and provide:
1. An overall score (0-100)
2. Detailed feedback on strengths
3. Areas for improvement
4. Specific recommendations

Format your response as JSON with this structure:
{
  "score": number (0-100),
  "summary": "brief overall assessment",
  "strengths": ["strength1", "strength2", ...],
  "improvements": ["improvement1", "improvement2", ...],
  "recommendations": ["recommendation1", "recommendation2", ...]
}`

// UserPrompt wraps the extracted resume text.
func UserPrompt(resumeText string) string {
	return "Analyze this resume:\n\n" + resumeText
}

// ParametersSchema returns the JSON schema of the tool arguments.
func ParametersSchema() map[string]any {
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":           map[string]any{"type": "number", "minimum": ScoreMin, "maximum": ScoreMax},
			"summary":         map[string]any{"type": "string"},
			"strengths":       stringList,
			"improvements":    stringList,
			"recommendations": stringList,
		},
		"required":             RequiredFields,
		"additionalProperties": false,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// ValidateAnalysis checks the score range and list presence invariants.
func ValidateAnalysis(a domain.Analysis) error {
	if err := getValidator().Struct(a); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	return nil
}

// DecodeArguments parses the JSON arguments of an analyze_resume call.
// Missing or null keys, unknown keys, trailing data and invariant
// violations are rejected.
func DecodeArguments(raw string) (domain.Analysis, error) {
	var a domain.Analysis
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: decode arguments: %v", domain.ErrSchemaInvalid, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return domain.Analysis{}, fmt.Errorf("%w: trailing data after arguments", domain.ErrSchemaInvalid)
	}
	var present map[string]any
	if err := json.Unmarshal([]byte(raw), &present); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: decode arguments: %v", domain.ErrSchemaInvalid, err)
	}
	if err := CheckPresent(present); err != nil {
		return domain.Analysis{}, err
	}
	if err := ValidateAnalysis(a); err != nil {
		return domain.Analysis{}, err
	}
	return a, nil
}

// CheckPresent rejects arguments where a required key is absent or null.
// Decoding alone would turn a missing score into 0.
func CheckPresent(args map[string]any) error {
	for _, k := range RequiredFields {
		if v, ok := args[k]; !ok || v == nil {
			return fmt.Errorf("%w: missing argument %q", domain.ErrSchemaInvalid, k)
		}
	}
	return nil
}

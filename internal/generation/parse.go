package generation

import (
	"encoding/json"

	"github.com/jonathan/cv-pipeline/internal/llm"
	"github.com/jonathan/cv-pipeline/internal/schemas"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// ParseResult decodes a raw backend response into a GeneratedResult. The
// response is stripped of markdown fences and surrounding prose, checked
// against the generated-result schema, and only then decoded. Any failure is
// an AssemblyParseError carrying the raw output.
func ParseResult(raw string) (*types.GeneratedResult, error) {
	cleaned := llm.ExtractJSONObject(raw)

	if err := schemas.ValidateGeneratedResult(cleaned); err != nil {
		return nil, &AssemblyParseError{RawOutput: raw, Cause: err}
	}

	var result types.GeneratedResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &AssemblyParseError{RawOutput: raw, Cause: err}
	}
	return &result, nil
}

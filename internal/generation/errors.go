package generation

import (
	"fmt"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// ChunkError represents a failure processing a single chunk. The caller can
// retry just that chunk; the others are unaffected.
type ChunkError struct {
	ChunkIndex int
	ChunkType  types.ChunkType
	Cause      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%s) failed: %v", e.ChunkIndex, e.ChunkType, e.Cause)
}

func (e *ChunkError) Unwrap() error {
	return e.Cause
}

// AssemblyParseError indicates the final assembly response did not parse as a
// generated result. RawOutput carries the backend text for diagnostics.
type AssemblyParseError struct {
	RawOutput string
	Cause     error
}

func (e *AssemblyParseError) Error() string {
	return fmt.Sprintf("assembly response did not parse as a generated result: %v", e.Cause)
}

func (e *AssemblyParseError) Unwrap() error {
	return e.Cause
}

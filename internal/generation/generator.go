// Package generation invokes the backend once per chunk and once for final
// assembly, turning chunk slices and chunk results into a unified generated
// result.
package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-pipeline/internal/llm"
	"github.com/jonathan/cv-pipeline/internal/prompts"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// Generator runs chunk processing and assembly calls against a generation
// backend.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// ProcessChunk issues one bounded backend call for a single chunk using the
// chunk-type-specific instruction template. Failures come back as a
// ChunkError so the caller can retry just this chunk.
func (g *Generator) ProcessChunk(ctx context.Context, chunk types.Chunk, targetContext string) (*types.ChunkResult, error) {
	rolesJSON, err := json.Marshal(chunk.Roles)
	if err != nil {
		return nil, &ChunkError{ChunkIndex: chunk.Index, ChunkType: chunk.Type, Cause: err}
	}

	prompt, err := prompts.GetFormatted("chunking.json", string(chunk.Type), map[string]string{
		"GroundingRules": prompts.MustGet("common.json", "grounding_rules"),
		"JobDescription": targetContext,
		"Roles":          string(rolesJSON),
	})
	if err != nil {
		return nil, &ChunkError{ChunkIndex: chunk.Index, ChunkType: chunk.Type, Cause: err}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &ChunkError{ChunkIndex: chunk.Index, ChunkType: chunk.Type, Cause: err}
	}

	var result types.ChunkResult
	if err := json.Unmarshal([]byte(llm.ExtractJSONObject(raw)), &result); err != nil {
		return nil, &ChunkError{ChunkIndex: chunk.Index, ChunkType: chunk.Type,
			Cause: fmt.Errorf("response did not parse as a chunk result: %w", err)}
	}
	if result.ChunkType == "" {
		result.ChunkType = chunk.Type
	}

	g.logger.Debug("chunk processed",
		zap.Int("chunk_index", chunk.Index),
		zap.String("chunk_type", string(chunk.Type)),
		zap.Int("roles", len(result.RawExperience)))
	return &result, nil
}

// ProcessChunks runs ProcessChunk for every chunk concurrently and returns
// the results in chunk order. The first failure cancels the remaining calls.
func (g *Generator) ProcessChunks(ctx context.Context, chunks []types.Chunk, targetContext string) ([]types.ChunkResult, error) {
	results := make([]types.ChunkResult, len(chunks))

	eg, ctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		chunk := chunk
		eg.Go(func() error {
			result, err := g.ProcessChunk(ctx, chunk, targetContext)
			if err != nil {
				return err
			}
			results[chunk.Index] = *result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Assemble issues the final backend call that merges all chunk results plus
// whole-profile context into one unified result.
func (g *Generator) Assemble(ctx context.Context, results []types.ChunkResult, profile *types.Profile, targetContext string) (*types.GeneratedResult, error) {
	chunksJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize chunk results: %w", err)
	}

	candidateJSON, err := json.Marshal(candidateDetails(profile))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize candidate details: %w", err)
	}

	prompt, err := prompts.GetFormatted("assembly.json", "assemble", map[string]string{
		"GroundingRules": prompts.MustGet("common.json", "grounding_rules"),
		"JobDescription": targetContext,
		"Chunks":         string(chunksJSON),
		"Candidate":      string(candidateJSON),
	})
	if err != nil {
		return nil, err
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("assembly call failed: %w", err)
	}

	return ParseResult(raw)
}

// GenerateSingleShot issues one backend call grounded on an uploaded profile
// context and returns the complete generated result.
func (g *Generator) GenerateSingleShot(ctx context.Context, contextRef, targetContext string) (*types.GeneratedResult, error) {
	prompt, err := prompts.GetFormatted("assembly.json", "single_shot_context", map[string]string{
		"GroundingRules": prompts.MustGet("common.json", "grounding_rules"),
		"JobDescription": targetContext,
	})
	if err != nil {
		return nil, err
	}

	raw, err := g.client.GenerateJSONWithContext(ctx, contextRef, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("single-shot generation failed: %w", err)
	}

	return ParseResult(raw)
}

// GenerateInline issues one backend call with the profile embedded in the
// prompt, for profiles small enough to skip both chunking and upload.
func (g *Generator) GenerateInline(ctx context.Context, profile *types.Profile, targetContext string) (*types.GeneratedResult, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize profile: %w", err)
	}

	prompt, err := prompts.GetFormatted("assembly.json", "single_shot", map[string]string{
		"GroundingRules": prompts.MustGet("common.json", "grounding_rules"),
		"JobDescription": targetContext,
		"Profile":        string(profileJSON),
	})
	if err != nil {
		return nil, err
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("inline generation failed: %w", err)
	}

	return ParseResult(raw)
}

// candidateDetails is the non-role portion of the profile passed to assembly
// so the final document carries education, certifications, and skills
// without re-sending every role bullet.
type candidateDetailsPayload struct {
	Name           string                `json:"name,omitempty"`
	Email          string                `json:"email,omitempty"`
	Phone          string                `json:"phone,omitempty"`
	Location       string                `json:"location,omitempty"`
	Summary        string                `json:"summary,omitempty"`
	Education      []types.Education     `json:"education,omitempty"`
	Certifications []types.Certification `json:"certifications,omitempty"`
	Skills         []string              `json:"skills,omitempty"`
}

func candidateDetails(profile *types.Profile) candidateDetailsPayload {
	return candidateDetailsPayload{
		Name:           profile.Name,
		Email:          profile.Email,
		Phone:          profile.Phone,
		Location:       profile.Location,
		Summary:        profile.Summary,
		Education:      profile.Education,
		Certifications: profile.Certifications,
		Skills:         profile.Skills,
	}
}

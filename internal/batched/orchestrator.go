// Package batched implements iterative role retrieval: instead of uploading
// or pre-splitting the whole profile, the generation backend requests bounded
// batches of role data on demand through a tool call, then produces the final
// result once everything has been fetched. This bounds the size of any single
// request regardless of profile size, at the cost of round trips.
package batched

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/generation"
	"github.com/jonathan/cv-pipeline/internal/llm"
	"github.com/jonathan/cv-pipeline/internal/prompts"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// ToolGetRoleBatch is the retrieval capability exposed to the backend.
const ToolGetRoleBatch = "get_role_batch"

// ProfileSource resolves a session ID to its stored profile. Satisfied by
// the session manager.
type ProfileSource interface {
	Profile(ctx context.Context, sessionID string) (*types.Profile, error)
}

// Orchestrator runs the batched-retrieval exchange loop.
type Orchestrator struct {
	client        llm.Client
	profiles      ProfileSource
	batchSize     int
	maxIterations int
	logger        *zap.Logger
}

// NewOrchestrator creates an Orchestrator. batchSize bounds how many roles a
// single retrieval answer carries; maxIterations caps the exchange loop.
func NewOrchestrator(client llm.Client, profiles ProfileSource, batchSize, maxIterations int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 5
	}
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Orchestrator{
		client:        client,
		profiles:      profiles,
		batchSize:     batchSize,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Generate runs the exchange loop for a session until the backend returns a
// final answer or the iteration cap is hit.
//
// The first iteration forces a retrieval call; the backend is not trusted to
// initiate fetching on its own. While batches remain unfetched the system
// instruction stays minimal (fetch-only), and once every expected batch has
// been observed it is swapped for the full generation instruction. This keeps
// the instructions sent on fetch-only rounds small.
func (o *Orchestrator) Generate(ctx context.Context, sessionID, targetContext string) (*types.GeneratedResult, error) {
	profile, err := o.profiles.Profile(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	roles := profile.WorkExperience
	totalRoles := len(roles)
	m := newMachine(totalRoles, o.batchSize)

	kickoff, err := o.kickoffMessage(profile, targetContext, totalRoles)
	if err != nil {
		return nil, err
	}

	systemMinimal := prompts.MustGet("batched.json", "system_minimal")
	systemFull := prompts.Format(prompts.MustGet("batched.json", "system_full"), map[string]string{
		"GroundingRules": prompts.MustGet("common.json", "grounding_rules"),
	})

	tools := []llm.ToolDeclaration{{
		Name:        ToolGetRoleBatch,
		Description: fmt.Sprintf("Returns up to %d of the candidate's roles starting at start_index, plus batch_size and total_roles.", o.batchSize),
		Params: []llm.ToolParam{{
			Name:        "start_index",
			Description: "Zero-based index of the first role to return",
			Required:    true,
		}},
	}}

	turns := []llm.Turn{{Role: llm.RoleUser, Text: kickoff}}

	for i := 0; i < o.maxIterations; i++ {
		req := llm.TurnRequest{
			System: systemMinimal,
			Turns:  turns,
			Tools:  tools,
		}
		if m.allFetched() {
			req.System = systemFull
		}
		if m.forceFetch() {
			req.ForceTool = ToolGetRoleBatch
		}

		result, err := o.client.GenerateTurn(ctx, req, llm.TierAdvanced)
		if err != nil {
			return nil, err
		}

		if result.Call == nil {
			m.observeAnswer()
			o.logger.Info("batched generation complete",
				zap.String("session_id", sessionID),
				zap.Int("iterations", i+1),
				zap.Int("batches_fetched", m.batchesFetched()))
			return generation.ParseResult(result.Text)
		}

		if result.Call.Name != ToolGetRoleBatch {
			return nil, fmt.Errorf("backend requested unknown tool %q", result.Call.Name)
		}

		startIndex := intArg(result.Call.Args, "start_index")
		response, err := o.roleBatch(roles, startIndex)
		if err != nil {
			return nil, err
		}
		m.observeFetch(startIndex)

		if m.allFetched() {
			response["instruction"] = prompts.MustGet("batched.json", "all_batches_fetched")
		} else {
			response["instruction"] = prompts.MustGet("batched.json", "more_batches")
		}

		o.logger.Debug("served role batch",
			zap.String("session_id", sessionID),
			zap.Int("start_index", startIndex),
			zap.Int("batches_fetched", m.batchesFetched()),
			zap.Int("expected_batches", m.expectedBatches))

		turns = append(turns,
			llm.Turn{Role: llm.RoleModel, Call: result.Call},
			llm.Turn{Role: llm.RoleFunction, Result: &llm.ToolResult{Name: ToolGetRoleBatch, Response: response}},
		)
	}

	m.fail()
	return nil, &IterationLimitError{Iterations: o.maxIterations, BatchesFetched: m.batchesFetched()}
}

func (o *Orchestrator) kickoffMessage(profile *types.Profile, targetContext string, totalRoles int) (string, error) {
	candidate := struct {
		Name           string                `json:"name,omitempty"`
		Summary        string                `json:"summary,omitempty"`
		Education      []types.Education     `json:"education,omitempty"`
		Certifications []types.Certification `json:"certifications,omitempty"`
		Skills         []string              `json:"skills,omitempty"`
	}{
		Name:           profile.Name,
		Summary:        profile.Summary,
		Education:      profile.Education,
		Certifications: profile.Certifications,
		Skills:         profile.Skills,
	}
	candidateJSON, err := json.Marshal(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to serialize candidate details: %w", err)
	}

	return prompts.GetFormatted("batched.json", "kickoff", map[string]string{
		"RoleCount":      fmt.Sprintf("%d", totalRoles),
		"Candidate":      string(candidateJSON),
		"JobDescription": targetContext,
	})
}

// roleBatch answers one retrieval request with up to batchSize roles plus
// batch metadata, in plain JSON-compatible values.
func (o *Orchestrator) roleBatch(roles []types.Role, startIndex int) (map[string]any, error) {
	if startIndex < 0 {
		startIndex = 0
	}
	end := startIndex + o.batchSize
	if startIndex > len(roles) {
		startIndex = len(roles)
	}
	if end > len(roles) {
		end = len(roles)
	}

	batchJSON, err := json.Marshal(roles[startIndex:end])
	if err != nil {
		return nil, fmt.Errorf("failed to serialize role batch: %w", err)
	}
	var batch []any
	if err := json.Unmarshal(batchJSON, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode role batch: %w", err)
	}
	if batch == nil {
		batch = []any{}
	}

	return map[string]any{
		"roles":       batch,
		"start_index": startIndex,
		"batch_size":  o.batchSize,
		"total_roles": len(roles),
	}, nil
}

// intArg reads an integer tool argument; backends deliver numbers as
// float64.
func intArg(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

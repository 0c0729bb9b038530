// Package chunking analyzes profile payloads and splits the role list into
// contiguous chunks for independent processing. Analysis and strategy
// selection are pure computations; no backend calls happen here.
package chunking

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// Strategy names carried on ChunkPlan
const (
	StrategySingleChunk = "single_chunk"
	StrategyDualChunk   = "dual_chunk"
	StrategyTripleChunk = "triple_chunk"
	StrategyMultiChunk  = "multi_chunk"
)

// Analyze computes the payload characteristics that drive strategy selection:
// serialized size, role count, and career span in years.
func Analyze(profile *types.Profile) (types.PayloadAnalysis, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return types.PayloadAnalysis{}, fmt.Errorf("failed to serialize profile: %w", err)
	}

	return types.PayloadAnalysis{
		SizeKB:      int(math.Round(float64(len(data)) / 1024)),
		RoleCount:   profile.RoleCount(),
		CareerYears: careerSpan(profile.WorkExperience),
	}, nil
}

// careerSpan returns the span between the earliest and latest parseable year
// across all role date fields, or 0 when no year can be parsed.
func careerSpan(roles []types.Role) int {
	earliest, latest := 0, 0
	record := func(s string) {
		year, ok := types.ParseYear(s)
		if !ok {
			return
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
		if year > latest {
			latest = year
		}
	}
	for _, role := range roles {
		record(role.StartDate)
		if !types.IsPresent(role.EndDate) {
			record(role.EndDate)
		}
	}
	if earliest == 0 {
		return 0
	}
	return latest - earliest
}

// SelectStrategy maps a payload analysis to a deterministic chunk plan using
// fixed thresholds from configuration.
func SelectStrategy(analysis types.PayloadAnalysis, cfg *config.Config) types.ChunkPlan {
	count, strategy := 1, StrategySingleChunk
	switch {
	case analysis.RoleCount <= cfg.SingleChunkMaxRoles && analysis.SizeKB < cfg.SingleChunkMaxKB:
		count, strategy = 1, StrategySingleChunk
	case analysis.RoleCount <= cfg.DualChunkMaxRoles:
		count, strategy = 2, StrategyDualChunk
	case analysis.RoleCount <= cfg.TripleChunkMaxRoles:
		count, strategy = 3, StrategyTripleChunk
	default:
		count, strategy = 4, StrategyMultiChunk
	}

	// A plan never has more chunks than roles
	if analysis.RoleCount > 0 && count > analysis.RoleCount {
		count = analysis.RoleCount
	}

	return types.ChunkPlan{
		ChunkCount: count,
		Strategy:   strategy,
		RoleRanges: roleRanges(analysis.RoleCount, count),
	}
}

// roleRanges splits n roles into count contiguous equal slices. The last
// slice absorbs the remainder so order and coverage are preserved exactly.
func roleRanges(n, count int) []types.RoleRange {
	if count < 1 {
		count = 1
	}
	ranges := make([]types.RoleRange, count)
	size := n / count
	if size < 1 {
		size = 1
	}
	for i := 0; i < count; i++ {
		start := i * size
		end := start + size
		if start > n {
			start = n
		}
		if i == count-1 || end > n {
			end = n
		}
		ranges[i] = types.RoleRange{Start: start, End: end}
	}
	return ranges
}

// CreateChunks materializes the plan against the profile's role list. Slice 0
// is tagged recent_roles, the last slice (for plans with more than two
// chunks) timeline_roles, and everything in between supporting_roles.
func CreateChunks(profile *types.Profile, plan types.ChunkPlan) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(plan.RoleRanges))
	for i, rr := range plan.RoleRanges {
		chunks = append(chunks, types.Chunk{
			Index: i,
			Type:  chunkTypeFor(i, plan.ChunkCount),
			Roles: profile.WorkExperience[rr.Start:rr.End],
		})
	}
	return chunks
}

func chunkTypeFor(index, count int) types.ChunkType {
	switch {
	case index == 0:
		return types.ChunkRecentRoles
	case count > 2 && index == count-1:
		return types.ChunkTimelineRoles
	default:
		return types.ChunkSupportingRoles
	}
}

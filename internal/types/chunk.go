package types

// ChunkType tags a chunk with the prompting/emphasis policy the chunk
// processor should apply. Recency is decided once, at planning time, so the
// processor never re-derives it from dates.
type ChunkType string

// Chunk type constants
const (
	ChunkRecentRoles     ChunkType = "recent_roles"
	ChunkSupportingRoles ChunkType = "supporting_roles"
	ChunkTimelineRoles   ChunkType = "timeline_roles"
)

// RoleRange is a half-open [Start, End) slice of a profile's role list
type RoleRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkPlan is the deterministic partitioning plan derived from a payload analysis
type ChunkPlan struct {
	ChunkCount int         `json:"chunk_count"`
	Strategy   string      `json:"strategy"`
	RoleRanges []RoleRange `json:"role_ranges"`
}

// PayloadAnalysis holds the size/shape statistics of a profile that drive
// strategy selection
type PayloadAnalysis struct {
	SizeKB      int `json:"size_kb"`
	RoleCount   int `json:"role_count"`
	CareerYears int `json:"career_years"`
}

// Chunk is one contiguous, order-preserving slice of a profile's role list,
// tagged for chunk-type-specific prompting
type Chunk struct {
	Index int       `json:"index"`
	Type  ChunkType `json:"type"`
	Roles []Role    `json:"roles"`
}

// ChunkResult is the raw content produced by processing one chunk
type ChunkResult struct {
	ChunkType       ChunkType `json:"chunk_type"`
	RawExperience   []CVRole  `json:"raw_experience,omitempty"`
	RawAchievements []string  `json:"raw_achievements,omitempty"`
	RawSkills       []string  `json:"raw_skills,omitempty"`
}

package llm

import (
	"context"
)

// Client is an abstraction over generation backends. It covers stateless
// generation, shared-context upload, and tool-call turns, kept narrow so the
// backend implementation stays swappable.
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSONWithContext generates JSON content grounded on a previously
	// uploaded shared-context resource
	GenerateJSONWithContext(ctx context.Context, contextRef, prompt string, tier ModelTier) (string, error)
	// GenerateTurn runs one turn of a tool-call exchange: the backend either
	// answers with text or requests a named tool invocation
	GenerateTurn(ctx context.Context, req TurnRequest, tier ModelTier) (*TurnResult, error)
	// UploadContext uploads bytes to the backend's shared-context facility and
	// returns an opaque resource reference
	UploadContext(ctx context.Context, name string, data []byte) (string, error)
	// DeleteContext releases an uploaded shared-context resource
	DeleteContext(ctx context.Context, ref string) error
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Turn roles in a tool-call exchange
const (
	RoleUser     = "user"
	RoleModel    = "model"
	RoleFunction = "function"
)

// ToolCall is a backend request to invoke a named tool with arguments
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult is the orchestrator's answer to a tool call
type ToolResult struct {
	Name     string
	Response map[string]any
}

// Turn is one entry in a tool-call exchange log
type Turn struct {
	Role   string
	Text   string
	Call   *ToolCall
	Result *ToolResult
}

// ToolParam describes one parameter of a tool declaration
type ToolParam struct {
	Name        string
	Description string
	Required    bool
}

// ToolDeclaration describes a tool the backend may request. All parameters
// are integers; that is the only shape the pipeline's retrieval tools need.
type ToolDeclaration struct {
	Name        string
	Description string
	Params      []ToolParam
}

// TurnRequest carries the full exchange state for one tool-call round.
// The last turn must be a user or function turn; everything before it is
// replayed as history.
type TurnRequest struct {
	System    string
	Turns     []Turn
	Tools     []ToolDeclaration
	ForceTool string // When set, the backend must call this tool on this turn
}

// TurnResult is the backend's response to one turn: either final text or a
// tool call, never both.
type TurnResult struct {
	Text string
	Call *ToolCall
}

// NewClient creates a new generation backend client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, false)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.wrapCallError("generate_content", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, true)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.wrapCallError("generate_json", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// GenerateJSONWithContext generates JSON content grounded on a previously
// uploaded shared-context resource. The reference must be one returned from
// UploadContext; an unknown reference fails the call.
func (c *GeminiClient) GenerateJSONWithContext(ctx context.Context, contextRef, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, true)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	file, err := c.client.GetFile(ctx, contextRef)
	if err != nil {
		return "", c.wrapCallError("resolve_context", err)
	}

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: "application/json", URI: file.URI},
		genai.Text(prompt),
	)
	if err != nil {
		return "", c.wrapCallError("generate_json_with_context", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// GenerateTurn runs one turn of a tool-call exchange. All turns before the
// last are replayed as chat history; the last turn is sent as the message.
func (c *GeminiClient) GenerateTurn(ctx context.Context, req TurnRequest, tier ModelTier) (*TurnResult, error) {
	if len(req.Turns) == 0 {
		return nil, fmt.Errorf("turn request has no turns")
	}

	model, err := c.model(tier, false)
	if err != nil {
		return nil, err
	}

	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toolDeclarations(req.Tools)}}
	}
	if req.ForceTool != "" {
		model.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingAny,
				AllowedFunctionNames: []string{req.ForceTool},
			},
		}
	}

	cs := model.StartChat()
	for _, turn := range req.Turns[:len(req.Turns)-1] {
		cs.History = append(cs.History, turnContent(turn))
	}
	last := req.Turns[len(req.Turns)-1]

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	resp, err := cs.SendMessage(ctx, turnContent(last).Parts...)
	if err != nil {
		return nil, c.wrapCallError("generate_turn", err)
	}

	return extractTurnResult(resp)
}

// UploadContext uploads bytes to the Gemini Files API and returns the file's
// resource name as the opaque reference.
func (c *GeminiClient) UploadContext(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	file, err := c.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    "application/json",
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &TimeoutError{Operation: "upload_context", Cause: err}
		}
		return "", &UploadError{Message: name, Cause: err}
	}

	return file.Name, nil
}

// DeleteContext releases an uploaded shared-context resource
func (c *GeminiClient) DeleteContext(ctx context.Context, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	if err := c.client.DeleteFile(ctx, ref); err != nil {
		return c.wrapCallError("delete_context", err)
	}
	return nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) model(tier ModelTier, jsonOutput bool) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if jsonOutput {
		model.ResponseMIMEType = "application/json"
	}
	return model, nil
}

func (c *GeminiClient) wrapCallError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Operation: operation, Cause: err}
	}
	return &APICallError{Message: operation, Cause: err}
}

// turnContent converts a Turn into genai content. Tool calls and results take
// precedence over text when both are present.
func turnContent(turn Turn) *genai.Content {
	content := &genai.Content{Role: turn.Role}
	switch {
	case turn.Call != nil:
		content.Parts = []genai.Part{genai.FunctionCall{Name: turn.Call.Name, Args: turn.Call.Args}}
	case turn.Result != nil:
		content.Parts = []genai.Part{genai.FunctionResponse{Name: turn.Result.Name, Response: turn.Result.Response}}
	default:
		content.Parts = []genai.Part{genai.Text(turn.Text)}
	}
	return content
}

func toolDeclarations(tools []ToolDeclaration) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]*genai.Schema, len(tool.Params))
		var required []string
		for _, param := range tool.Params {
			properties[param.Name] = &genai.Schema{
				Type:        genai.TypeInteger,
				Description: param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return decls
}

// extractTurnResult reads the first candidate, preferring a function call
// part over text parts.
func extractTurnResult(resp *genai.GenerateContentResponse) (*TurnResult, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	result := &TurnResult{}
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			return &TurnResult{Call: &ToolCall{Name: p.Name, Args: p.Args}}, nil
		case genai.Text:
			result.Text += string(p)
		}
	}

	if result.Text == "" {
		return nil, fmt.Errorf("no text or tool call in response")
	}
	return result, nil
}

// extractTextFromResponse extracts text from a Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}

	if text == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return text, nil
}

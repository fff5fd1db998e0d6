package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements LLMClient using Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a new Gemini LLM client.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("assistant: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		modelID: modelID,
	}, nil
}

// Complete sends a completion request to Gemini and returns the response,
// which may be a function call when tools are declared.
func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := c.client.GenerativeModel(c.modelID)

	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.TopP > 0 {
		model.SetTopP(req.TopP)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}

	if len(req.System) > 0 {
		systemText := strings.Join(req.System, "\n\n")
		if strings.TrimSpace(systemText) != "" {
			model.SystemInstruction = genai.NewUserContent(genai.Text(systemText))
		}
	}

	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{geminiToolFromDeclarations(req.Tools)}
	}

	cs := model.StartChat()

	if len(req.Messages) > 1 {
		for _, msg := range req.Messages[:len(req.Messages)-1] {
			content, ok := geminiContent(msg)
			if !ok {
				continue
			}
			cs.History = append(cs.History, content)
		}
	}

	if len(req.Messages) == 0 {
		return LLMResponse{}, errors.New("assistant: gemini requires at least one message")
	}

	lastMsg := req.Messages[len(req.Messages)-1]
	last, ok := geminiContent(lastMsg)
	if !ok {
		return LLMResponse{}, errors.New("assistant: gemini last message is empty")
	}

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("assistant: gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return LLMResponse{}, errors.New("assistant: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return LLMResponse{}, errors.New("assistant: gemini returned empty content")
	}

	result := LLMResponse{
		StopReason: fmt.Sprint(candidate.FinishReason),
	}

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			responseText.WriteString(string(p))
		case genai.FunctionCall:
			if result.ToolCall == nil {
				result.ToolCall = &ToolCall{
					Name:      p.Name,
					Arguments: p.Args,
				}
			}
		}
	}
	result.Text = strings.TrimSpace(responseText.String())

	if resp.UsageMetadata != nil {
		result.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}

	return result, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func geminiContent(msg ChatMessage) (*genai.Content, bool) {
	switch msg.Role {
	case ChatRoleSystem:
		return nil, false
	case ChatRoleAssistant:
		parts := []genai.Part{}
		if content := strings.TrimSpace(msg.Content); content != "" {
			parts = append(parts, genai.Text(content))
		}
		if msg.ToolCall != nil {
			parts = append(parts, genai.FunctionCall{
				Name: msg.ToolCall.Name,
				Args: msg.ToolCall.Arguments,
			})
		}
		if len(parts) == 0 {
			return nil, false
		}
		return &genai.Content{Role: "model", Parts: parts}, true
	case ChatRoleTool:
		if msg.ToolResult == nil {
			return nil, false
		}
		return &genai.Content{
			Role: "function",
			Parts: []genai.Part{genai.FunctionResponse{
				Name:     msg.ToolResult.Name,
				Response: map[string]any{"content": msg.ToolResult.Content},
			}},
		}, true
	default:
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return nil, false
		}
		return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(content)}}, true
	}
}

func geminiToolFromDeclarations(tools []ToolDeclaration) *genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		props := make(map[string]*genai.Schema, len(tool.Parameters))
		for name, param := range tool.Parameters {
			props[name] = &genai.Schema{
				Type:        geminiSchemaType(param.Type),
				Description: param.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   tool.Required,
			},
		})
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

func geminiSchemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

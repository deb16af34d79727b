package models

import (
	"context"
	"errors"
	"fmt"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GeminiLLM talks to Google Gemini with native function declarations.
type GeminiLLM struct {
	Client *genai.Client
	Model  string
}

func NewGeminiLLM(ctx context.Context, model string) (*GeminiLLM, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model}, nil
}

func (g *GeminiLLM) Invoke(ctx context.Context, req Request) (*Completion, error) {
	model := g.Client.GenerativeModel(g.Model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.MaxTokens > 0 {
		tokens := int32(req.MaxTokens)
		model.MaxOutputTokens = &tokens
	}
	if len(req.Tools) > 0 {
		tool := &genai.Tool{}
		for _, spec := range req.Tools {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  geminiSchema(spec.InputSchema),
			})
		}
		model.Tools = []*genai.Tool{tool}
	}

	history, last := buildGeminiContents(req.Messages)
	if len(last) == 0 {
		return nil, fmt.Errorf("%w: gemini: empty transcript", ErrEndpoint)
	}

	session := model.StartChat()
	session.History = history
	resp, err := session.SendMessage(ctx, last...)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrEndpoint, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini: empty response", ErrEndpoint)
	}

	out := &Completion{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        uuid.NewString(), // Gemini carries no call IDs
				Name:      p.Name,
				Arguments: p.Args,
			})
		}
	}
	return out, nil
}

// buildGeminiContents maps the neutral transcript to Gemini contents and
// splits off the final turn's parts, which SendMessage wants separately.
func buildGeminiContents(msgs []Message) (history []*genai.Content, last []genai.Part) {
	var contents []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			content := &genai.Content{Role: "model"}
			if m.Content != "" {
				content.Parts = append(content.Parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				content.Parts = append(content.Parts, genai.FunctionCall{Name: tc.Name, Args: tc.Arguments})
			}
			contents = append(contents, content)
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: "function",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     m.ToolName,
					Response: map[string]any{"content": m.Content},
				}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		}
	}
	if len(contents) == 0 {
		return nil, nil
	}
	final := contents[len(contents)-1]
	return contents[:len(contents)-1], final.Parts
}

// geminiSchema converts a JSON Schema object into Gemini's typed schema.
func geminiSchema(schema map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeObject}
	props, _ := schema["properties"].(map[string]any)
	if len(props) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			prop, _ := raw.(map[string]any)
			out.Properties[name] = geminiProperty(prop)
		}
	}
	switch required := schema["required"].(type) {
	case []string:
		out.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}

func geminiProperty(prop map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeString}
	if t, ok := prop["type"].(string); ok {
		switch t {
		case "number":
			out.Type = genai.TypeNumber
		case "integer":
			out.Type = genai.TypeInteger
		case "boolean":
			out.Type = genai.TypeBoolean
		case "array":
			out.Type = genai.TypeArray
		case "object":
			out.Type = genai.TypeObject
		}
	}
	if desc, ok := prop["description"].(string); ok {
		out.Description = desc
	}
	switch enum := prop["enum"].(type) {
	case []string:
		out.Enum = enum
	case []any:
		for _, e := range enum {
			if s, ok := e.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}
	return out
}

package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kisansarathi/pkg/types"

	"google.golang.org/genai"
)

const soilPrompt = `You are an expert agricultural scientist.

Analyze the soil.

Return STRICT JSON ONLY in this format:

{
  "soil_type": "Loamy",
  "health_score": 0-100,
  "nutrients": {
    "nitrogen": 0-100,
    "phosphorus": 0-100,
    "potassium": 0-100,
    "sulphur": 0-100,
    "ph": 0-14
  }
}

RULES:
- JSON only
- No markdown
- No explanations`

var ErrIncompleteAnalysis = errors.New("incomplete soil analysis")

// Generator produces text from a prompt and an optional image.
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type SoilAnalyzer struct {
	generator Generator
}

func NewSoilAnalyzer(generator Generator) *SoilAnalyzer {
	return &SoilAnalyzer{generator: generator}
}

// Analyze asks the model for a structured soil analysis. image may be nil,
// in which case the model answers from the prompt alone.
func (a *SoilAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*types.SoilAnalysis, error) {
	text, err := a.generator.Generate(ctx, soilPrompt, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("soil analysis request failed: %w", err)
	}

	return ParseSoilAnalysis(text)
}

// ParseSoilAnalysis decodes the model's answer, tolerating a Markdown code
// fence around the JSON.
func ParseSoilAnalysis(raw string) (*types.SoilAnalysis, error) {
	text := stripCodeFence(raw)

	var analysis types.SoilAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON %q: %w", text, err)
	}

	if strings.TrimSpace(analysis.SoilType) == "" || len(analysis.Nutrients) == 0 {
		return nil, ErrIncompleteAnalysis
	}

	return &analysis, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// GeminiGenerator calls a Gemini model through the GenAI SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, mimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	return resp.Text(), nil
}

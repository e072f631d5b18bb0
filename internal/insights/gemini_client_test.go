package insights

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiLLMClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiLLMClient(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestGeminiComplete_RequiresMessage(t *testing.T) {
	client := &GeminiLLMClient{modelID: defaultGeminiModel}
	_, err := client.Complete(context.Background(), LLMRequest{System: []string{"system"}})
	assert.Error(t, err)
}

func TestGeminiResponse_JoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text("  {\"logline\":"), genai.Text("\"x\"}  ")},
			},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 80,
			TotalTokenCount:      200,
		},
	}

	out, err := geminiResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"logline":"x"}`, out.Text)
	assert.NotEmpty(t, out.StopReason)
	assert.Equal(t, TokenUsage{InputTokens: 120, OutputTokens: 80, TotalTokens: 200}, out.Usage)

	in, err := ParseInsights(out.Text)
	require.NoError(t, err)
	assert.Equal(t, "x", in.Logline)
}

func TestGeminiResponse_Empty(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model"}}}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := geminiResponse(resp)
			assert.Error(t, err)
		})
	}
}

func TestGeminiClose_NilClient(t *testing.T) {
	assert.NoError(t, (&GeminiLLMClient{}).Close())
}

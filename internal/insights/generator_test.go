package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

type stubLLM struct {
	resp  LLMResponse
	err   error
	calls int
	last  LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

const sampleJSON = `{
  "logline": "A corner cafe keeps a neighborhood awake and together.",
  "storyAngle": "Coffee as community infrastructure",
  "emotionalTone": "warm, scrappy",
  "priorityScore": 8,
  "themes": ["community", "resilience"],
  "interviewQuestions": ["Why coffee?", "  "],
  "bRollIdeas": ["Dawn opening routine"],
  "researchLeads": [],
  "showrunnerNotes": "Owner is camera-shy."
}`

func sampleSubmission() nomination.Submission {
	return nomination.Submission{
		NominatorName:   "Jo",
		NominatorEmail:  "jo@x.com",
		BusinessName:    "Jo's Cafe",
		BusinessWebsite: "@joscafe",
		Reason:          "Great coffee",
	}
}

func TestGenerate_DisabledWithoutClient(t *testing.T) {
	g := NewGenerator(nil, "", logging.New("error"))
	in, status := g.GenerateWithStatus(context.Background(), sampleSubmission())
	assert.Nil(t, in)
	assert.Equal(t, StatusSkipped, status)
	assert.False(t, g.Enabled())
}

func TestGenerate_NilGeneratorIsDisabled(t *testing.T) {
	var g *Generator
	assert.Nil(t, g.Generate(context.Background(), sampleSubmission()))
}

func TestGenerate_ParsesFencedResponse(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: "```json\n" + sampleJSON + "\n```"}}
	g := NewGenerator(llm, "test-model", logging.New("error"))

	in, status := g.GenerateWithStatus(context.Background(), sampleSubmission())
	require.NotNil(t, in)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, 8, in.PriorityScore)
	assert.Equal(t, []string{"community", "resilience"}, in.Themes)
	assert.Equal(t, []string{"Why coffee?"}, in.InterviewQuestions)
	assert.Nil(t, in.ResearchLeads)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerate_RequestShape(t *testing.T) {
	llm := &stubLLM{resp: LLMResponse{Text: sampleJSON}}
	g := NewGenerator(llm, "test-model", logging.New("error"))
	g.Generate(context.Background(), sampleSubmission())

	assert.Equal(t, "test-model", llm.last.Model)
	assert.Equal(t, int32(maxOutputTokens), llm.last.MaxTokens)
	assert.InDelta(t, defaultTemperature, llm.last.Temperature, 0.0001)
	require.Len(t, llm.last.System, 1)
	assert.Contains(t, llm.last.System[0], `"priorityScore"`)
	require.Len(t, llm.last.Messages, 1)
	assert.Equal(t, ChatRoleUser, llm.last.Messages[0].Role)
	assert.Contains(t, llm.last.Messages[0].Content, "Jo's Cafe")
	assert.Contains(t, llm.last.Messages[0].Content, "Great coffee")
	assert.Contains(t, llm.last.Messages[0].Content, "@joscafe")
}

func TestGenerate_FailuresBecomeNil(t *testing.T) {
	cases := map[string]*stubLLM{
		"provider error": {err: errors.New("rate limited")},
		"empty text":     {resp: LLMResponse{Text: "   "}},
		"not json":       {resp: LLMResponse{Text: "Sure! Here are some thoughts."}},
		"truncated json": {resp: LLMResponse{Text: `{"logline": "cut off`}},
		"null":           {resp: LLMResponse{Text: "null"}},
		"fenced null":    {resp: LLMResponse{Text: "```json\nnull\n```"}},
		"empty object":   {resp: LLMResponse{Text: "{}"}},
		"blank fields":   {resp: LLMResponse{Text: `{"logline": "  ", "themes": [" "]}`}},
	}
	for name, llm := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(llm, "", logging.New("error"))
			in, status := g.GenerateWithStatus(context.Background(), sampleSubmission())
			assert.Nil(t, in)
			assert.Equal(t, StatusFailed, status)
			assert.Equal(t, 1, llm.calls, "no retries")
		})
	}
}

func TestParseInsights_ClampsPriority(t *testing.T) {
	in, err := ParseInsights(`{"priorityScore": 42}`)
	require.NoError(t, err)
	assert.Equal(t, maxPriority, in.PriorityScore)

	in, err = ParseInsights(`{"priorityScore": -3}`)
	require.NoError(t, err)
	assert.Equal(t, minPriority, in.PriorityScore)

	in, err = ParseInsights(`{"logline": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, in.PriorityScore)
}

func TestParseInsights_EmptyReplies(t *testing.T) {
	for _, raw := range []string{"null", "{}", "```json\nnull\n```", `{"priorityScore": 0, "themes": []}`} {
		in, err := ParseInsights(raw)
		assert.Nil(t, in, raw)
		assert.ErrorIs(t, err, errEmptyResponse, raw)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"```{\"a\":1}\n```":       `{"a":1}`,
		"```json {\"a\":1}```":    `{"a":1}`,
		"  \n{\"a\":1}\n  ":       `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in), strings.ReplaceAll(in, "\n", `\n`))
	}
}

func TestUserMessageOmitsEmptyWebsite(t *testing.T) {
	s := sampleSubmission()
	s.BusinessWebsite = ""
	assert.NotContains(t, userMessage(s), "Website")
}

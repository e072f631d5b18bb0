package notify

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
)

func sampleSubmission() nomination.Submission {
	return nomination.Submission{
		NominatorName:   "Jane Doe",
		NominatorEmail:  "jane@example.com",
		NominatorPhone:  "555-0100",
		BusinessName:    "Joe's Diner",
		BusinessWebsite: "@joesdiner",
		Reason:          "Best pie in town",
		NotifyBusiness:  true,
		BusinessContact: "joe@example.com",
	}
}

func fullInsights() *insights.Insights {
	return &insights.Insights{
		Logline:            "A diner that feeds a town",
		StoryAngle:         "Family legacy",
		EmotionalTone:      "Warm",
		PriorityScore:      8,
		Themes:             []string{"family", "food"},
		InterviewQuestions: []string{"How did it start?"},
		BRollIdeas:         []string{"Pie crust close-up"},
		ResearchLeads:      []string{"Local paper archive"},
		ShowrunnerNotes:    "Strong candidate",
	}
}

func countID(ids []string, id string) int {
	n := 0
	for _, got := range ids {
		if got == id {
			n++
		}
	}
	return n
}

func TestFormatNomination_NoInsights(t *testing.T) {
	msg := FormatNomination(sampleSubmission(), nil)
	ids := msg.BlockIDs()

	assert.Equal(t, []string{BlockHeader, BlockSummary, BlockReason, BlockInsightsUnavailable}, ids)
	assert.Equal(t, 1, countID(ids, BlockInsightsUnavailable))
	for _, id := range ids {
		assert.False(t, strings.HasPrefix(id, "insights_") && id != BlockInsightsUnavailable, "unexpected insight block %s", id)
	}
	assert.Contains(t, msg.Text, "Joe's Diner")
}

func TestFormatNomination_WithInsights(t *testing.T) {
	msg := FormatNomination(sampleSubmission(), fullInsights())
	ids := msg.BlockIDs()

	assert.Equal(t, []string{
		BlockHeader, BlockSummary, BlockReason,
		BlockInsightsHeadline, BlockInsightsQuestions, BlockInsightsBRoll,
		BlockInsightsResearch, BlockInsightsNotes,
	}, ids)
	assert.Zero(t, countID(ids, BlockInsightsUnavailable))

	var headline *Block
	for i := range msg.Blocks {
		if msg.Blocks[i].BlockID == BlockInsightsHeadline {
			headline = &msg.Blocks[i]
		}
	}
	require.NotNil(t, headline)
	assert.Contains(t, headline.Text.Text, "*Priority:* 8/10")
	assert.Contains(t, headline.Text.Text, "family, food")
}

func TestFormatNomination_EmptyListsProduceNoBlocks(t *testing.T) {
	in := &insights.Insights{Logline: "Only a logline"}
	ids := FormatNomination(sampleSubmission(), in).BlockIDs()

	assert.Equal(t, []string{BlockHeader, BlockSummary, BlockReason, BlockInsightsHeadline}, ids)
}

func TestFormatNomination_Idempotent(t *testing.T) {
	s := sampleSubmission()
	in := fullInsights()

	first, err := json.Marshal(FormatNomination(s, in))
	require.NoError(t, err)
	second, err := json.Marshal(FormatNomination(s, in))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestFormatNomination_OptionalSummaryFields(t *testing.T) {
	s := sampleSubmission()
	s.NominatorPhone = ""
	s.BusinessWebsite = ""
	s.NotifyBusiness = false

	msg := FormatNomination(s, nil)
	require.Equal(t, BlockSummary, msg.Blocks[1].BlockID)

	var labels []string
	for _, f := range msg.Blocks[1].Fields {
		labels = append(labels, strings.SplitN(f.Text, "\n", 2)[0])
	}
	assert.Equal(t, []string{"*Business:*", "*Nominated by:*", "*Email:*", "*Notify business:*"}, labels)
}

func TestFormatNomination_ClipsLongText(t *testing.T) {
	s := sampleSubmission()
	s.BusinessName = strings.Repeat("b", 400)
	s.Reason = strings.Repeat("r", 5000)

	msg := FormatNomination(s, nil)

	assert.LessOrEqual(t, utf8.RuneCountInString(msg.Blocks[0].Text.Text), maxHeaderText)
	assert.LessOrEqual(t, utf8.RuneCountInString(msg.Blocks[2].Text.Text), maxSectionText)
	assert.True(t, strings.HasSuffix(msg.Blocks[2].Text.Text, "…"))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abc…", clip("abcdefgh", 4))
	assert.Equal(t, "日本…", clip("日本語テキスト", 3))
}

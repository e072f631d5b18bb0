package notify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
)

// Slack Block Kit limits.
const (
	maxHeaderText  = 150
	maxSectionText = 3000
	maxFieldText   = 2000
)

// Block ids identify each section so consumers can tell what was rendered.
const (
	BlockHeader              = "header"
	BlockSummary             = "summary"
	BlockReason              = "reason"
	BlockInsightsUnavailable = "insights_unavailable"
	BlockInsightsHeadline    = "insights_headline"
	BlockInsightsQuestions   = "insights_questions"
	BlockInsightsBRoll       = "insights_broll"
	BlockInsightsResearch    = "insights_research"
	BlockInsightsNotes       = "insights_notes"
)

// TextObject is a Block Kit text element.
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block is the subset of Block Kit layout blocks the formatter emits.
type Block struct {
	Type     string       `json:"type"`
	BlockID  string       `json:"block_id,omitempty"`
	Text     *TextObject  `json:"text,omitempty"`
	Fields   []TextObject `json:"fields,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// Message is the webhook payload. Text is the notification fallback.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// BlockIDs lists the ids of the rendered blocks in order.
func (m Message) BlockIDs() []string {
	ids := make([]string, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		if b.BlockID != "" {
			ids = append(ids, b.BlockID)
		}
	}
	return ids
}

// FormatNomination renders a submission and its optional insights. It is a
// pure function of its inputs. With nil insights exactly one
// insights-unavailable block is emitted in place of the insight sections.
func FormatNomination(s nomination.Submission, in *insights.Insights) Message {
	blocks := []Block{
		{
			Type:    "header",
			BlockID: BlockHeader,
			Text:    plain(clip("New nomination: "+s.BusinessName, maxHeaderText)),
		},
		{
			Type:    "section",
			BlockID: BlockSummary,
			Fields:  summaryFields(s),
		},
		{
			Type:    "section",
			BlockID: BlockReason,
			Text:    mrkdwn(clip("*Why they nominated this business:*\n"+s.Reason, maxSectionText)),
		},
	}

	if in == nil {
		blocks = append(blocks, Block{
			Type:     "context",
			BlockID:  BlockInsightsUnavailable,
			Elements: []TextObject{*mrkdwn("_AI insights unavailable for this nomination._")},
		})
	} else {
		blocks = append(blocks, Block{Type: "divider"})
		blocks = append(blocks, insightBlocks(in)...)
	}

	return Message{
		Text:   fmt.Sprintf("New nomination: %s (from %s)", s.BusinessName, s.NominatorName),
		Blocks: blocks,
	}
}

func summaryFields(s nomination.Submission) []TextObject {
	fields := []TextObject{
		*mrkdwn(field("Business", s.BusinessName)),
	}
	if s.BusinessWebsite != "" {
		fields = append(fields, *mrkdwn(field("Website / social", s.BusinessWebsite)))
	}
	fields = append(fields,
		*mrkdwn(field("Nominated by", s.NominatorName)),
		*mrkdwn(field("Email", s.NominatorEmail)),
	)
	if s.NominatorPhone != "" {
		fields = append(fields, *mrkdwn(field("Phone", s.NominatorPhone)))
	}
	notify := "No"
	if s.NotifyBusiness {
		notify = "Yes"
	}
	fields = append(fields, *mrkdwn(field("Notify business", notify)))
	if s.NotifyBusiness && s.BusinessContact != "" {
		fields = append(fields, *mrkdwn(field("Business contact", s.BusinessContact)))
	}
	return fields
}

func insightBlocks(in *insights.Insights) []Block {
	var blocks []Block

	var headline []string
	if in.Logline != "" {
		headline = append(headline, "*Logline:* "+in.Logline)
	}
	if in.StoryAngle != "" {
		headline = append(headline, "*Story angle:* "+in.StoryAngle)
	}
	if in.EmotionalTone != "" {
		headline = append(headline, "*Tone:* "+in.EmotionalTone)
	}
	if in.PriorityScore > 0 {
		headline = append(headline, fmt.Sprintf("*Priority:* %d/10", in.PriorityScore))
	}
	if len(in.Themes) > 0 {
		headline = append(headline, "*Themes:* "+strings.Join(in.Themes, ", "))
	}
	if len(headline) > 0 {
		blocks = append(blocks, section(BlockInsightsHeadline, "*AI insights*\n"+strings.Join(headline, "\n")))
	}

	if len(in.InterviewQuestions) > 0 {
		blocks = append(blocks, section(BlockInsightsQuestions, bulleted("Interview questions", in.InterviewQuestions)))
	}
	if len(in.BRollIdeas) > 0 {
		blocks = append(blocks, section(BlockInsightsBRoll, bulleted("B-roll ideas", in.BRollIdeas)))
	}
	if len(in.ResearchLeads) > 0 {
		blocks = append(blocks, section(BlockInsightsResearch, bulleted("Research leads", in.ResearchLeads)))
	}
	if in.ShowrunnerNotes != "" {
		blocks = append(blocks, section(BlockInsightsNotes, "*Showrunner notes:*\n"+in.ShowrunnerNotes))
	}
	return blocks
}

func section(id, text string) Block {
	return Block{Type: "section", BlockID: id, Text: mrkdwn(clip(text, maxSectionText))}
}

func bulleted(title string, items []string) string {
	var b strings.Builder
	b.WriteString("*" + title + ":*")
	for _, item := range items {
		b.WriteString("\n• " + item)
	}
	return b.String()
}

func field(label, value string) string {
	return clip("*"+label+":*\n"+value, maxFieldText)
}

func plain(text string) *TextObject {
	return &TextObject{Type: "plain_text", Text: text}
}

func mrkdwn(text string) *TextObject {
	return &TextObject{Type: "mrkdwn", Text: text}
}

// clip shortens s to at most n characters, marking the cut with an ellipsis.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

package insights

import "strings"

const (
	minPriority = 1
	maxPriority = 10
)

// Insights is the structured enrichment the generator produces for one
// submission. A nil *Insights means enrichment did not happen.
type Insights struct {
	Logline            string   `json:"logline"`
	StoryAngle         string   `json:"storyAngle"`
	EmotionalTone      string   `json:"emotionalTone"`
	PriorityScore      int      `json:"priorityScore"`
	Themes             []string `json:"themes"`
	InterviewQuestions []string `json:"interviewQuestions"`
	BRollIdeas         []string `json:"bRollIdeas"`
	ResearchLeads      []string `json:"researchLeads"`
	ShowrunnerNotes    string   `json:"showrunnerNotes"`
}

// normalize clamps a present priority score into 1-10, trims text and drops
// blank list entries. A zero score means the model did not score the nomination.
func (in *Insights) normalize() {
	switch {
	case in.PriorityScore == 0:
	case in.PriorityScore < minPriority:
		in.PriorityScore = minPriority
	case in.PriorityScore > maxPriority:
		in.PriorityScore = maxPriority
	}
	in.Logline = strings.TrimSpace(in.Logline)
	in.StoryAngle = strings.TrimSpace(in.StoryAngle)
	in.EmotionalTone = strings.TrimSpace(in.EmotionalTone)
	in.ShowrunnerNotes = strings.TrimSpace(in.ShowrunnerNotes)
	in.Themes = compact(in.Themes)
	in.InterviewQuestions = compact(in.InterviewQuestions)
	in.BRollIdeas = compact(in.BRollIdeas)
	in.ResearchLeads = compact(in.ResearchLeads)
}

// empty reports whether the model produced nothing usable, e.g. a bare
// null or {} reply.
func (in *Insights) empty() bool {
	return in.Logline == "" &&
		in.StoryAngle == "" &&
		in.EmotionalTone == "" &&
		in.PriorityScore == 0 &&
		len(in.Themes) == 0 &&
		len(in.InterviewQuestions) == 0 &&
		len(in.BRollIdeas) == 0 &&
		len(in.ResearchLeads) == 0 &&
		in.ShowrunnerNotes == ""
}

func compact(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

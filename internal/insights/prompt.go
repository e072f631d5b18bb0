package insights

import (
	"fmt"
	"strings"

	"github.com/wolfman30/nomination-intake/internal/nomination"
)

const systemPrompt = `You are a development producer for a documentary series that profiles small local businesses and the people behind them.
You receive a nomination submitted by a member of the public and turn it into production notes for the showrunner.

Respond with ONLY a JSON object, no prose and no markdown, using exactly this shape:
{
  "logline": "one sentence describing the story",
  "storyAngle": "the most compelling angle for an episode",
  "emotionalTone": "a few words describing the emotional register",
  "priorityScore": 7,
  "themes": ["short theme tag"],
  "interviewQuestions": ["question for the business owner"],
  "bRollIdeas": ["visual or b-roll idea"],
  "researchLeads": ["what a researcher should verify or look up"],
  "showrunnerNotes": "anything else the showrunner should know"
}

priorityScore is an integer from 1 (weak fit) to 10 (must film).
Keep lists to at most five items. Do not invent facts that are not implied by the nomination.`

// userMessage interpolates the submission into the per-request prompt.
func userMessage(s nomination.Submission) string {
	var b strings.Builder
	b.WriteString("New nomination:\n")
	fmt.Fprintf(&b, "Business: %s\n", s.BusinessName)
	if s.BusinessWebsite != "" {
		fmt.Fprintf(&b, "Website / social: %s\n", s.BusinessWebsite)
	}
	fmt.Fprintf(&b, "Nominated by: %s\n", s.NominatorName)
	fmt.Fprintf(&b, "Owner has been told: %s\n", yesNo(s.NotifyBusiness))
	fmt.Fprintf(&b, "\nWhy they nominated this business:\n%s\n", s.Reason)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/nomination-intake/internal/nomination"
)

// AcknowledgementEmail thanks the nominator for a submission.
func AcknowledgementEmail(s nomination.Submission) EmailMessage {
	subject := fmt.Sprintf("Thanks for nominating %s", s.BusinessName)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", s.NominatorName)
	fmt.Fprintf(&body, "Thanks for nominating %s. Our producers read every nomination, and we'll reach out if we'd like to learn more.\n", s.BusinessName)
	if s.NotifyBusiness {
		body.WriteString("\nYou let us know the business is aware of the nomination, which helps us move quickly if it's a fit.\n")
	}
	body.WriteString("\nThe Nominations Team\n")

	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(strings.TrimSpace(body.String())), "\n\n", "</p><p>") + "</p>"

	return EmailMessage{
		To:      s.NominatorEmail,
		ToName:  s.NominatorName,
		Subject: subject,
		Body:    body.String(),
		HTML:    strings.ReplaceAll(htmlBody, "\n", "<br>"),
	}
}

package nomination

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxFieldLength caps every free-text field before it reaches a downstream
// system.
const MaxFieldLength = 5000

// Submission is a sanitized nomination. Build it with FromRaw or Parse and
// treat it as read-only afterwards.
type Submission struct {
	NominatorName   string `json:"nominatorName" validate:"required"`
	NominatorEmail  string `json:"nominatorEmail" validate:"required,nomemail"`
	NominatorPhone  string `json:"nominatorPhone,omitempty"`
	BusinessName    string `json:"businessName" validate:"required"`
	BusinessWebsite string `json:"businessWebsite,omitempty"`
	Reason          string `json:"reason" validate:"required"`
	NotifyBusiness  bool   `json:"notifyBusiness"`
	BusinessContact string `json:"businessContact,omitempty"`
}

// FromRaw coerces an untyped JSON object into a Submission. It never fails:
// missing or non-string values become empty strings and validation is left to
// Validate.
func FromRaw(raw map[string]any) Submission {
	website := rawString(raw, "businessWebsite")
	if website == "" {
		website = rawString(raw, "businessWebsiteOrInstagram")
	}
	return Submission{
		NominatorName:   rawString(raw, "nominatorName"),
		NominatorEmail:  strings.ToLower(rawString(raw, "nominatorEmail")),
		NominatorPhone:  rawString(raw, "nominatorPhone"),
		BusinessName:    rawString(raw, "businessName"),
		BusinessWebsite: website,
		Reason:          rawString(raw, "reason"),
		NotifyBusiness:  rawBool(raw["notifyBusiness"]),
		BusinessContact: rawString(raw, "businessContact"),
	}
}

// Sanitize trims s and truncates it to MaxFieldLength characters.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxFieldLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxFieldLength])
}

func rawString(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return Sanitize(v)
	case float64:
		return Sanitize(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return Sanitize(strconv.FormatBool(v))
	default:
		return ""
	}
}

func rawBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "on", "1":
			return true
		}
	}
	return false
}

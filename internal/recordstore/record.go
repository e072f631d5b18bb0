package recordstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/nomination-intake/internal/insights"
	"github.com/wolfman30/nomination-intake/internal/nomination"
)

// CloudKit field types used by nomination records.
const (
	TypeString     = "STRING"
	TypeInt64      = "INT64"
	TypeTimestamp  = "TIMESTAMP"
	TypeStringList = "STRING_LIST"
)

const (
	RecordTypeNomination = "Nomination"
	StatusNew            = "new"
	StatusDiagnostic     = "diagnostic"
)

type Field struct {
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

type Record struct {
	RecordType string           `json:"recordType"`
	RecordName string           `json:"recordName,omitempty"`
	Fields     map[string]Field `json:"fields"`
}

type Operation struct {
	OperationType string `json:"operationType"`
	Record        Record `json:"record"`
}

// ModifyRequest is the records/modify request body.
type ModifyRequest struct {
	Operations []Operation `json:"operations"`
	Atomic     bool        `json:"atomic,omitempty"`
}

// ModifyResponse is the subset of the records/modify response we inspect.
type ModifyResponse struct {
	Records []struct {
		RecordName      string `json:"recordName"`
		ServerErrorCode string `json:"serverErrorCode,omitempty"`
		Reason          string `json:"reason,omitempty"`
	} `json:"records"`
}

// BuildRecord maps a submission and optional insights onto typed record
// fields. Optional submission fields and empty insight values are omitted.
func BuildRecord(s nomination.Submission, in *insights.Insights, submittedAt time.Time) Record {
	fields := map[string]Field{
		"businessName":   str(s.BusinessName),
		"nominatorName":  str(s.NominatorName),
		"nominatorEmail": str(s.NominatorEmail),
		"reason":         str(s.Reason),
		"status":         str(StatusNew),
		"submittedAt":    {Value: submittedAt.UnixMilli(), Type: TypeTimestamp},
		"notifyBusiness": {Value: boolInt(s.NotifyBusiness), Type: TypeInt64},
	}
	putString(fields, "nominatorPhone", s.NominatorPhone)
	putString(fields, "businessWebsite", s.BusinessWebsite)
	putString(fields, "businessContact", s.BusinessContact)

	if in != nil {
		putString(fields, "aiLogline", in.Logline)
		putString(fields, "aiStoryAngle", in.StoryAngle)
		putString(fields, "aiEmotionalTone", in.EmotionalTone)
		if in.PriorityScore > 0 {
			fields["aiPriorityScore"] = Field{Value: int64(in.PriorityScore), Type: TypeInt64}
		}
		putList(fields, "aiThemes", in.Themes)
		putList(fields, "aiInterviewQuestions", in.InterviewQuestions)
		putList(fields, "aiBRollIdeas", in.BRollIdeas)
		putList(fields, "aiResearchLeads", in.ResearchLeads)
		putString(fields, "aiShowrunnerNotes", in.ShowrunnerNotes)
	}

	return Record{
		RecordType: RecordTypeNomination,
		RecordName: uuid.NewString(),
		Fields:     fields,
	}
}

func createRequest(r Record) ModifyRequest {
	return ModifyRequest{Operations: []Operation{{OperationType: "create", Record: r}}}
}

func str(v string) Field {
	return Field{Value: v, Type: TypeString}
}

func putString(fields map[string]Field, name, v string) {
	if v != "" {
		fields[name] = str(v)
	}
}

func putList(fields map[string]Field, name string, v []string) {
	if len(v) > 0 {
		fields[name] = Field{Value: v, Type: TypeStringList}
	}
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

package entities

// ExtractionResult is the structured output of the generative model. Its
// shape is the fixed contract the engine validates before anything reaches
// the change set; downstream consumers rely on the field names and
// enumerations verbatim.
type ExtractionResult struct {
	Metadata    MeetingMetadata  `json:"metadata"`
	Recap       string           `json:"recap"`
	Tone        ToneAssessment   `json:"tone"`
	ActionItems []ProposedItem   `json:"action_items"`
	Decisions   []ProposedItem   `json:"decisions"`
	Risks       []ProposedItem   `json:"risks"`
	Fishbone    *FishboneOutline `json:"fishbone,omitempty"`
}

// MeetingMetadata is the model's reading of the meeting header
type MeetingMetadata struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`
}

// ToneLabel is the coarse tone classification enumeration
type ToneLabel string

const (
	ToneLabelPositive ToneLabel = "positive"
	ToneLabelNeutral  ToneLabel = "neutral"
	ToneLabelMixed    ToneLabel = "mixed"
	ToneLabelTense    ToneLabel = "tense"
)

// AllToneLabels lists every valid tone label
var AllToneLabels = []ToneLabel{ToneLabelPositive, ToneLabelNeutral, ToneLabelMixed, ToneLabelTense}

// IsValid reports whether the label is one of the known values
func (t ToneLabel) IsValid() bool {
	for _, known := range AllToneLabels {
		if t == known {
			return true
		}
	}
	return false
}

// ToneAssessment is the model's read of the meeting's overall tone
type ToneAssessment struct {
	Label ToneLabel `json:"label"`
	Score float64   `json:"score"` // -1 (hostile) .. 1 (energized)
	Notes string    `json:"notes,omitempty"`
}

// ProposedOperation says what a proposed item does to canonical data
type ProposedOperation string

const (
	OperationCreate ProposedOperation = "create"
	OperationUpdate ProposedOperation = "update"
	OperationClose  ProposedOperation = "close"
)

// IsValid reports whether the operation is one of the known values
func (op ProposedOperation) IsValid() bool {
	return op == OperationCreate || op == OperationUpdate || op == OperationClose
}

// OwnerHint is the free-text person reference the model extracted
type OwnerHint struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ProposedItem is one extracted action item, decision, or risk
type ProposedItem struct {
	Operation      ProposedOperation `json:"operation"`
	TargetRecordID string            `json:"target_record_id,omitempty"` // required unless create
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Owner          OwnerHint         `json:"owner"`
	Evidence       []Evidence        `json:"evidence"`
	DueDateHint    string            `json:"due_date_hint,omitempty"` // e.g. "by Friday"
	Priority       string            `json:"priority,omitempty"`
	// SupersedesRecordID names the decision this one explicitly replaces.
	SupersedesRecordID string `json:"supersedes_record_id,omitempty"`
}

// FishboneOutline is the optional root-cause diagram skeleton
type FishboneOutline struct {
	ProblemStatement string             `json:"problem_statement"`
	Categories       []FishboneCategory `json:"categories"`
}

// FishboneCategory is one bone of the diagram
type FishboneCategory struct {
	Name   string   `json:"name"`
	Causes []string `json:"causes"`
}

// ItemsByKind returns the proposed items grouped with their record kind, in a
// stable order
func (r *ExtractionResult) ItemsByKind() map[RecordKind][]ProposedItem {
	return map[RecordKind][]ProposedItem{
		RecordKindActionItem: r.ActionItems,
		RecordKindDecision:   r.Decisions,
		RecordKindRisk:       r.Risks,
	}
}

package models

// SignalType names a promotional or intent cue category.
type SignalType string

const (
	SignalDiscount  SignalType = "discount"
	SignalUrgency   SignalType = "urgency"
	SignalScarcity  SignalType = "scarcity"
	SignalSocial    SignalType = "social"
	SignalFree      SignalType = "free"
	SignalNew       SignalType = "new"
	SignalExclusive SignalType = "exclusive"
	SignalGuarantee SignalType = "guarantee"
	SignalPrice     SignalType = "price"
)

// Priority orders signals; higher values are more important.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText renders the priority by name in JSON and YAML output.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Signal is a detected cue from page text. Request scoped.
type Signal struct {
	Type        SignalType `json:"type" yaml:"type"`
	MatchedText string     `json:"matched_text" yaml:"matched_text"`
	Priority    Priority   `json:"priority" yaml:"priority"`
}

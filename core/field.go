package core

// FieldStatus discriminates the three outcomes an agent can report for a
// single field.
type FieldStatus int

const (
	// StatusFound marks a field the agent resolved to a concrete value.
	StatusFound FieldStatus = iota
	// StatusNotApplicable marks a field that does not exist for this subject,
	// such as ticker data for a private company. Not an error; the quality
	// gate excludes such fields from coverage scoring.
	StatusNotApplicable
	// StatusFailed marks a field the agent attempted but could not resolve.
	StatusFailed
)

// String returns the string representation of the status.
func (s FieldStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotApplicable:
		return "not_applicable"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FieldValue is the tagged outcome an agent reports for one field. Value is
// only meaningful for StatusFound; Reason is only meaningful for StatusFailed.
type FieldValue struct {
	Status FieldStatus `json:"status"`
	Value  any         `json:"value,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Found wraps a concrete value the agent resolved.
func Found(v any) FieldValue {
	return FieldValue{Status: StatusFound, Value: v}
}

// NotApplicable marks the field as nonexistent for the subject.
func NotApplicable() FieldValue {
	return FieldValue{Status: StatusNotApplicable}
}

// Failed marks the field as attempted but unresolved.
func Failed(reason string) FieldValue {
	return FieldValue{Status: StatusFailed, Reason: reason}
}

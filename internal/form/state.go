package form

import "capex/internal/core"

// State is one form's values. It is a plain value: Reduce returns a new
// State and never modifies its input. The zero State is an empty form.
//
// An empty string means the field is unset.
type State struct {
	Category      core.Category     `json:"category,omitempty"`
	Line          core.Line         `json:"line,omitempty"`
	Reason        core.Reason       `json:"reason,omitempty"`
	OtherReason   string            `json:"other_reason,omitempty"`
	Description   string            `json:"description,omitempty"`
	AreaOfImpact  core.AreaOfImpact `json:"area_of_impact"`
	ScaleOfImpact string            `json:"scale_of_impact,omitempty"`
	Amount        string            `json:"amount,omitempty"`
	// AmountError is the advisory message from the last amount edit.
	AmountError   string `json:"amount_error,omitempty"`
	EffectiveDate string `json:"effective_date,omitempty"`
}

// Value returns the wire value held by f.
func (s State) Value(f FieldID) string {
	switch f {
	case FieldCategory:
		return string(s.Category)
	case FieldLine:
		return string(s.Line)
	case FieldReason:
		return string(s.Reason)
	case FieldOtherReason:
		return s.OtherReason
	case FieldDescription:
		return s.Description
	case FieldAreaOfImpact:
		return s.AreaOfImpact.Value
	case FieldScaleOfImpact:
		return s.ScaleOfImpact
	case FieldAmount:
		return s.Amount
	case FieldEffectiveDate:
		return s.EffectiveDate
	}
	return ""
}

// Has reports whether f holds a value.
func (s State) Has(f FieldID) bool { return s.Value(f) != "" }

// Values returns the set fields keyed by id.
func (s State) Values() map[FieldID]string {
	out := make(map[FieldID]string, len(order))
	for _, f := range order {
		if v := s.Value(f); v != "" {
			out[f] = v
		}
	}
	return out
}

// clear unsets f. Clearing the amount also drops its advisory error.
func (s State) clear(f FieldID) State {
	switch f {
	case FieldCategory:
		s.Category = ""
	case FieldLine:
		s.Line = ""
	case FieldReason:
		s.Reason = ""
	case FieldOtherReason:
		s.OtherReason = ""
	case FieldDescription:
		s.Description = ""
	case FieldAreaOfImpact:
		s.AreaOfImpact = core.AreaOfImpact{}
	case FieldScaleOfImpact:
		s.ScaleOfImpact = ""
	case FieldAmount:
		s.Amount = ""
		s.AmountError = ""
	case FieldEffectiveDate:
		s.EffectiveDate = ""
	}
	return s
}

// Visible reports whether f is open under the current selections.
func (s State) Visible(f FieldID) bool {
	switch f {
	case FieldCategory:
		return true
	case FieldLine:
		return s.Category == core.Improvement
	case FieldReason:
		if s.Category == core.Improvement {
			// Line "Others" has no reason catalog, so the cascade stops there.
			return s.Visible(FieldLine) && s.Line != "" && s.Line != core.LineOther
		}
		return s.Category != ""
	case FieldOtherReason:
		return s.Visible(FieldReason) && s.Reason.IsOther()
	case FieldDescription, FieldAreaOfImpact, FieldScaleOfImpact, FieldAmount, FieldEffectiveDate:
		return s.Visible(FieldReason) && s.Reason != ""
	}
	return false
}

// Complete reports whether every visible field holds a value and the amount
// is well formed. There is no submit step; this is informational.
func (s State) Complete() bool {
	if s.Reason == "" || s.AmountError != "" {
		return false
	}
	for _, f := range order {
		if s.Visible(f) && !s.Has(f) {
			return false
		}
	}
	return true
}

// Package form is the proposal form's dependency engine.
//
// Fields form a cascade: Category, then Line (Improvement only), then Reason,
// then the Other-reason text and the shared tail (Description through
// EffectiveDate). A field can only be shown, and only hold a value, while
// every field above it is set.
package form

import (
	"errors"
	"fmt"

	"capex/internal/core"
)

const (
	FieldCategory      FieldID = "category"
	FieldLine          FieldID = "line"
	FieldReason        FieldID = "reason"
	FieldOtherReason   FieldID = "other_reason"
	FieldDescription   FieldID = "description"
	FieldAreaOfImpact  FieldID = "area_of_impact"
	FieldScaleOfImpact FieldID = "scale_of_impact"
	FieldAmount        FieldID = "amount"
	FieldEffectiveDate FieldID = "effective_date"
)

const (
	KindSingleSelect Kind = "single_select"
	KindFreeText     Kind = "free_text"
	KindEnumSelect   Kind = "enum_select"
)

type (
	FieldID string
	Kind    string

	// FieldDescriptor is what a shell needs to draw one visible field.
	FieldDescriptor struct {
		ID          FieldID       `json:"id"`
		Kind        Kind          `json:"kind"`
		Label       string        `json:"label"`
		Placeholder string        `json:"placeholder,omitempty"`
		Options     []core.Option `json:"options,omitempty"`
	}
)

var (
	ErrUnknownField        = errors.New("unknown field")
	ErrFieldHidden         = errors.New("field is not visible")
	ErrInvalidOption       = errors.New("value is not one of the offered options")
	ErrInconsistentCascade = errors.New("inconsistent cascade state")
)

// order is the cascade order; VisibleFields returns fields in this order.
var order = []FieldID{
	FieldCategory,
	FieldLine,
	FieldReason,
	FieldOtherReason,
	FieldDescription,
	FieldAreaOfImpact,
	FieldScaleOfImpact,
	FieldAmount,
	FieldEffectiveDate,
}

// depth decides resets: a change at depth d clears every set field deeper
// than d. Fields sharing a depth are siblings and never reset each other.
var depth = map[FieldID]int{
	FieldCategory:      0,
	FieldLine:          1,
	FieldReason:        2,
	FieldOtherReason:   3,
	FieldDescription:   3,
	FieldAreaOfImpact:  3,
	FieldScaleOfImpact: 3,
	FieldAmount:        3,
	FieldEffectiveDate: 3,
}

var labels = map[FieldID][2]string{
	FieldCategory:      {"Investment/Expense Category", "Select an Idea Category"},
	FieldLine:          {"Select the Line", "Select a process"},
	FieldReason:        {"Reason for Investment/Expense", "Select change type"},
	FieldOtherReason:   {"Please specify", "Reason for investment/expense..."},
	FieldDescription:   {"Brief description of the work to be done", "Enter a short description of the proposed work..."},
	FieldAreaOfImpact:  {"Area of Impact", "Enter area of impact..."},
	FieldScaleOfImpact: {"Scale of Impact", "Enter scale of impact..."},
	FieldAmount:        {"Investment Amount / Expenditure", "Enter amount in INR..."},
	FieldEffectiveDate: {"Change Effective From:", "Select a date"},
}

// Fields returns every field id in cascade order.
func Fields() []FieldID {
	return append([]FieldID(nil), order...)
}

// ParseFieldID validates a wire field id.
func ParseFieldID(s string) (FieldID, error) {
	f := FieldID(s)
	if _, ok := depth[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

func (f FieldID) String() string { return string(f) }

// Downstream reports whether g sits strictly below f in the cascade.
func (f FieldID) Downstream(g FieldID) bool {
	return depth[g] > depth[f]
}

func describe(f FieldID, s State) FieldDescriptor {
	d := FieldDescriptor{
		ID:          f,
		Kind:        KindFreeText,
		Label:       labels[f][0],
		Placeholder: labels[f][1],
	}
	switch f {
	case FieldCategory:
		d.Kind = KindSingleSelect
		d.Options = core.CategoryOptions()
	case FieldLine:
		d.Kind = KindSingleSelect
		d.Options = core.LineOptions()
	case FieldReason:
		d.Kind = KindSingleSelect
		d.Options = core.ReasonOptions(s.Category, s.Line)
	case FieldAreaOfImpact:
		if core.ImpactKindFor(s.Category) == core.ImpactEnum {
			d.Kind = KindEnumSelect
			d.Placeholder = "Select area of impact"
			d.Options = core.ImpactOptions()
		}
	}
	return d
}

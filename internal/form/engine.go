package form

import (
	"fmt"

	"capex/internal/core"
)

// Event is a single field edit. An empty Value clears the field.
type Event struct {
	Field FieldID `json:"field"`
	Value string  `json:"value"`
}

// Outcome describes what a Reduce call did.
type Outcome struct {
	Field   FieldID `json:"field"`
	Changed bool    `json:"changed"`
	// Reset lists downstream fields that held a value and were cleared.
	Reset []FieldID `json:"reset,omitempty"`
	// AmountError is set when an amount edit was malformed. The raw text is
	// still stored so the user can keep editing it.
	AmountError string `json:"amount_error,omitempty"`
}

// VisibleFields returns the fields a shell should show for s, in cascade order.
func VisibleFields(s State) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(order))
	for _, f := range order {
		if s.Visible(f) {
			out = append(out, describe(f, s))
		}
	}
	return out
}

// Reduce applies ev to s and returns the resulting state.
//
// Edits to hidden fields and select values outside the offered catalog are
// rejected and s is returned untouched. Re-sending the value already held is
// a no-op. Any other change clears every field below the edited one.
func Reduce(s State, ev Event) (State, Outcome, error) {
	out := Outcome{Field: ev.Field}
	if _, ok := depth[ev.Field]; !ok {
		return s, out, fmt.Errorf("%w: %q", ErrUnknownField, ev.Field)
	}

	if ev.Value == "" && !s.Has(ev.Field) {
		return s, out, nil
	}
	if !s.Visible(ev.Field) {
		return s, out, fmt.Errorf("%w: %s", ErrFieldHidden, ev.Field)
	}

	next, err := assign(s, ev)
	if err != nil {
		return s, out, err
	}
	out.AmountError = next.AmountError
	if next.Value(ev.Field) == s.Value(ev.Field) {
		return s, out, nil
	}

	out.Changed = true
	for _, f := range order {
		if ev.Field.Downstream(f) && next.Has(f) {
			next = next.clear(f)
			out.Reset = append(out.Reset, f)
		}
	}
	return next, out, nil
}

// assign writes ev into a copy of s without touching other fields.
func assign(s State, ev Event) (State, error) {
	v := ev.Value
	if v == "" {
		return s.clear(ev.Field), nil
	}

	switch ev.Field {
	case FieldCategory:
		c, err := core.ParseCategory(v)
		if err != nil {
			return s, fmt.Errorf("%w: category %q", ErrInvalidOption, v)
		}
		s.Category = c
	case FieldLine:
		l, err := core.ParseLine(v)
		if err != nil {
			return s, fmt.Errorf("%w: line %q", ErrInvalidOption, v)
		}
		s.Line = l
	case FieldReason:
		r, err := core.ParseReason(s.Category, s.Line, v)
		if err != nil {
			return s, fmt.Errorf("%w: reason %q for %s", ErrInvalidOption, v, s.Category)
		}
		s.Reason = r
	case FieldOtherReason:
		s.OtherReason = v
	case FieldDescription:
		s.Description = v
	case FieldAreaOfImpact:
		a, err := core.NewAreaOfImpact(s.Category, v)
		if err != nil {
			return s, fmt.Errorf("%w: area of impact %q", ErrInvalidOption, v)
		}
		s.AreaOfImpact = a
	case FieldScaleOfImpact:
		s.ScaleOfImpact = v
	case FieldAmount:
		res := core.NormalizeAmount(v)
		s.Amount = res.Display
		s.AmountError = res.Error
	case FieldEffectiveDate:
		s.EffectiveDate = v
	}
	return s, nil
}

// Check reports the first field that holds a value while its gate is closed,
// or an area of impact whose variant no longer matches the category.
// A non-nil result means an upstream edit skipped its reset.
func Check(s State) error {
	for _, f := range order {
		if s.Has(f) && !s.Visible(f) {
			return fmt.Errorf("%w: %s is set while hidden", ErrInconsistentCascade, f)
		}
	}
	if s.Has(FieldAreaOfImpact) && s.AreaOfImpact.Kind != core.ImpactKindFor(s.Category) {
		return fmt.Errorf("%w: area of impact is %s under %s", ErrInconsistentCascade, s.AreaOfImpact.Kind, s.Category)
	}
	if s.AmountError != "" && s.Amount == "" {
		return fmt.Errorf("%w: amount error without amount", ErrInconsistentCascade)
	}
	return nil
}

// Repair clears every field Check would complain about and returns the ids
// it cleared.
func Repair(s State) (State, []FieldID) {
	var cleared []FieldID
	for _, f := range order {
		if s.Has(f) && !s.Visible(f) {
			s = s.clear(f)
			cleared = append(cleared, f)
		}
	}
	if s.Has(FieldAreaOfImpact) && s.AreaOfImpact.Kind != core.ImpactKindFor(s.Category) {
		s = s.clear(FieldAreaOfImpact)
		cleared = append(cleared, FieldAreaOfImpact)
	}
	if s.AmountError != "" && s.Amount == "" {
		s.AmountError = ""
	}
	return s, cleared
}

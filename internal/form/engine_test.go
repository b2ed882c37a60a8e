package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capex/internal/core"
)

func apply(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, ev := range events {
		var err error
		s, _, err = Reduce(s, ev)
		require.NoError(t, err, "event %+v", ev)
	}
	return s
}

func ids(fs []FieldDescriptor) []FieldID {
	out := make([]FieldID, len(fs))
	for i, f := range fs {
		out[i] = f.ID
	}
	return out
}

var tail = []FieldID{FieldDescription, FieldAreaOfImpact, FieldScaleOfImpact, FieldAmount, FieldEffectiveDate}

func filledRegulatory(t *testing.T) State {
	return apply(t, State{},
		Event{FieldCategory, "regulatory"},
		Event{FieldReason, "Others"},
		Event{FieldOtherReason, "ISO recertification"},
		Event{FieldDescription, "External audit for plant 2"},
		Event{FieldAreaOfImpact, "Compliance"},
		Event{FieldScaleOfImpact, "Plant wide"},
		Event{FieldAmount, "250000"},
		Event{FieldEffectiveDate, "2026-11-01"},
	)
}

func TestVisibleFields_Cascade(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   []FieldID
	}{
		{"empty form", nil, []FieldID{FieldCategory}},
		{"improvement asks for line", []Event{{FieldCategory, "improvement"}}, []FieldID{FieldCategory, FieldLine}},
		{
			"improvement with line asks for reason",
			[]Event{{FieldCategory, "improvement"}, {FieldLine, "ECL"}},
			[]FieldID{FieldCategory, FieldLine, FieldReason},
		},
		{
			"improvement with other line stops",
			[]Event{{FieldCategory, "improvement"}, {FieldLine, "Others"}},
			[]FieldID{FieldCategory, FieldLine},
		},
		{"non improvement goes straight to reason", []Event{{FieldCategory, "fixed_cost"}}, []FieldID{FieldCategory, FieldReason}},
		{
			"reason opens the tail",
			[]Event{{FieldCategory, "infrastructure"}, {FieldReason, "Creating shed"}},
			append([]FieldID{FieldCategory, FieldReason}, tail...),
		},
		{
			"other reason adds the free text sibling",
			[]Event{{FieldCategory, "infrastructure"}, {FieldReason, "Others"}},
			append([]FieldID{FieldCategory, FieldReason, FieldOtherReason}, tail...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(t, State{}, tt.events...)
			assert.Equal(t, tt.want, ids(VisibleFields(s)))
		})
	}
}

func TestVisibleFields_Descriptors(t *testing.T) {
	s := apply(t, State{}, Event{FieldCategory, "regulatory"})
	fields := VisibleFields(s)
	require.Len(t, fields, 2)
	assert.Equal(t, KindSingleSelect, fields[1].Kind)
	assert.Equal(t, core.ReasonOptions(core.Regulatory, ""), fields[1].Options)

	s = apply(t, s, Event{FieldReason, "New audit"})
	var area FieldDescriptor
	for _, f := range VisibleFields(s) {
		if f.ID == FieldAreaOfImpact {
			area = f
		}
	}
	assert.Equal(t, KindFreeText, area.Kind)
	assert.Empty(t, area.Options)

	s = apply(t, State{}, Event{FieldCategory, "improvement"}, Event{FieldLine, "SPM"}, Event{FieldReason, "Installation"})
	for _, f := range VisibleFields(s) {
		if f.ID == FieldAreaOfImpact {
			area = f
		}
	}
	assert.Equal(t, KindEnumSelect, area.Kind)
	assert.Equal(t, core.ImpactOptions(), area.Options)
}

func TestReduce_CategoryChangeResetsEverything(t *testing.T) {
	s := filledRegulatory(t)
	require.True(t, s.Complete())

	next, out, err := Reduce(s, Event{FieldCategory, "fixed_cost"})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, []FieldID{FieldReason, FieldOtherReason, FieldDescription, FieldAreaOfImpact, FieldScaleOfImpact, FieldAmount, FieldEffectiveDate}, out.Reset)
	assert.Equal(t, State{Category: core.FixedCost}, next)

	// input is untouched
	assert.Equal(t, core.Regulatory, s.Category)
	assert.Equal(t, "2,50,000", s.Amount)
}

func TestReduce_LineChangeDropsReasonAndTail(t *testing.T) {
	s := apply(t, State{},
		Event{FieldCategory, "improvement"},
		Event{FieldLine, "BAF"},
		Event{FieldReason, "Installation"},
		Event{FieldAreaOfImpact, "TPOH"},
	)
	next, out, err := Reduce(s, Event{FieldLine, "Pickling"})
	require.NoError(t, err)
	assert.Equal(t, []FieldID{FieldReason, FieldAreaOfImpact}, out.Reset)
	assert.Equal(t, State{Category: core.Improvement, Line: core.LinePickling}, next)
}

func TestReduce_SameValueIsNoop(t *testing.T) {
	s := filledRegulatory(t)
	for _, ev := range []Event{
		{FieldCategory, "regulatory"},
		{FieldReason, "Others"},
		{FieldAmount, "2,50,000"},
		{FieldAmount, "250000"},
	} {
		next, out, err := Reduce(s, ev)
		require.NoError(t, err)
		assert.False(t, out.Changed, "%+v", ev)
		assert.Empty(t, out.Reset)
		assert.Equal(t, s, next)
	}
}

func TestReduce_SiblingsDoNotReset(t *testing.T) {
	s := filledRegulatory(t)
	next, out, err := Reduce(s, Event{FieldOtherReason, "SOX readiness"})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Empty(t, out.Reset)
	assert.Equal(t, "SOX readiness", next.OtherReason)
	assert.Equal(t, s.Description, next.Description)

	next, out, err = Reduce(next, Event{FieldDescription, ""})
	require.NoError(t, err)
	assert.Empty(t, out.Reset)
	assert.Empty(t, next.Description)
	assert.Equal(t, s.Amount, next.Amount)
}

func TestReduce_ReasonChangeDropsOtherText(t *testing.T) {
	s := filledRegulatory(t)
	next, out, err := Reduce(s, Event{FieldReason, "New audit"})
	require.NoError(t, err)
	assert.Contains(t, out.Reset, FieldOtherReason)
	assert.Empty(t, next.OtherReason)
	assert.False(t, next.Visible(FieldOtherReason))
}

func TestReduce_ClearUpstream(t *testing.T) {
	s := filledRegulatory(t)
	next, out, err := Reduce(s, Event{FieldCategory, ""})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, State{}, next)
}

func TestReduce_Rejections(t *testing.T) {
	_, _, err := Reduce(State{}, Event{FieldID("budget_code"), "x"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, _, err = Reduce(State{}, Event{FieldReason, "New audit"})
	assert.ErrorIs(t, err, ErrFieldHidden)

	s := apply(t, State{}, Event{FieldCategory, "improvement"}, Event{FieldLine, "Others"})
	_, _, err = Reduce(s, Event{FieldReason, "Installation"})
	assert.ErrorIs(t, err, ErrFieldHidden)

	_, _, err = Reduce(State{}, Event{FieldCategory, "capex"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	s = apply(t, State{}, Event{FieldCategory, "regulatory"})
	_, _, err = Reduce(s, Event{FieldReason, "Salary increase"})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, _, err = Reduce(s, Event{FieldReason, "others"})
	assert.ErrorIs(t, err, ErrInvalidOption, "sentinel match is exact")

	s = apply(t, State{}, Event{FieldCategory, "improvement"}, Event{FieldLine, "ECL"}, Event{FieldReason, "Installation"})
	next, _, err := Reduce(s, Event{FieldAreaOfImpact, "Morale"})
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Equal(t, s, next)

	// clearing something that is already unset is fine even when hidden
	next, out, err := Reduce(State{}, Event{FieldAmount, ""})
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, State{}, next)
}

func TestReduce_Amount(t *testing.T) {
	s := apply(t, State{}, Event{FieldCategory, "fixed_cost"}, Event{FieldReason, "Salary increase"})

	s, out, err := Reduce(s, Event{FieldAmount, "1234567.5"})
	require.NoError(t, err)
	assert.Empty(t, out.AmountError)
	assert.Equal(t, "12,34,567.5", s.Amount)

	s, out, err = Reduce(s, Event{FieldAmount, "12a34"})
	require.NoError(t, err)
	assert.Equal(t, core.InvalidAmountMessage, out.AmountError)
	assert.Equal(t, "12a34", s.Amount)
	assert.Equal(t, core.InvalidAmountMessage, s.AmountError)
	assert.False(t, s.Complete())

	s, out, err = Reduce(s, Event{FieldAmount, ""})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Empty(t, s.Amount)
	assert.Empty(t, s.AmountError)
}

func TestComplete(t *testing.T) {
	s := filledRegulatory(t)
	assert.True(t, s.Complete())

	s2, _, err := Reduce(s, Event{FieldOtherReason, ""})
	require.NoError(t, err)
	assert.False(t, s2.Complete())

	s3, _, err := Reduce(s, Event{FieldEffectiveDate, ""})
	require.NoError(t, err)
	assert.False(t, s3.Complete())

	stuck := apply(t, State{}, Event{FieldCategory, "improvement"}, Event{FieldLine, "Others"})
	assert.False(t, stuck.Complete())
	assert.False(t, State{}.Complete())
}

func TestCheckAndRepair(t *testing.T) {
	require.NoError(t, Check(filledRegulatory(t)))

	broken := State{
		Category:     core.Regulatory,
		Line:         core.LineECL,
		Reason:       core.ReasonNewAudit,
		Description:  "leftover",
		AreaOfImpact: core.AreaOfImpact{Kind: core.ImpactEnum, Value: "TPOH"},
	}
	err := Check(broken)
	require.ErrorIs(t, err, ErrInconsistentCascade)
	assert.Contains(t, err.Error(), "line")

	fixed, cleared := Repair(broken)
	assert.Equal(t, []FieldID{FieldLine, FieldAreaOfImpact}, cleared)
	assert.NoError(t, Check(fixed))
	assert.Equal(t, "leftover", fixed.Description)

	orphan := State{Category: core.Improvement, Reason: core.ReasonInstallation, Amount: "5"}
	fixed, cleared = Repair(orphan)
	assert.Equal(t, []FieldID{FieldReason, FieldAmount}, cleared)
	assert.Equal(t, State{Category: core.Improvement}, fixed)

	assert.ErrorIs(t, Check(State{AmountError: core.InvalidAmountMessage}), ErrInconsistentCascade)
}

func TestParseFieldID(t *testing.T) {
	f, err := ParseFieldID("scale_of_impact")
	require.NoError(t, err)
	assert.Equal(t, FieldScaleOfImpact, f)

	_, err = ParseFieldID("Scale")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Len(t, Fields(), 9)
}

// Package core holds the fixed proposal catalogs and the amount normalizer.
//
// Catalogs are compiled in. Wire values match what the proposal form has
// always posted, so existing clients keep working.
package core

import "errors"

const (
	Improvement    Category = "improvement"
	Infrastructure Category = "infrastructure"
	Regulatory     Category = "regulatory"
	FixedCost      Category = "fixed_cost"
)

const (
	LinePickling   Line = "Pickling"
	LineFourHiMill Line = "4-Hi Mill"
	LineECL        Line = "ECL"
	LineBAF        Line = "BAF"
	LineSPM        Line = "SPM"
	LineOther      Line = "Others"
)

// ReasonOther is the sentinel that asks for a free-text reason.
const ReasonOther Reason = "Others"

const (
	ReasonConstructionOfRoad       Reason = "Construction of road"
	ReasonPaintingRelatedWork      Reason = "Painting related work"
	ReasonCreatingShed             Reason = "Creating shed"
	ReasonInstallingSewagePipeline Reason = "Installing sewage pipeline"
	ReasonNewAudit                 Reason = "New audit"
	ReasonComplianceTraining       Reason = "Compliance training"
	ReasonSalaryIncrease           Reason = "Salary increase"
	ReasonInstallation             Reason = "Installation"
	ReasonRepairAndMaintenance     Reason = "Repair and Maintenance"
)

const (
	ImpactAvailability ImpactArea = "Availability"
	ImpactTPOH         ImpactArea = "TPOH"
	ImpactUtilization  ImpactArea = "Utilization"
	ImpactQualityRate  ImpactArea = "Quality Rate"
)

const (
	ImpactEnum     ImpactKind = "enum"
	ImpactFreeText ImpactKind = "free_text"
)

type (
	Category   string
	Line       string
	Reason     string
	ImpactArea string
	ImpactKind string

	// Option is a selectable catalog entry.
	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	// AreaOfImpact is either one of the Improvement impact areas or free text,
	// depending on the category it was entered under.
	AreaOfImpact struct {
		Kind  ImpactKind `json:"kind"`
		Value string     `json:"value"`
	}
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownLine     = errors.New("unknown line")
	ErrUnknownReason   = errors.New("reason not offered for selection")
	ErrUnknownImpact   = errors.New("unknown area of impact")
)

var categoryLabels = map[Category]string{
	Improvement:    "Improvement cum investment",
	Infrastructure: "Infrastructure development",
	Regulatory:     "Regulatory expenses",
	FixedCost:      "Fixed cost related idea",
}

var (
	categories  = []Category{Improvement, Infrastructure, Regulatory, FixedCost}
	lines       = []Line{LinePickling, LineFourHiMill, LineECL, LineBAF, LineSPM, LineOther}
	impactAreas = []ImpactArea{ImpactAvailability, ImpactTPOH, ImpactUtilization, ImpactQualityRate}

	categoryReasons = map[Category][]Reason{
		Infrastructure: {ReasonConstructionOfRoad, ReasonPaintingRelatedWork, ReasonCreatingShed, ReasonInstallingSewagePipeline, ReasonOther},
		Regulatory:     {ReasonNewAudit, ReasonComplianceTraining, ReasonOther},
		FixedCost:      {ReasonSalaryIncrease, ReasonOther},
	}
	lineReasons = []Reason{ReasonInstallation, ReasonRepairAndMaintenance, ReasonOther}
)

// Categories returns the category catalog in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Lines returns the production lines offered for Improvement.
func Lines() []Line {
	return append([]Line(nil), lines...)
}

// ImpactAreas returns the enumerated areas used by Improvement proposals.
func ImpactAreas() []ImpactArea {
	return append([]ImpactArea(nil), impactAreas...)
}

// ReasonsFor returns the reason catalog for a category and line.
//
// Line only matters for Improvement. Improvement with no line, or with
// LineOther, has no catalog and returns nil.
func ReasonsFor(c Category, l Line) []Reason {
	if c == Improvement {
		if l == "" || l == LineOther || !l.Valid() {
			return nil
		}
		return append([]Reason(nil), lineReasons...)
	}
	if rs, ok := categoryReasons[c]; ok {
		return append([]Reason(nil), rs...)
	}
	return nil
}

// ImpactKindFor picks the area-of-impact variant for a category.
func ImpactKindFor(c Category) ImpactKind {
	if c == Improvement {
		return ImpactEnum
	}
	return ImpactFreeText
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable category name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (l Line) Valid() bool {
	for _, v := range lines {
		if v == l {
			return true
		}
	}
	return false
}

func (r Reason) IsOther() bool { return r == ReasonOther }

func (a ImpactArea) Valid() bool {
	for _, v := range impactAreas {
		if v == a {
			return true
		}
	}
	return false
}

// ParseCategory validates a wire value.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func ParseLine(s string) (Line, error) {
	l := Line(s)
	if !l.Valid() {
		return "", ErrUnknownLine
	}
	return l, nil
}

// ParseReason validates s against the catalog for (c, l).
func ParseReason(c Category, l Line, s string) (Reason, error) {
	for _, r := range ReasonsFor(c, l) {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrUnknownReason
}

// NewAreaOfImpact builds the variant for c. Enum values are checked against
// the impact catalog, free text is kept as typed.
func NewAreaOfImpact(c Category, value string) (AreaOfImpact, error) {
	kind := ImpactKindFor(c)
	if kind == ImpactEnum && !ImpactArea(value).Valid() {
		return AreaOfImpact{}, ErrUnknownImpact
	}
	return AreaOfImpact{Kind: kind, Value: value}, nil
}

func (a AreaOfImpact) IsZero() bool { return a.Value == "" }

// CategoryOptions returns the category catalog as select options.
func CategoryOptions() []Option {
	out := make([]Option, 0, len(categories))
	for _, c := range categories {
		out = append(out, Option{Value: string(c), Label: c.Label()})
	}
	return out
}

func LineOptions() []Option {
	out := make([]Option, 0, len(lines))
	for _, l := range lines {
		out = append(out, Option{Value: string(l), Label: string(l)})
	}
	return out
}

func ReasonOptions(c Category, l Line) []Option {
	rs := ReasonsFor(c, l)
	if rs == nil {
		return nil
	}
	out := make([]Option, 0, len(rs))
	for _, r := range rs {
		out = append(out, Option{Value: string(r), Label: string(r)})
	}
	return out
}

func ImpactOptions() []Option {
	out := make([]Option, 0, len(impactAreas))
	for _, a := range impactAreas {
		out = append(out, Option{Value: string(a), Label: string(a)})
	}
	return out
}

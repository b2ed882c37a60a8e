package core

import (
	"errors"
	"strings"
)

// InvalidAmountMessage is the inline text shown next to a malformed amount.
const InvalidAmountMessage = "Enter a valid amount"

const rupeeGlyph = "₹"

var ErrInvalidAmount = errors.New("invalid amount")

// AmountResult is the outcome of normalizing an amount edit. Error is empty
// when the input was accepted.
type AmountResult struct {
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

// Valid reports whether the input was accepted.
func (r AmountResult) Valid() bool { return r.Error == "" }

// Err maps the advisory message onto ErrInvalidAmount for Go callers.
func (r AmountResult) Err() error {
	if r.Error != "" {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeAmount re-formats a typed amount.
//
// Grouping separators and the rupee glyph are ignored, so already formatted
// input comes back unchanged. The fractional part is passed through without
// rounding. Malformed input is returned as typed along with
// InvalidAmountMessage; it is never cleared.
//
// Examples:
//
//	NormalizeAmount("1234567")   -> {"12,34,567", ""}
//	NormalizeAmount("1234567.5") -> {"12,34,567.5", ""}
//	NormalizeAmount("12a34")     -> {"12a34", "Enter a valid amount"}
func NormalizeAmount(raw string) AmountResult {
	if raw == "" {
		return AmountResult{Display: raw}
	}

	clean := strings.ReplaceAll(raw, ",", "")
	clean = strings.ReplaceAll(clean, rupeeGlyph, "")
	clean = strings.TrimSpace(clean)

	if !isAmountShape(clean) {
		return AmountResult{Display: raw, Error: InvalidAmountMessage}
	}

	intPart, fracPart, hasDot := strings.Cut(clean, ".")
	out := FormatIndian(intPart)
	if hasDot {
		out += "." + fracPart
	}
	return AmountResult{Display: out}
}

// isAmountShape accepts digits with at most one decimal point, and at least
// one digit overall.
func isAmountShape(s string) bool {
	digits := strings.Replace(s, ".", "", 1)
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// FormatIndian groups a string of digits as lakh/crore: the last three digits
// form one group and everything before them is split into pairs.
//
//	FormatIndian("1234567") -> "12,34,567"
//	FormatIndian("999")     -> "999"
func FormatIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head, tail := digits[:n-3], digits[n-3:]

	var b strings.Builder
	b.Grow(n + n/2)
	lead := len(head) % 2
	if lead == 1 {
		b.WriteString(head[:1])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

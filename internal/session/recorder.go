package session

import "capex/internal/form"

// Result labels passed to Recorder.FieldEvent.
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultRejected  = "rejected"
)

type nopRecorder struct{}

func (nopRecorder) FieldEvent(form.FieldID, string) {}
func (nopRecorder) Reset([]form.FieldID)            {}
func (nopRecorder) InvalidAmount()                  {}
func (nopRecorder) Repair()                         {}
func (nopRecorder) ActiveSessions(int)              {}

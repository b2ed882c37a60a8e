package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"capex/internal/core"
	"capex/internal/form"
	applog "capex/internal/log"
	"capex/internal/session"
)

// sessionView is the client's picture of one form.
type sessionView struct {
	ID          string                  `json:"id"`
	Version     int                     `json:"version"`
	Fields      []form.FieldDescriptor  `json:"fields"`
	Values      map[form.FieldID]string `json:"values"`
	AmountError string                  `json:"amount_error,omitempty"`
	Complete    bool                    `json:"complete"`
	CanUndo     bool                    `json:"can_undo"`
}

func newSessionView(snap session.Snapshot) sessionView {
	return sessionView{
		ID:          snap.ID,
		Version:     snap.Version,
		Fields:      form.VisibleFields(snap.State),
		Values:      snap.State.Values(),
		AmountError: snap.State.AmountError,
		Complete:    snap.State.Complete(),
		CanUndo:     snap.CanUndo,
	}
}

type fieldChangeView struct {
	sessionView
	Field   form.FieldID   `json:"field"`
	Changed bool           `json:"changed"`
	Reset   []form.FieldID `json:"reset"`
}

type catalogView struct {
	Categories  []core.Option            `json:"categories"`
	Lines       []core.Option            `json:"lines"`
	Reasons     map[string][]core.Option `json:"reasons"`
	ImpactAreas []core.Option            `json:"impact_areas"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports not_ready once shutdown has begun.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.draining.Load() {
		NewResponse().
			Status(http.StatusServiceUnavailable).
			JSON(map[string]any{"status": "not_ready"}).
			Write(w)
		return
	}
	NewResponse().JSON(map[string]any{
		"status":   "ready",
		"sessions": s.store.Size(),
	}).Write(w)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(buildCatalog()).Write(w)
}

// buildCatalog keys reasons by category, or by category/line for
// Improvement whose reasons depend on the line.
func buildCatalog() catalogView {
	reasons := make(map[string][]core.Option)
	for _, c := range core.Categories() {
		if c != core.Improvement {
			reasons[string(c)] = core.ReasonOptions(c, "")
			continue
		}
		for _, l := range core.Lines() {
			if opts := core.ReasonOptions(c, l); opts != nil {
				reasons[string(c)+"/"+string(l)] = opts
			}
		}
	}
	return catalogView{
		Categories:  core.CategoryOptions(),
		Lines:       core.LineOptions(),
		Reasons:     reasons,
		ImpactAreas: core.ImpactOptions(),
	}
}

// handleNormalize formats an amount without touching any session.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	if !p.Has("amount") {
		BadRequestError("missing amount").Write(w)
		return
	}

	res := core.NormalizeAmount(p.Raw("amount"))
	b := NewResponse().JSON(res)
	if !res.Valid() {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentAmount).
			DebugContext(r.Context(), "Amount rejected", applog.FieldAmountError, res.Error)
		b.TriggerWarningNotification(res.Error)
	}
	b.Write(w)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Create(r.Context())
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/sessions/"+snap.ID).
		JSON(newSessionView(snap)).
		Write(w)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	NewResponse().JSON(newSessionView(snap)).Write(w)
}

// handleFieldChange applies one edit. Cleared fields are announced with
// form:reset and a malformed amount with show-notification; neither is an
// HTTP error.
func (s *Server) handleFieldChange(w http.ResponseWriter, r *http.Request) {
	field, err := form.ParseFieldID(chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err, applog.OpApply)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	if !p.Has("value") {
		BadRequestError("missing value").Write(w)
		return
	}

	snap, out, err := s.store.Apply(r.Context(), chi.URLParam(r, "id"), form.Event{
		Field: field,
		Value: fieldValue(p, field),
	})
	if err != nil {
		s.writeError(w, r, err, applog.OpApply)
		return
	}

	reset := out.Reset
	if reset == nil {
		reset = []form.FieldID{}
	}
	b := NewResponse().JSON(fieldChangeView{
		sessionView: newSessionView(snap),
		Field:       field,
		Changed:     out.Changed,
		Reset:       reset,
	})
	if len(out.Reset) > 0 {
		names := make([]string, len(out.Reset))
		for i, f := range out.Reset {
			names[i] = string(f)
		}
		b.TriggerFormReset(names)
	}
	if out.AmountError != "" {
		b.TriggerWarningNotification(out.AmountError)
	}
	b.Write(w)
}

// fieldValue strips markup from free text. The amount goes to the normalizer
// exactly as typed so a rejected value is echoed back unchanged.
func fieldValue(p *RequestBodyParser, f form.FieldID) string {
	switch f {
	case form.FieldOtherReason, form.FieldDescription, form.FieldAreaOfImpact,
		form.FieldScaleOfImpact, form.FieldEffectiveDate:
		return p.Text("value")
	case form.FieldAmount:
		return p.Raw("value")
	default:
		return p.Get("value")
	}
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpUndo)
		return
	}
	NewResponse().JSON(newSessionView(snap)).Write(w)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

// writeError maps store and engine errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		NotFoundError("session not found").Write(w)
	case errors.Is(err, form.ErrUnknownField):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, form.ErrFieldHidden), errors.Is(err, form.ErrInvalidOption):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, session.ErrNothingToUndo):
		ConflictError(err.Error()).Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, nil)
		InternalServerError("internal error").
			TriggerErrorNotification("Something went wrong, please try again").
			Write(w)
	}
}

package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/page"
	syncx "github.com/mind-engage/understanding-check/internal/sync"
	"github.com/mind-engage/understanding-check/internal/understanding"
)

const (
	participantCookie = "uc_participant"
	sessionCookie     = "uc_session"
)

// Participants serves understanding-check pages to anonymous participants.
type Participants struct {
	Store    check.Store
	Sessions *page.Registry
	Events   syncx.Appender
	Logger   *slog.Logger
	Debug    bool
	// SecureCookies marks cookies Secure; off for plain-http local runs.
	SecureCookies bool
}

// Mount registers the participant routes under /u.
func (p *Participants) Mount(r chi.Router) {
	r.Route("/u/{checkID}", func(r chi.Router) {
		r.Get("/", p.Show)
		r.Post("/", p.Submit)
		r.Post("/focus/{index}", p.Focus)
		r.Get("/done", p.Done)
	})
}

// GET /u/{checkID}  (a new page load)
func (p *Participants) Show(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "checkID")
	c, err := p.Store.GetCheck(r.Context(), checkID)
	if err != nil {
		storeError(w, err)
		return
	}
	participant := p.participantID(w, r)
	s, err := page.NewSession(c, participant, page.Options{
		Debug:  p.Debug,
		Action: pagePath(checkID),
		Record: p.record,
	})
	if err != nil {
		p.Logger.Error("start page session", "check_id", checkID, "error", err)
		http.Error(w, "cannot render check", http.StatusInternalServerError)
		return
	}
	// a reload replaces this browser's previous page load
	if prev, ok := p.session(r, checkID); ok {
		p.Sessions.Remove(prev.ID)
	}
	p.Sessions.Add(s)
	http.SetCookie(w, p.cookie(sessionCookie, s.ID, pagePath(checkID), 0))
	p.Logger.Debug("page session started", "check_id", checkID, "session_id", s.ID, "participant_id", participant)
	writeHTML(w, http.StatusOK, s.HTML())
}

// POST /u/{checkID}  (submit trigger)
func (p *Participants) Submit(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "checkID")
	s, ok := p.session(r, checkID)
	if !ok {
		http.Redirect(w, r, pagePath(checkID), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	res, err := s.Apply(r.Context(), r.PostForm)
	switch {
	case errors.Is(err, page.ErrAlreadySubmitted):
		http.Redirect(w, r, pagePath(checkID)+"/done", http.StatusSeeOther)
		return
	case err != nil:
		// the session stays open; posting again retries the save
		p.Logger.Error("submit answers", "session_id", s.ID, "error", err)
		if errors.Is(err, check.ErrNotFound) {
			storeError(w, err)
			return
		}
		http.Error(w, "could not save your answers, please submit again", http.StatusInternalServerError)
		return
	}

	if !res.Submitted {
		p.appendEvent(r, syncx.TypeValidationFailed, s, res)
		writeHTML(w, http.StatusOK, s.HTML())
		return
	}

	p.Sessions.Remove(s.ID)
	p.appendEvent(r, syncx.TypeCheckCompleted, s, res)
	p.Logger.Info("check completed", "check_id", checkID, "participant_id", s.ParticipantID, "wrong_attempts", res.WrongAttempts)
	http.Redirect(w, r, pagePath(checkID)+"/done", http.StatusSeeOther)
}

// POST /u/{checkID}/focus/{index}  (an answer input gained focus)
func (p *Participants) Focus(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "checkID")
	s, ok := p.session(r, checkID)
	if !ok {
		http.Error(w, "no page session", http.StatusNotFound)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	if err := s.Focus(i); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /u/{checkID}/done
func (p *Participants) Done(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, `<!doctype html><html><body><p>Thank you. All answers are correct.</p></body></html>`)
}

// record saves a submitted page as a completion.
func (p *Participants) record(ctx context.Context, sub page.Submission) error {
	return p.Store.RecordCompletion(ctx, check.Completion{
		ID:            uuid.NewString(),
		CheckID:       sub.CheckID,
		ParticipantID: sub.ParticipantID,
		WrongAttempts: sub.WrongAttempts,
		Answers:       sub.Answers,
		CompletedAt:   time.Now().UTC(),
	})
}

func (p *Participants) session(r *http.Request, checkID string) (*page.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	s, ok := p.Sessions.Get(c.Value)
	if !ok || s.CheckID != checkID {
		return nil, false
	}
	return s, true
}

// participantID reuses the browser's participant cookie or issues a new one.
func (p *Participants) participantID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(participantCookie); err == nil && c.Value != "" {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, p.cookie(participantCookie, id, "/", 30*24*time.Hour))
	return id
}

func (p *Participants) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   p.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.Expires = time.Now().Add(ttl)
	}
	return c
}

func (p *Participants) appendEvent(r *http.Request, typ string, s *page.Session, res understanding.Result) {
	e, err := syncx.NewEvent(typ, s.ID, map[string]any{
		"check_id":       s.CheckID,
		"participant_id": s.ParticipantID,
		"correct":        res.Correct,
		"questions":      len(res.Questions),
		"wrong_attempts": res.WrongAttempts,
	})
	if err == nil {
		err = p.Events.Append(r.Context(), e)
	}
	if err != nil {
		p.Logger.Warn("append event", "type", typ, "session_id", s.ID, "error", err)
	}
}

func pagePath(checkID string) string { return "/u/" + checkID }

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

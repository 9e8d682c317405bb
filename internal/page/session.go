package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/dom"
	"github.com/mind-engage/understanding-check/internal/understanding"
)

var (
	ErrAlreadySubmitted = errors.New("page already submitted")
	ErrNoQuestion       = errors.New("no such question")
)

type Options struct {
	// Debug enables a check's SetCorrectAnswers prefill.
	Debug bool
	// Action is the URL the page form posts to.
	Action string
	// Record persists a submission. It runs inside the submit; an error
	// leaves the session unsubmitted so the participant can retry.
	Record func(ctx context.Context, sub Submission) error
}

// Submission is what a page hands over when its form is submitted.
type Submission struct {
	SessionID     string
	CheckID       string
	ParticipantID string
	WrongAttempts int
	Answers       map[string]string
	Values        url.Values
}

// Session is one page load of a check by one participant. All methods are
// serialized, mirroring a browser's single event loop.
type Session struct {
	ID            string
	CheckID       string
	ParticipantID string

	mu           sync.Mutex
	doc          *dom.Document
	ctrl         *understanding.Controller
	record       func(context.Context, Submission) error
	counterField string
	submitted    url.Values
	lastSeen     time.Time
	// deadline is zero when the check has no timeout warning.
	deadline time.Time
}

func NewSession(c check.Check, participantID string, opts Options) (*Session, error) {
	c = c.WithDefaults()
	raw, err := Render(c, opts.Action)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		ID:            uuid.NewString(),
		CheckID:       c.ID,
		ParticipantID: participantID,
		doc:           doc,
		record:        opts.Record,
		counterField:  c.WrongAttemptsField,
		lastSeen:      now,
	}
	if c.TimeoutWarningSeconds > 0 {
		s.deadline = now.Add(time.Duration(c.TimeoutWarningSeconds) * time.Second)
	}
	s.ctrl, err = understanding.Initialize(domPage{doc: doc}, understanding.Config{
		QuestionCount:         len(c.Questions),
		EmptyAnswerHint:       c.EmptyHint,
		WrongAttemptsField:    c.WrongAttemptsField,
		PrefillCorrectAnswers: c.SetCorrectAnswers && opts.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize check %s: %w", c.ID, err)
	}
	return s, nil
}

// Apply enters the posted answers and runs the submit trigger. An answer
// that differs from what the input holds is entered the way a user would:
// focus first, then type. An error from Options.Record is returned wrapped
// and the session stays open.
func (s *Session) Apply(ctx context.Context, answers url.Values) (understanding.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	if s.submitted != nil {
		return understanding.Result{}, ErrAlreadySubmitted
	}
	s.doc.OnSubmit(func(_ string, vals url.Values) error {
		return s.submit(ctx, vals)
	})
	for i := 0; i < s.ctrl.QuestionCount(); i++ {
		name := "q_input_" + strconv.Itoa(i)
		if _, ok := answers[name]; !ok {
			continue
		}
		v := answers.Get(name)
		id := understanding.InputID(i)
		input := s.doc.ElementByID(id)
		if input.Value() == v {
			continue
		}
		s.doc.Focus(id)
		input.SetValue(v)
	}
	return s.ctrl.Validate()
}

func (s *Session) submit(ctx context.Context, vals url.Values) error {
	if s.record != nil {
		err := s.record(ctx, Submission{
			SessionID:     s.ID,
			CheckID:       s.CheckID,
			ParticipantID: s.ParticipantID,
			WrongAttempts: understanding.ParseCount(vals.Get(s.counterField)),
			Answers:       Answers(vals, s.ctrl.QuestionCount()),
			Values:        vals,
		})
		if err != nil {
			return err
		}
	}
	s.submitted = vals
	return nil
}

// Focus delivers a focus event to question i's input.
func (s *Session) Focus(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	if i < 0 || i >= s.ctrl.QuestionCount() {
		return ErrNoQuestion
	}
	s.doc.Focus(understanding.InputID(i))
	return nil
}

// HTML renders the page in its current state. Past the timeout warning
// deadline the warning is shown; the page stays submittable.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateTimer(time.Now())
	return s.doc.HTML()
}

func (s *Session) updateTimer(now time.Time) {
	if s.deadline.IsZero() {
		return
	}
	left := int(s.deadline.Sub(now).Round(time.Second) / time.Second)
	if left < 0 {
		left = 0
	}
	if el := s.doc.ElementByID(timerSecondsID); el != nil {
		el.SetText(strconv.Itoa(left))
	}
	if left == 0 {
		if el := s.doc.ElementByID(timeoutWarningID); el != nil {
			el.RemoveAttr("hidden")
		}
	}
}

// Submitted returns the values the form was submitted with, if it was.
func (s *Session) Submitted() (url.Values, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted, s.submitted != nil
}

// Answers picks the q_input_* fields out of submitted form values.
func Answers(vals url.Values, questions int) map[string]string {
	out := make(map[string]string, questions)
	for i := 0; i < questions; i++ {
		name := "q_input_" + strconv.Itoa(i)
		out[name] = vals.Get(name)
	}
	return out
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Package understanding checks the answers of an understanding-check form.
//
// A Controller is built once per page load by Initialize. Each submit
// trigger runs Validate, which restyles every answer input as ok or error,
// shows hints under wrong answers, and either submits the form or bumps the
// wrong-attempt counter. Focusing an input clears its feedback.
package understanding

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	ClassOK    = "ok"
	ClassError = "error"
	ClassHint  = "hint"

	FormID = "form"
)

var ErrMissingElement = errors.New("understanding: missing page element")

// Element is a node the controller reads or restyles.
type Element interface {
	Value() string
	SetValue(v string)
	AddClass(class string)
	RemoveClass(class string)
}

// Document is the page surface the controller runs against. Hints live in
// the container enclosing an input and are addressed by the input's id.
type Document interface {
	ElementByID(id string) Element
	LabelFor(id string) Element
	HasHint(inputID string) bool
	InsertHint(inputID, text string)
	RemoveHints(inputID string)
	OnFocus(inputID string, fn func())
	SubmitForm(formID string) error
}

// Config holds the four values a page passes to Initialize.
type Config struct {
	QuestionCount         int
	EmptyAnswerHint       string
	WrongAttemptsField    string
	PrefillCorrectAnswers bool
}

func InputID(i int) string   { return "id_q_input_" + strconv.Itoa(i) }
func CorrectID(i int) string { return "id_q_correct_" + strconv.Itoa(i) }
func HintID(i int) string    { return "id_q_hint_" + strconv.Itoa(i) }

// CounterID is the element id of the hidden wrong-attempt counter field.
func CounterID(field string) string { return "id_" + field }

type question struct {
	index   int
	inputID string
	input   Element
	label   Element
	correct string
	hint    string
}

type Controller struct {
	doc       Document
	cfg       Config
	questions []question
	counter   Element // nil when the page has no counter field
	attempts  int
}

// Initialize resolves every question's elements, optionally prefills the
// correct answers and binds the focus reset on each input.
func Initialize(doc Document, cfg Config) (*Controller, error) {
	if cfg.QuestionCount < 0 {
		return nil, fmt.Errorf("understanding: negative question count %d", cfg.QuestionCount)
	}
	c := &Controller{
		doc:       doc,
		cfg:       cfg,
		questions: make([]question, 0, cfg.QuestionCount),
	}
	if cfg.WrongAttemptsField != "" {
		c.counter = doc.ElementByID(CounterID(cfg.WrongAttemptsField))
	}

	for i := 0; i < cfg.QuestionCount; i++ {
		q, err := c.resolve(i)
		if err != nil {
			return nil, err
		}
		if cfg.PrefillCorrectAnswers {
			q.input.SetValue(q.correct)
		}
		c.questions = append(c.questions, q)
		doc.OnFocus(q.inputID, c.resetOnFocus(i))
	}
	return c, nil
}

func (c *Controller) resolve(i int) (question, error) {
	id := InputID(i)
	q := question{index: i, inputID: id}
	if q.input = c.doc.ElementByID(id); q.input == nil {
		return q, fmt.Errorf("%w: %s", ErrMissingElement, id)
	}
	if q.label = c.doc.LabelFor(id); q.label == nil {
		return q, fmt.Errorf("%w: label[for=%s]", ErrMissingElement, id)
	}
	correct := c.doc.ElementByID(CorrectID(i))
	if correct == nil {
		return q, fmt.Errorf("%w: %s", ErrMissingElement, CorrectID(i))
	}
	hint := c.doc.ElementByID(HintID(i))
	if hint == nil {
		return q, fmt.Errorf("%w: %s", ErrMissingElement, HintID(i))
	}
	q.correct, q.hint = correct.Value(), hint.Value()
	return q, nil
}

func (c *Controller) resetOnFocus(i int) func() {
	return func() { c.Focus(i) }
}

// QuestionCount is the number of questions fixed at Initialize.
func (c *Controller) QuestionCount() int { return len(c.questions) }

// Focus clears the feedback of question i: both presentation classes on
// the input and its label, and any hint under the input.
func (c *Controller) Focus(i int) {
	if i < 0 || i >= len(c.questions) {
		return
	}
	q := c.questions[i]
	for _, el := range []Element{q.input, q.label} {
		el.RemoveClass(ClassOK)
		el.RemoveClass(ClassError)
	}
	c.doc.RemoveHints(q.inputID)
}

// Outcome is the verdict on one question in a Validate pass.
type Outcome struct {
	Index   int
	Value   string
	Correct bool
	// Hint is the text of a hint inserted by this pass. Empty when the
	// answer was correct or a hint was already showing.
	Hint string
}

type Result struct {
	Questions []Outcome
	Correct   int
	Submitted bool
	// WrongAttempts is the counter value after the pass.
	WrongAttempts int
}

func (r Result) AllCorrect() bool { return r.Correct == len(r.Questions) }

// Validate checks every answer against its expected value. When all are
// correct the form is submitted; otherwise the wrong-attempt counter is
// incremented. The returned error comes from form submission only.
func (c *Controller) Validate() (Result, error) {
	res := Result{Questions: make([]Outcome, 0, len(c.questions))}
	for _, q := range c.questions {
		res.Questions = append(res.Questions, c.check(q))
	}
	for _, o := range res.Questions {
		if o.Correct {
			res.Correct++
		}
	}

	if res.Correct == len(c.questions) {
		res.WrongAttempts = c.currentAttempts()
		if err := c.doc.SubmitForm(FormID); err != nil {
			return res, fmt.Errorf("submit form: %w", err)
		}
		res.Submitted = true
		return res, nil
	}

	res.WrongAttempts = c.currentAttempts()
	if res.WrongAttempts < math.MaxInt {
		res.WrongAttempts++
	}
	c.attempts = res.WrongAttempts
	if c.counter != nil {
		c.counter.SetValue(strconv.Itoa(res.WrongAttempts))
	}
	return res, nil
}

func (c *Controller) check(q question) Outcome {
	v := q.input.Value()
	o := Outcome{Index: q.index, Value: v}
	if v == q.correct {
		o.Correct = true
		mark(q, ClassOK, ClassError)
		return o
	}
	mark(q, ClassError, ClassOK)
	if !c.doc.HasHint(q.inputID) {
		o.Hint = q.hint
		if v == "" {
			o.Hint = c.cfg.EmptyAnswerHint
		}
		c.doc.InsertHint(q.inputID, o.Hint)
	}
	return o
}

func mark(q question, add, remove string) {
	for _, el := range []Element{q.input, q.label} {
		el.RemoveClass(remove)
		el.AddClass(add)
	}
}

func (c *Controller) currentAttempts() int {
	if c.counter == nil {
		return c.attempts
	}
	return ParseCount(c.counter.Value())
}

// ParseCount reads the leading decimal integer of s, skipping leading
// whitespace. Anything without one counts as zero; out-of-range values
// clamp to the int limits.
func ParseCount(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	n, err := strconv.Atoi(s[start:i])
	if errors.Is(err, strconv.ErrRange) {
		if s[start] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

package check

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultHint             = "This is wrong. Please reconsider."
	DefaultEmptyHint        = "Please fill out this answer."
	DefaultTimeoutWarning   = "Please hurry up, the time is over!"
	DefaultTimerWarningText = "Time left to complete this page:"
	DefaultCounterField     = "understanding_questions_wrong_attempts"
)

var (
	idPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	fieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	// reservedFieldPrefixes are the names the page gives its question fields.
	reservedFieldPrefixes = []string{"q_input_", "q_correct_", "q_hint_"}
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid check")
)

type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options,omitempty"` // empty: free text input
	Correct string   `json:"correct"`
	Hint    string   `json:"hint,omitempty"` // shown for a non-empty wrong answer
}

// Check is one page of understanding questions.
type Check struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Questions          []Question `json:"questions"`
	EmptyHint          string     `json:"hint_empty,omitempty"`
	WrongAttemptsField string     `json:"wrong_attempts_field,omitempty"`
	// SetCorrectAnswers prefills every answer; honored only in debug mode.
	SetCorrectAnswers bool `json:"set_correct_answers,omitempty"`

	// TimeoutWarningSeconds enables a countdown and, once it runs out, a
	// warning message. The page is never submitted automatically.
	TimeoutWarningSeconds int    `json:"timeout_warning_seconds,omitempty"`
	TimeoutWarningMessage string `json:"timeout_warning_message,omitempty"`
	TimerWarningText      string `json:"timer_warning_text,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// WithDefaults fills in the default hint texts and counter field name.
func (c Check) WithDefaults() Check {
	if c.EmptyHint == "" {
		c.EmptyHint = DefaultEmptyHint
	}
	if c.WrongAttemptsField == "" {
		c.WrongAttemptsField = DefaultCounterField
	}
	if c.TimeoutWarningMessage == "" {
		c.TimeoutWarningMessage = DefaultTimeoutWarning
	}
	if c.TimerWarningText == "" {
		c.TimerWarningText = DefaultTimerWarningText
	}
	qs := make([]Question, len(c.Questions))
	for i, q := range c.Questions {
		if q.Hint == "" {
			q.Hint = DefaultHint
		}
		qs[i] = q
	}
	c.Questions = qs
	return c
}

func (c Check) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalid)
	}
	if !idPattern.MatchString(c.ID) {
		return fmt.Errorf("%w: id %q may only contain letters, digits, '_' and '-'", ErrInvalid, c.ID)
	}
	if f := c.WrongAttemptsField; f != "" {
		if !fieldPattern.MatchString(f) {
			return fmt.Errorf("%w: wrong_attempts_field %q may only contain letters, digits and '_'", ErrInvalid, f)
		}
		for _, p := range reservedFieldPrefixes {
			if strings.HasPrefix(f, p) {
				return fmt.Errorf("%w: wrong_attempts_field %q collides with question fields", ErrInvalid, f)
			}
		}
	}
	if c.TimeoutWarningSeconds < 0 {
		return fmt.Errorf("%w: timeout_warning_seconds must not be negative", ErrInvalid)
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: at least one question required", ErrInvalid)
	}
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalid, i)
		}
		if len(q.Options) > 0 && !contains(q.Options, q.Correct) {
			return fmt.Errorf("%w: question %d: correct answer %q is not an option", ErrInvalid, i, q.Correct)
		}
	}
	return nil
}

// Completion is recorded when a participant answers every question of a
// check correctly and the page form is submitted.
type Completion struct {
	ID            string            `json:"id"`
	CheckID       string            `json:"check_id"`
	ParticipantID string            `json:"participant_id"`
	WrongAttempts int               `json:"wrong_attempts"`
	Answers       map[string]string `json:"answers"`
	CompletedAt   time.Time         `json:"completed_at"`
}

type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Questions   int    `json:"questions"`
	Completions int    `json:"completions"`
	CreatedAt   int64  `json:"created_at"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

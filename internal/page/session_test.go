package page

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/dom"
)

var ctx = context.Background()

func animals() check.Check {
	return check.Check{
		ID:    "animals",
		Title: "Animals",
		Questions: []check.Question{
			{Text: "Meows?", Correct: "cat"},
			{Text: "Barks?", Options: []string{"cat", "dog"}, Correct: "dog"},
			{Text: "Flies?", Correct: "bird", Hint: "It has feathers."},
		},
		WrongAttemptsField: "n_wrong",
	}
}

func reparse(t *testing.T, s *Session) *dom.Document {
	t.Helper()
	d, err := dom.ParseString(s.HTML())
	require.NoError(t, err)
	return d
}

func hintTexts(d *dom.Document, inputID string) []string {
	var out []string
	for _, h := range d.ElementByID(inputID).Parent().FindByClass("hint") {
		out = append(out, h.Text())
	}
	return out
}

func TestRenderCarriesDOMContract(t *testing.T) {
	raw, err := Render(animals(), "/u/animals")
	require.NoError(t, err)
	d, err := dom.ParseString(string(raw))
	require.NoError(t, err)

	for _, id := range []string{"id_q_input_0", "id_q_correct_0", "id_q_hint_0", "id_q_input_1", "id_q_hint_2", "id_n_wrong"} {
		assert.NotNil(t, d.ElementByID(id), id)
	}
	assert.NotNil(t, d.LabelFor("id_q_input_2"))
	assert.Equal(t, "select", d.ElementByID("id_q_input_1").Tag())
	assert.Equal(t, "dog", d.ElementByID("id_q_correct_1").Value())
	assert.Equal(t, check.DefaultHint, d.ElementByID("id_q_hint_0").Value())
	assert.Equal(t, "It has feathers.", d.ElementByID("id_q_hint_2").Value())
	assert.Equal(t, "0", d.ElementByID("id_n_wrong").Value())

	f := d.Form("form")
	require.NotNil(t, f)
	vals := f.Values()
	assert.NotContains(t, vals, "q_correct_0", "expected answers never post back")
	assert.Contains(t, vals, "n_wrong")
}

func TestSessionScenario(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)

	res, err := s.Apply(ctx, url.Values{"q_input_0": {"cat"}, "q_input_1": {"dog"}, "q_input_2": {"fish"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Correct)
	assert.False(t, res.Submitted)
	assert.Equal(t, 1, res.WrongAttempts)

	d := reparse(t, s)
	assert.True(t, d.ElementByID("id_q_input_0").HasClass("ok"))
	assert.True(t, d.LabelFor("id_q_input_1").HasClass("ok"))
	assert.True(t, d.ElementByID("id_q_input_2").HasClass("error"))
	assert.True(t, d.LabelFor("id_q_input_2").HasClass("error"))
	assert.Equal(t, []string{"It has feathers."}, hintTexts(d, "id_q_input_2"))
	assert.Equal(t, "1", d.ElementByID("id_n_wrong").Value())
	assert.Equal(t, "dog", d.ElementByID("id_q_input_1").Value())

	_, ok := s.Submitted()
	assert.False(t, ok)
}

func TestSessionUnchangedWrongAnswerKeepsSingleHint(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)

	post := url.Values{"q_input_0": {""}, "q_input_1": {"dog"}, "q_input_2": {"bird"}}
	_, err = s.Apply(ctx, post)
	require.NoError(t, err)
	res, err := s.Apply(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, 2, res.WrongAttempts)

	d := reparse(t, s)
	assert.Equal(t, []string{check.DefaultEmptyHint}, hintTexts(d, "id_q_input_0"))
	assert.Equal(t, 1, strings.Count(s.HTML(), `class="hint"`))
}

func TestSessionChangedAnswerRefocuses(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)

	_, err = s.Apply(ctx, url.Values{"q_input_0": {""}})
	require.NoError(t, err)
	_, err = s.Apply(ctx, url.Values{"q_input_0": {"dog"}})
	require.NoError(t, err)

	d := reparse(t, s)
	assert.Equal(t, []string{check.DefaultHint}, hintTexts(d, "id_q_input_0"))
}

func TestSessionFocusClearsFeedback(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)
	_, err = s.Apply(ctx, url.Values{"q_input_0": {"x"}})
	require.NoError(t, err)

	require.NoError(t, s.Focus(0))
	d := reparse(t, s)
	assert.False(t, d.ElementByID("id_q_input_0").HasClass("error"))
	assert.False(t, d.LabelFor("id_q_input_0").HasClass("error"))
	assert.Empty(t, hintTexts(d, "id_q_input_0"))
	assert.True(t, d.ElementByID("id_q_input_1").HasClass("error"), "only the focused question resets")

	assert.ErrorIs(t, s.Focus(3), ErrNoQuestion)
	assert.ErrorIs(t, s.Focus(-1), ErrNoQuestion)
}

func TestSessionSubmitsWhenAllCorrect(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)
	_, err = s.Apply(ctx, url.Values{"q_input_0": {"dog"}})
	require.NoError(t, err)

	res, err := s.Apply(ctx, url.Values{"q_input_0": {"cat"}, "q_input_1": {"dog"}, "q_input_2": {"bird"}})
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.Equal(t, 1, res.WrongAttempts)

	vals, ok := s.Submitted()
	require.True(t, ok)
	assert.Equal(t, "1", vals.Get("n_wrong"))
	assert.Equal(t, map[string]string{"q_input_0": "cat", "q_input_1": "dog", "q_input_2": "bird"}, Answers(vals, 3))

	_, err = s.Apply(ctx, url.Values{})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSessionPrefillOnlyInDebug(t *testing.T) {
	c := animals()
	c.SetCorrectAnswers = true

	s, err := NewSession(c, "p1", Options{})
	require.NoError(t, err)
	assert.Equal(t, "", reparse(t, s).ElementByID("id_q_input_0").Value())

	s, err = NewSession(c, "p1", Options{Debug: true})
	require.NoError(t, err)
	d := reparse(t, s)
	assert.Equal(t, "cat", d.ElementByID("id_q_input_0").Value())
	assert.Equal(t, "dog", d.ElementByID("id_q_input_1").Value())

	res, err := s.Apply(ctx, url.Values{})
	require.NoError(t, err)
	assert.True(t, res.Submitted)
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	old, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)
	fresh, err := NewSession(animals(), "p2", Options{})
	require.NoError(t, err)
	old.lastSeen = time.Now().Add(-2 * time.Hour)

	r.Add(old)
	r.Add(fresh)
	require.Equal(t, 2, r.Len())

	assert.Equal(t, 1, r.Sweep(time.Now(), time.Hour))
	_, ok := r.Get(old.ID)
	assert.False(t, ok)
	got, ok := r.Get(fresh.ID)
	require.True(t, ok)
	assert.Same(t, fresh, got)

	r.Remove(fresh.ID)
	assert.Equal(t, 0, r.Len())
}

func TestSessionRecordFailureKeepsSessionOpen(t *testing.T) {
	fail := true
	var got []Submission
	s, err := NewSession(animals(), "p1", Options{
		Record: func(_ context.Context, sub Submission) error {
			if fail {
				return errors.New("db down")
			}
			got = append(got, sub)
			return nil
		},
	})
	require.NoError(t, err)

	_, err = s.Apply(ctx, url.Values{"q_input_0": {"dog"}})
	require.NoError(t, err)

	answers := url.Values{"q_input_0": {"cat"}, "q_input_1": {"dog"}, "q_input_2": {"bird"}}
	res, err := s.Apply(ctx, answers)
	require.Error(t, err)
	assert.False(t, res.Submitted)
	_, ok := s.Submitted()
	assert.False(t, ok, "a failed save must not mark the page submitted")

	fail = false
	res, err = s.Apply(ctx, answers)
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].SessionID)
	assert.Equal(t, "animals", got[0].CheckID)
	assert.Equal(t, "p1", got[0].ParticipantID)
	assert.Equal(t, 1, got[0].WrongAttempts)
	assert.Equal(t, "bird", got[0].Answers["q_input_2"])
}

func TestSessionTimeoutWarning(t *testing.T) {
	c := animals()
	c.TimeoutWarningSeconds = 60
	c.TimeoutWarningMessage = "Time is up."

	s, err := NewSession(c, "p1", Options{})
	require.NoError(t, err)
	d := reparse(t, s)
	require.NotNil(t, d.ElementByID("timer_text"))
	assert.Contains(t, d.ElementByID("timer_text").Text(), check.DefaultTimerWarningText)
	assert.Equal(t, "60", d.ElementByID("timer_seconds").Text())
	warn := d.ElementByID("timeout_warning")
	require.NotNil(t, warn)
	_, hidden := warn.Attr("hidden")
	assert.True(t, hidden)

	s.deadline = time.Now().Add(-time.Second)
	d = reparse(t, s)
	assert.Equal(t, "0", d.ElementByID("timer_seconds").Text())
	warn = d.ElementByID("timeout_warning")
	_, hidden = warn.Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, "Time is up.", warn.Text())

	res, err := s.Apply(ctx, url.Values{"q_input_0": {"cat"}, "q_input_1": {"dog"}, "q_input_2": {"bird"}})
	require.NoError(t, err)
	assert.True(t, res.Submitted, "the warning never blocks submission")
}

func TestSessionWithoutTimeoutHasNoTimer(t *testing.T) {
	s, err := NewSession(animals(), "p1", Options{})
	require.NoError(t, err)
	d := reparse(t, s)
	assert.Nil(t, d.ElementByID("timer_text"))
	assert.Nil(t, d.ElementByID("timeout_warning"))
}

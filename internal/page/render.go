// Package page renders understanding-check pages and keeps one live
// document per participant page load.
package page

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mind-engage/understanding-check/internal/check"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  .ok { color: #15803d; border-color: #15803d; }
  .error { color: #b91c1c; border-color: #b91c1c; }
  .hint { color: #b91c1c; font-style: italic; margin: .25rem 0 0; }
  .timeout-warning { color: #b91c1c; font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if gt .TimeoutSeconds 0}}
<p id="timer_text" class="timer">{{.TimerText}} <span id="timer_seconds">{{.TimeoutSeconds}}</span></p>
<p id="timeout_warning" class="timeout-warning" hidden>{{.TimeoutMessage}}</p>
{{- end}}
<form id="form" method="post" action="{{.Action}}">
{{- range .Questions}}
  <div class="question">
    <label for="id_q_input_{{.Index}}">{{.Text}}</label>
    {{- if .Options}}
    <select id="id_q_input_{{.Index}}" name="q_input_{{.Index}}">
      <option value="">---</option>
      {{- range .Options}}
      <option value="{{.}}">{{.}}</option>
      {{- end}}
    </select>
    {{- else}}
    <input type="text" id="id_q_input_{{.Index}}" name="q_input_{{.Index}}" value="">
    {{- end}}
    <input type="hidden" id="id_q_correct_{{.Index}}" value="{{.Correct}}">
    <input type="hidden" id="id_q_hint_{{.Index}}" value="{{.Hint}}">
  </div>
{{- end}}
  <input type="hidden" id="id_{{.CounterField}}" name="{{.CounterField}}" value="{{.WrongAttempts}}">
  <button type="submit">Next</button>
</form>
</body>
</html>
`))

type questionView struct {
	Index   int
	Text    string
	Options []string
	Correct string
	Hint    string
}

const (
	timerSecondsID   = "timer_seconds"
	timeoutWarningID = "timeout_warning"
)

type pageView struct {
	Title          string
	Action         string
	Questions      []questionView
	CounterField   string
	WrongAttempts  int
	TimeoutSeconds int
	TimeoutMessage string
	TimerText      string
}

// Render writes the initial page for c. The hidden fields carrying the
// correct answers and hints are not form controls with names, so they never
// travel back on submission.
func Render(c check.Check, action string) ([]byte, error) {
	c = c.WithDefaults()
	v := pageView{
		Title:        c.Title,
		Action:       action,
		Questions:    make([]questionView, len(c.Questions)),
		CounterField: c.WrongAttemptsField,

		TimeoutSeconds: c.TimeoutWarningSeconds,
		TimeoutMessage: c.TimeoutWarningMessage,
		TimerText:      c.TimerWarningText,
	}
	for i, q := range c.Questions {
		v.Questions[i] = questionView{Index: i, Text: q.Text, Options: q.Options, Correct: q.Correct, Hint: q.Hint}
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render check %s: %w", c.ID, err)
	}
	return buf.Bytes(), nil
}

package dom

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNoSubmitHandler = errors.New("dom: no submit handler installed")

type Form struct {
	*Element
}

// Values collects the form's successful controls the way a browser would
// encode them on submission.
func (f *Form) Values() url.Values {
	vals := url.Values{}
	for _, n := range findAll(f.node, isControl, nil) {
		name, ok := attr(n, "name")
		if !ok || name == "" {
			continue
		}
		if _, disabled := attr(n, "disabled"); disabled {
			continue
		}
		el := &Element{doc: f.doc, node: n}
		if n.DataAtom == atom.Input {
			typ, _ := attr(n, "type")
			switch strings.ToLower(typ) {
			case "submit", "button", "reset", "image", "file":
				continue
			case "checkbox", "radio":
				if _, checked := attr(n, "checked"); !checked {
					continue
				}
				if _, hasValue := attr(n, "value"); !hasValue {
					vals.Add(name, "on")
					continue
				}
			}
		}
		vals.Add(name, el.Value())
	}
	return vals
}

// Submit hands the form's values to the document's submit hook.
func (f *Form) Submit() error {
	if f.doc.onSubmit == nil {
		return ErrNoSubmitHandler
	}
	return f.doc.onSubmit(f.ID(), f.Values())
}

func isControl(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea:
		return true
	}
	return false
}

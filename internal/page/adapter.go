package page

import (
	"github.com/mind-engage/understanding-check/internal/dom"
	"github.com/mind-engage/understanding-check/internal/understanding"
)

// domPage lets the controller run against a parsed document.
type domPage struct {
	doc *dom.Document
}

var _ understanding.Document = domPage{}

func (p domPage) ElementByID(id string) understanding.Element {
	if el := p.doc.ElementByID(id); el != nil {
		return el
	}
	return nil
}

func (p domPage) LabelFor(id string) understanding.Element {
	if el := p.doc.LabelFor(id); el != nil {
		return el
	}
	return nil
}

func (p domPage) container(inputID string) *dom.Element {
	el := p.doc.ElementByID(inputID)
	if el == nil {
		return nil
	}
	return el.Parent()
}

func (p domPage) HasHint(inputID string) bool {
	c := p.container(inputID)
	return c != nil && len(c.FindByClass(understanding.ClassHint)) > 0
}

func (p domPage) InsertHint(inputID, text string) {
	if c := p.container(inputID); c != nil {
		c.AppendParagraph(understanding.ClassHint, text)
	}
}

func (p domPage) RemoveHints(inputID string) {
	c := p.container(inputID)
	if c == nil {
		return
	}
	for _, h := range c.FindByClass(understanding.ClassHint) {
		h.Remove()
	}
}

func (p domPage) OnFocus(inputID string, fn func()) {
	p.doc.OnFocus(p.doc.ElementByID(inputID), func(*dom.Element) { fn() })
}

func (p domPage) SubmitForm(formID string) error {
	f := p.doc.Form(formID)
	if f == nil {
		return understanding.ErrMissingElement
	}
	return f.Submit()
}

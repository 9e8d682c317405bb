package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on one element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

func (e *Element) Tag() string { return e.node.Data }

func (e *Element) Attr(key string) (string, bool) { return attr(e.node, key) }

func (e *Element) RemoveAttr(key string) { removeAttr(e.node, key) }

// Text returns the concatenated text of the element's descendants.
func (e *Element) Text() string { return textContent(e.node) }

// Value returns the current value of a form control: the value attribute
// of an <input>, the selected option of a <select> and the text of a
// <textarea>. Other elements report their value attribute.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Select:
		opts := findAll(e.node, isOption, nil)
		for _, o := range opts {
			if _, ok := attr(o, "selected"); ok {
				return optionValue(o)
			}
		}
		if len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	case atom.Textarea:
		return textContent(e.node)
	default:
		v, _ := attr(e.node, "value")
		return v
	}
}

// SetValue changes the current value of a form control.
func (e *Element) SetValue(v string) {
	switch e.node.DataAtom {
	case atom.Select:
		matched := false
		for _, o := range findAll(e.node, isOption, nil) {
			if !matched && optionValue(o) == v {
				setAttr(o, "selected", "")
				matched = true
				continue
			}
			removeAttr(o, "selected")
		}
	case atom.Textarea:
		e.SetText(v)
	default:
		setAttr(e.node, "value", v)
	}
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *Element) Classes() []string {
	v, _ := attr(e.node, "class")
	return strings.Fields(v)
}

func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	setAttr(e.node, "class", strings.Join(append(e.Classes(), class), " "))
}

func (e *Element) RemoveClass(class string) {
	cur := e.Classes()
	out := cur[:0]
	for _, c := range cur {
		if c != class {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		removeAttr(e.node, "class")
		return
	}
	setAttr(e.node, "class", strings.Join(out, " "))
}

// Parent returns the enclosing element, or nil at the document root.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// FindByClass returns all descendants carrying class, in document order.
func (e *Element) FindByClass(class string) []*Element {
	nodes := findAll(e.node, func(n *html.Node) bool {
		return (&Element{node: n}).HasClass(class)
	}, nil)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out
}

// AppendParagraph appends <p class="class">text</p> as the last child.
func (e *Element) AppendParagraph(class, text string) *Element {
	p := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.P.String(),
		DataAtom: atom.P,
	}
	if class != "" {
		p.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	e.node.AppendChild(p)
	return e.doc.wrap(p)
}

// Remove detaches the element from the document.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
	delete(e.doc.focus, e.node)
}

func isOption(n *html.Node) bool { return n.DataAtom == atom.Option }

func optionValue(o *html.Node) string {
	if v, ok := attr(o, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(o))
}

// Package dom is a small mutable HTML document. A page is parsed once, its
// nodes are restyled and edited in place, and it is rendered back to HTML.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SubmitFunc receives the successful controls of a submitted form.
type SubmitFunc func(formID string, values url.Values) error

type Document struct {
	root     *html.Node
	focus    map[*html.Node][]func(*Element)
	onSubmit SubmitFunc
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root, focus: map[*html.Node][]func(*Element){}}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) HTML() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

// ElementByID returns the first element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	n := findFirst(d.root, func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	})
	return d.wrap(n)
}

// LabelFor returns the <label for="id"> element, or nil.
func (d *Document) LabelFor(id string) *Element {
	n := findFirst(d.root, func(n *html.Node) bool {
		if n.DataAtom != atom.Label {
			return false
		}
		v, ok := attr(n, "for")
		return ok && v == id
	})
	return d.wrap(n)
}

// Form returns the <form> with the given id, or nil.
func (d *Document) Form(id string) *Form {
	el := d.ElementByID(id)
	if el == nil || el.node.DataAtom != atom.Form {
		return nil
	}
	return &Form{Element: el}
}

// OnSubmit installs the hook that receives form submissions.
func (d *Document) OnSubmit(fn SubmitFunc) { d.onSubmit = fn }

// OnFocus binds fn to focus events on el. Handlers run in bind order.
func (d *Document) OnFocus(el *Element, fn func(*Element)) {
	if el == nil || fn == nil {
		return
	}
	d.focus[el.node] = append(d.focus[el.node], fn)
}

// Focus dispatches a focus event to the element with the given id.
// It reports whether such an element exists.
func (d *Document) Focus(id string) bool {
	el := d.ElementByID(id)
	if el == nil {
		return false
	}
	for _, fn := range d.focus[el.node] {
		fn(el)
	}
	return true
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool, out []*html.Node) []*html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		out = findAll(c, match, out)
	}
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

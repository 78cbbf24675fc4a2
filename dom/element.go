package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Element is a single element node within a Document.
type Element struct {
	Node *html.Node
	doc  *Document
}

// Option is one entry of a <select>.
type Option struct {
	Index    int
	Value    string
	Text     string
	Disabled bool
}

// Rect is an element's bounding box in CSS pixels, relative to the top of
// the document.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (e *Element) Document() *Document { return e.doc }

func (e *Element) Tag() string { return strings.ToLower(e.Node.Data) }

func (e *Element) Attr(name string) string { return attr(e.Node, name) }

func (e *Element) HasAttr(name string) bool { return hasAttr(e.Node, name) }

func (e *Element) ID() string { return e.Attr("id") }

func (e *Element) Name() string { return e.Attr("name") }

// Type returns the lower-cased input type; inputs without one are "text".
func (e *Element) Type() string {
	t := strings.ToLower(strings.TrimSpace(e.Attr("type")))
	if t == "" && e.Tag() == "input" {
		return "text"
	}
	return t
}

// XPath returns a unique path for the element, anchored on the nearest id.
func (e *Element) XPath() string { return GenerateUniqueXPath(e.Node) }

// Text returns the element's rendered text with whitespace collapsed.
func (e *Element) Text() string { return collapse(textOf(e.Node, nil)) }

// TextExcluding is Text with the subtree rooted at skip left out.
func (e *Element) TextExcluding(skip *Element) string {
	if skip == nil {
		return e.Text()
	}
	return collapse(textOf(e.Node, skip.Node))
}

// Value returns the control's current value, preferring live state.
func (e *Element) Value() string {
	if e.HasAttr(AttrValue) {
		return e.Attr(AttrValue)
	}
	switch e.Tag() {
	case "textarea":
		return textOf(e.Node, nil)
	case "select":
		opts := e.Options()
		idx := e.SelectedIndex()
		if idx >= 0 && idx < len(opts) {
			return opts[idx].Value
		}
		return ""
	}
	return e.Attr("value")
}

// Checked reports whether a checkbox or radio is checked.
func (e *Element) Checked() bool {
	if e.HasAttr(AttrChecked) {
		return e.Attr(AttrChecked) == "true"
	}
	if strings.EqualFold(e.Attr("aria-checked"), "true") {
		return true
	}
	return e.HasAttr("checked")
}

func (e *Element) Disabled() bool {
	if e.HasAttr("disabled") || strings.EqualFold(e.Attr("aria-disabled"), "true") {
		return true
	}
	for p := e.Node.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if strings.EqualFold(p.Data, "fieldset") && hasAttr(p, "disabled") {
			return true
		}
	}
	return false
}

func (e *Element) ReadOnly() bool { return e.HasAttr("readonly") }

// MaxLength returns the maxlength attribute, or 0 when absent or invalid.
func (e *Element) MaxLength() int {
	n, err := strconv.Atoi(strings.TrimSpace(e.Attr("maxlength")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Options lists the <option> children of a select, optgroups flattened.
func (e *Element) Options() []Option {
	var opts []Option
	for _, n := range queryAll(e.Node, ".//option") {
		value := attr(n, "value")
		if !hasAttr(n, "value") {
			value = collapse(htmlquery.InnerText(n))
		}
		disabled := hasAttr(n, "disabled")
		if p := n.Parent; p != nil && strings.EqualFold(p.Data, "optgroup") && hasAttr(p, "disabled") {
			disabled = true
		}
		opts = append(opts, Option{
			Index:    len(opts),
			Value:    value,
			Text:     collapse(htmlquery.InnerText(n)),
			Disabled: disabled,
		})
	}
	return opts
}

// SelectedIndex returns the selected option index of a select, -1 if it has
// no options.
func (e *Element) SelectedIndex() int {
	if s := e.Attr(AttrSelected); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	options := queryAll(e.Node, ".//option")
	if len(options) == 0 {
		return -1
	}
	for i, n := range options {
		if hasAttr(n, "selected") {
			return i
		}
	}
	return 0
}

func (e *Element) Parent() *Element {
	p := e.Node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other.Node; n != nil; n = n.Parent {
		if n == e.Node {
			return true
		}
	}
	return false
}

// Find evaluates an XPath expression relative to the element.
func (e *Element) Find(expr string) []*Element {
	return e.doc.wrapAll(queryAll(e.Node, expr))
}

// Select evaluates a CSS selector against the element's descendants.
func (e *Element) Select(css string) []*Element {
	sel := goquery.NewDocumentFromNode(e.Node).Find(css)
	return e.doc.wrapAll(sel.Nodes)
}

// Descendants returns every element below e in document order.
func (e *Element) Descendants() []*Element {
	var out []*Element
	walk(e.Node, func(n *html.Node) bool {
		if n != e.Node && n.Type == html.ElementNode {
			out = append(out, e.doc.wrap(n))
		}
		return true
	})
	return out
}

// Rect returns the annotated bounding box, if known.
func (e *Element) Rect() (Rect, bool) {
	nums, ok := parseFloats(e.Attr(AttrRect), 4)
	if !ok {
		return Rect{}, false
	}
	return Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, true
}

// Visible applies the live visibility annotation when present, otherwise
// the static rules: no hidden attribute, no inline display:none or
// visibility:hidden on the element or any ancestor.
func (e *Element) Visible() bool {
	if v := e.Attr(AttrVisible); v != "" {
		return v == "1" || v == "true"
	}
	if e.Tag() == "input" && e.Type() == "hidden" {
		return false
	}
	for n := e.Node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if hasAttr(n, "hidden") {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// IsControl reports whether the element is an input, select or textarea.
func (e *Element) IsControl() bool {
	return isControl(e.Node)
}

// ContainsControl reports whether any descendant is a form control.
func (e *Element) ContainsControl() bool {
	found := false
	walk(e.Node, func(n *html.Node) bool {
		if n != e.Node && isControl(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isControl(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch strings.ToLower(n.Data) {
	case "input", "select", "textarea":
		return true
	}
	return false
}

func textOf(n *html.Node, skip *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n == skip {
			return
		}
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			b.WriteByte(' ')
		}
	}
	rec(n)
	return b.String()
}

func isBlock(tag string) bool {
	switch strings.ToLower(tag) {
	case "div", "p", "li", "ul", "ol", "br", "tr", "td", "th", "option", "label",
		"legend", "h1", "h2", "h3", "h4", "h5", "h6", "section", "fieldset":
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

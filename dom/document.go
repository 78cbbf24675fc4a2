package dom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Live state annotations written onto the snapshot by the page driver.
// A static document carries none of them and falls back to plain HTML
// attributes.
const (
	AttrValue    = "data-jobfill-value"
	AttrChecked  = "data-jobfill-checked"
	AttrSelected = "data-jobfill-selected"
	AttrVisible  = "data-jobfill-visible"
	AttrRect     = "data-jobfill-rect"
	AttrViewport = "data-jobfill-viewport"
)

// ErrNotFound is returned when an XPath no longer resolves to an element.
var ErrNotFound = errors.New("element not found")

// Document is a parsed snapshot of a page.
type Document struct {
	root *html.Node
	url  string
}

// Viewport describes the browser window at snapshot time.
type Viewport struct {
	Width          float64
	Height         float64
	DocumentHeight float64
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return NewDocument(root, url), nil
}

// ParseString is Parse for an in-memory string.
func ParseString(src, url string) (*Document, error) {
	return Parse(strings.NewReader(src), url)
}

func NewDocument(root *html.Node, url string) *Document {
	return &Document{root: root, url: url}
}

func (d *Document) Root() *html.Node { return d.root }

func (d *Document) URL() string { return d.url }

// Find evaluates an XPath expression against the whole document. An invalid
// expression yields no elements.
func (d *Document) Find(expr string) []*Element {
	return d.wrapAll(queryAll(d.root, expr))
}

// FindOne returns the first element matching expr, or nil.
func (d *Document) FindOne(expr string) *Element {
	n, err := htmlquery.Query(d.root, expr)
	if err != nil || n == nil {
		return nil
	}
	return d.wrap(n)
}

// Lookup resolves an element by the XPath previously produced by Element.XPath.
func (d *Document) Lookup(xpath string) (*Element, error) {
	el := d.FindOne(xpath)
	if el == nil {
		return nil, fmt.Errorf("%s: %w", xpath, ErrNotFound)
	}
	return el, nil
}

// Select evaluates a CSS selector against the whole document.
func (d *Document) Select(css string) []*Element {
	doc := goquery.NewDocumentFromNode(d.root)
	return d.wrapAll(doc.Find(css).Nodes)
}

// ElementByID returns the element carrying the given id attribute, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.wrap(found)
}

// Viewport returns the annotated viewport, if the snapshot carries one.
func (d *Document) Viewport() (Viewport, bool) {
	htmlEl := d.FindOne("//html")
	if htmlEl == nil {
		return Viewport{}, false
	}
	nums, ok := parseFloats(htmlEl.Attr(AttrViewport), 3)
	if !ok {
		return Viewport{}, false
	}
	return Viewport{Width: nums[0], Height: nums[1], DocumentHeight: nums[2]}, true
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	if el := d.FindOne("//title"); el != nil {
		return el.Text()
	}
	return ""
}

// Wrap returns the Element for a node of this document.
func (d *Document) Wrap(n *html.Node) *Element { return d.wrap(n) }

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{Node: n, doc: d}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, d.wrap(n))
		}
	}
	return out
}

func queryAll(top *html.Node, expr string) []*html.Node {
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, name) {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func parseFloats(s string, want int) ([]float64, bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, false
	}
	out := make([]float64, want)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

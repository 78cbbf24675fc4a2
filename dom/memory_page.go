package dom

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// RecordedEvent is an event MemoryPage received, with its target.
type RecordedEvent struct {
	XPath string
	Event Event
}

// MemoryPage is a Page over an in-memory tree. Writes land as live state
// annotations, events are recorded instead of run. It backs static form
// analysis and engine tests.
type MemoryPage struct {
	mu     sync.Mutex
	url    string
	doc    *Document
	events []RecordedEvent
	writes int

	// OnEvent, if set, runs after every dispatched event. Tests use it to
	// mimic page scripts, e.g. rendering a suggestion list on input.
	OnEvent func(p *MemoryPage, xpath string, ev Event)
}

var _ Page = (*MemoryPage)(nil)

func NewMemoryPage(url, src string) (*MemoryPage, error) {
	doc, err := ParseString(src, url)
	if err != nil {
		return nil, err
	}
	return &MemoryPage{url: url, doc: doc}, nil
}

func (p *MemoryPage) URL() string { return p.url }

// Snapshot returns the live document; MemoryPage has no separate copy.
func (p *MemoryPage) Snapshot(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func (p *MemoryPage) SetValue(ctx context.Context, xpath, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	el, err := p.doc.Lookup(xpath)
	if err != nil {
		return err
	}
	if el.Tag() == "select" {
		idx := -1
		for _, o := range el.Options() {
			if o.Value == value {
				idx = o.Index
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("select %s has no option %q", xpath, value)
		}
		for i, n := range queryAll(el.Node, ".//option") {
			if i == idx {
				setAttr(n, "selected", "")
			} else {
				removeAttr(n, "selected")
			}
		}
		setAttr(el.Node, AttrSelected, strconv.Itoa(idx))
	}
	setAttr(el.Node, AttrValue, value)
	p.writes++
	return nil
}

func (p *MemoryPage) SetChecked(ctx context.Context, xpath string, checked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	el, err := p.doc.Lookup(xpath)
	if err != nil {
		return err
	}
	if checked && el.Type() == "radio" && el.Name() != "" {
		for _, other := range p.doc.Find("//input[@type='radio']") {
			if other.Name() == el.Name() && other.Node != el.Node {
				setAttr(other.Node, AttrChecked, "false")
			}
		}
	}
	setAttr(el.Node, AttrChecked, strconv.FormatBool(checked))
	p.writes++
	return nil
}

func (p *MemoryPage) Focus(ctx context.Context, xpath string) error {
	return p.record(ctx, xpath, Focus())
}

func (p *MemoryPage) ScrollIntoView(ctx context.Context, xpath string) error {
	return p.record(ctx, xpath, Event{Type: "scrollintoview"})
}

func (p *MemoryPage) Dispatch(ctx context.Context, xpath string, ev Event) error {
	if err := p.record(ctx, xpath, ev); err != nil {
		return err
	}
	if hook := p.OnEvent; hook != nil {
		hook(p, xpath, ev)
	}
	return nil
}

func (p *MemoryPage) record(ctx context.Context, xpath string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.doc.Lookup(xpath); err != nil {
		return err
	}
	p.events = append(p.events, RecordedEvent{XPath: xpath, Event: ev})
	return nil
}

// AppendHTML parses fragment in the context of the element at parentXPath
// and appends the result to it.
func (p *MemoryPage) AppendHTML(parentXPath, fragment string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	parent, err := p.doc.Lookup(parentXPath)
	if err != nil {
		return err
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent.Node)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.Node.AppendChild(n)
	}
	return nil
}

// Document exposes the live tree for assertions.
func (p *MemoryPage) Document() *Document { return p.doc }

func (p *MemoryPage) Events() []RecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventTypes lists the event types dispatched to xpath, in order.
func (p *MemoryPage) EventTypes(xpath string) []string {
	var out []string
	for _, e := range p.Events() {
		if e.XPath == xpath {
			out = append(out, e.Event.Type)
		}
	}
	return out
}

// Writes counts successful SetValue and SetChecked calls.
func (p *MemoryPage) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

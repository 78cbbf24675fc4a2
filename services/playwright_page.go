package services

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"jobfill/dom"
)

// annotateScript copies live state the HTML serialisation loses onto
// data-jobfill-* attributes. Rects are in document coordinates.
const annotateScript = `() => {
	const sel = 'input, select, textarea, option, li, [role="option"], [role="listbox"], ' +
		'[class*="option"], [class*="item"], [class*="autocomplete"], [class*="suggestion"], ' +
		'[class*="dropdown"], [class*="listbox"], [class*="menu"], .pac-container, .pac-item';
	const sx = window.scrollX, sy = window.scrollY;
	for (const el of document.querySelectorAll(sel)) {
		const style = window.getComputedStyle(el);
		const r = el.getBoundingClientRect();
		const rendered = el.offsetParent !== null || style.position === 'fixed';
		const visible = rendered && style.display !== 'none' && style.visibility !== 'hidden';
		el.setAttribute('data-jobfill-visible', String(visible));
		el.setAttribute('data-jobfill-rect', [r.left + sx, r.top + sy, r.width, r.height].join(','));
		if (el.matches('input, textarea, select')) {
			el.setAttribute('data-jobfill-value', el.value == null ? '' : String(el.value));
		}
		if (el.matches('input[type="checkbox"], input[type="radio"]')) {
			el.setAttribute('data-jobfill-checked', String(el.checked));
		}
		if (el.tagName === 'SELECT') {
			el.setAttribute('data-jobfill-selected', String(el.selectedIndex));
		}
	}
	const root = document.documentElement;
	root.setAttribute('data-jobfill-viewport',
		[window.innerWidth, window.innerHeight, root.scrollHeight].join(','));
}`

const lookupJS = `const el = document.evaluate(a.xpath, document, null,
		XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) return false;`

var (
	setValueScript = `(a) => {
	` + lookupJS + `
	const proto = el.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype
		: el.tagName === 'SELECT' ? HTMLSelectElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) { desc.set.call(el, a.value); } else { el.value = a.value; }
	return true;
}`

	setCheckedScript = `(a) => {
	` + lookupJS + `
	const desc = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'checked');
	desc.set.call(el, a.checked);
	return true;
}`

	focusScript = `(a) => {
	` + lookupJS + `
	el.focus();
	return true;
}`

	scrollScript = `(a) => {
	` + lookupJS + `
	el.scrollIntoView({behavior: 'smooth', block: 'center'});
	return true;
}`

	dispatchScript = `(a) => {
	` + lookupJS + `
	const init = {bubbles: true, cancelable: true};
	let ev;
	if (a.kind === 1) {
		ev = new KeyboardEvent(a.type, Object.assign(init, {key: a.key, code: a.key, keyCode: a.keyCode, which: a.keyCode}));
	} else if (a.kind === 2) {
		const r = el.getBoundingClientRect();
		ev = new MouseEvent(a.type, Object.assign(init, {view: window, clientX: r.left + a.x, clientY: r.top + a.y}));
	} else {
		ev = new Event(a.type, init);
	}
	el.dispatchEvent(ev);
	return true;
}`

	expandScript = `() => {
	document.querySelectorAll('*').forEach(el => {
		const computed = window.getComputedStyle(el);
		if (computed.overflow === 'hidden' || computed.overflow === 'auto') {
			el.style.overflow = 'visible';
		}
		if (computed.maxHeight && computed.maxHeight !== 'none') {
			el.style.maxHeight = 'none';
		}
	});
	window.scrollTo(0, 0);
}`
)

// PlaywrightPage is a dom.Page over a live playwright page. Elements are
// addressed with document.evaluate so the XPaths the engine computes on
// snapshots resolve against the live DOM.
type PlaywrightPage struct {
	page playwright.Page
	bctx playwright.BrowserContext
}

var _ dom.Page = (*PlaywrightPage)(nil)

func (p *PlaywrightPage) URL() string { return p.page.URL() }

func (p *PlaywrightPage) Snapshot(ctx context.Context) (*dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := p.page.Evaluate(annotateScript); err != nil {
		return nil, fmt.Errorf("failed to annotate page: %w", err)
	}
	content, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return dom.ParseString(content, p.page.URL())
}

func (p *PlaywrightPage) SetValue(ctx context.Context, xpath, value string) error {
	return p.run(ctx, setValueScript, map[string]any{"xpath": xpath, "value": value})
}

func (p *PlaywrightPage) SetChecked(ctx context.Context, xpath string, checked bool) error {
	return p.run(ctx, setCheckedScript, map[string]any{"xpath": xpath, "checked": checked})
}

func (p *PlaywrightPage) Focus(ctx context.Context, xpath string) error {
	return p.run(ctx, focusScript, map[string]any{"xpath": xpath})
}

func (p *PlaywrightPage) ScrollIntoView(ctx context.Context, xpath string) error {
	return p.run(ctx, scrollScript, map[string]any{"xpath": xpath})
}

func (p *PlaywrightPage) Dispatch(ctx context.Context, xpath string, ev dom.Event) error {
	return p.run(ctx, dispatchScript, eventArg(xpath, ev))
}

// Screenshot expands scroll containers and captures the full page.
func (p *PlaywrightPage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := p.page.Evaluate(expandScript); err != nil {
		return nil, fmt.Errorf("failed to expand page: %w", err)
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
}

func (p *PlaywrightPage) Close() error {
	if p.bctx != nil {
		return p.bctx.Close()
	}
	return p.page.Close()
}

func (p *PlaywrightPage) run(ctx context.Context, script string, arg map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := p.page.Evaluate(script, arg)
	if err != nil {
		return fmt.Errorf("page script failed: %w", err)
	}
	if ok, _ := res.(bool); !ok {
		return fmt.Errorf("%w: %s", dom.ErrNotFound, arg["xpath"])
	}
	return nil
}

func eventArg(xpath string, ev dom.Event) map[string]any {
	return map[string]any{
		"xpath":   xpath,
		"type":    ev.Type,
		"kind":    int(ev.Kind()),
		"key":     ev.Key,
		"keyCode": ev.KeyCode(),
		"x":       ev.X,
		"y":       ev.Y,
	}
}

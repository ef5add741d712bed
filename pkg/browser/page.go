package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const defaultPollInterval = 500 * time.Millisecond

// Page is the current document of a session plus the form values filled in
// so far. A page is used by one goroutine at a time.
type Page struct {
	b *Browser

	url        *url.URL
	reloadable bool
	doc        *goquery.Document
	raw        []byte
	json       bool
	filled     url.Values
	closed     bool
}

// URL returns the address of the current document.
func (p *Page) URL() string {
	if p.url == nil {
		return ""
	}
	return p.url.String()
}

// Title returns the <title> of the current HTML document.
func (p *Page) Title() string {
	if p.doc == nil {
		return ""
	}
	return strings.Join(strings.Fields(p.doc.Find("title").First().Text()), " ")
}

func (p *Page) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if p.url != nil {
		u = p.url.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL %q", ref)
	}
	return u, nil
}

// Navigate loads rawURL, resolved against the current document. Any filled
// values are discarded.
func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	if p.closed {
		return ErrClosed
	}
	u, err := p.resolve(rawURL)
	if err != nil {
		return err
	}
	res, err := p.b.send(ctx, &request{Method: http.MethodGet, URL: u.String()})
	if err != nil {
		return fmt.Errorf("navigate %s: %w", u, err)
	}
	if !res.ok() {
		return fmt.Errorf("navigate %s: status %d", u, res.StatusCode)
	}
	return p.load(res, true)
}

func (p *Page) load(res *response, reloadable bool) error {
	u, err := url.Parse(res.URL)
	if err != nil {
		return err
	}
	p.url = u
	p.reloadable = reloadable
	p.raw = res.Body
	p.json = res.isJSON()
	p.filled = url.Values{}
	p.doc = nil
	if p.json {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", res.URL, err)
	}
	p.doc = doc
	return nil
}

func (p *Page) find(selector string) (*goquery.Selection, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.doc == nil {
		return nil, fmt.Errorf("%w: %s (no document)", ErrNotFound, selector)
	}
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return sel.First(), nil
}

// Has reports whether selector matches anything in the current document.
func (p *Page) Has(selector string) bool {
	_, err := p.find(selector)
	return err == nil
}

// Text returns the whitespace-trimmed text of the first match.
func (p *Page) Text(selector string) (string, bool) {
	sel, err := p.find(selector)
	if err != nil {
		return "", false
	}
	text := strings.Join(strings.Fields(sel.Text()), " ")
	return text, text != ""
}

// IsJSON reports whether the current document is a JSON payload.
func (p *Page) IsJSON() bool { return p.json }

// JSON looks path up in the current JSON document with gjson syntax.
func (p *Page) JSON(path string) (gjson.Result, bool) {
	if !p.json {
		return gjson.Result{}, false
	}
	r := gjson.GetBytes(p.raw, path)
	return r, r.Exists()
}

// Fill sets the value of the form control matched by selector. For <select>
// the option is matched by value or label, exactly first and then by
// substring in either direction.
func (p *Page) Fill(selector, value string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	name, ok := sel.Attr("name")
	if !ok || name == "" {
		return fmt.Errorf("%s: control has no name", selector)
	}
	switch goquery.NodeName(sel) {
	case "select":
		opt, err := matchOption(sel, value)
		if err != nil {
			return fmt.Errorf("%s: %w", selector, err)
		}
		p.filled.Set(name, opt)
	case "input", "textarea":
		p.filled.Set(name, value)
	default:
		return fmt.Errorf("%s: <%s> is not a form control", selector, goquery.NodeName(sel))
	}
	return nil
}

func matchOption(sel *goquery.Selection, value string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	type option struct{ value, label string }
	var opts []option
	sel.Find("option").Each(func(_ int, o *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(o.Text()))
		v, ok := o.Attr("value")
		if !ok {
			v = o.Text()
		}
		opts = append(opts, option{value: v, label: label})
	})
	for _, o := range opts {
		if strings.ToLower(o.value) == needle || o.label == needle {
			return o.value, nil
		}
	}
	for _, o := range opts {
		v := strings.ToLower(o.value)
		if v == "" {
			continue
		}
		if strings.Contains(v, needle) || strings.Contains(needle, v) || strings.Contains(o.label, needle) {
			return o.value, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNoMatchOption, value)
}

// Check ticks the checkbox or radio matched by selector. A <label> is
// followed to its control.
func (p *Page) Check(selector string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	if goquery.NodeName(sel) == "label" {
		if id, ok := sel.Attr("for"); ok && id != "" {
			sel = p.doc.Find("#" + id).First()
		} else {
			sel = sel.Find("input").First()
		}
		if sel.Length() == 0 {
			return fmt.Errorf("%w: control for label %s", ErrNotFound, selector)
		}
	}
	name, ok := sel.Attr("name")
	if !ok || name == "" {
		return fmt.Errorf("%s: control has no name", selector)
	}
	value, ok := sel.Attr("value")
	if !ok {
		value = "on"
	}
	typ, _ := sel.Attr("type")
	if strings.EqualFold(typ, "checkbox") {
		for _, v := range p.filled[name] {
			if v == value {
				return nil
			}
		}
		p.filled.Add(name, value)
		return nil
	}
	p.filled.Set(name, value)
	return nil
}

// Click follows a link or submits the form owning a submit control.
func (p *Page) Click(ctx context.Context, selector string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	switch goquery.NodeName(sel) {
	case "a":
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return fmt.Errorf("%w: %s", ErrNotClickable, selector)
		}
		return p.Navigate(ctx, href)
	case "button", "input", "form":
		return p.submit(ctx, sel)
	}
	return fmt.Errorf("%w: %s", ErrNotClickable, selector)
}

func (p *Page) submit(ctx context.Context, control *goquery.Selection) error {
	form := control
	if goquery.NodeName(control) != "form" {
		form = control.Closest("form")
	}
	if form.Length() == 0 {
		return fmt.Errorf("%w: no form owns the control", ErrNotFound)
	}

	values := formDefaults(form)
	for k, vs := range p.filled {
		values[k] = vs
	}
	if goquery.NodeName(control) != "form" {
		if name, ok := control.Attr("name"); ok && name != "" {
			v, _ := control.Attr("value")
			values.Set(name, v)
		}
	}

	target, err := p.resolve(form.AttrOr("action", ""))
	if err != nil {
		return err
	}

	method := strings.ToUpper(form.AttrOr("method", http.MethodGet))
	req := &request{Method: method, URL: target.String()}
	if method == http.MethodPost {
		req.Body = values.Encode()
		req.Headers = []header{
			{Name: "Content-Type", Value: "application/x-www-form-urlencoded; charset=UTF-8"},
			{Name: "Origin", Value: p.url.Scheme + "://" + p.url.Host},
			{Name: "Referer", Value: p.URL()},
		}
	} else {
		req.Method = http.MethodGet
		target.RawQuery = values.Encode()
		req.URL = target.String()
	}

	res, err := p.b.send(ctx, req)
	if err != nil {
		return fmt.Errorf("submit %s: %w", target, err)
	}
	if !res.ok() {
		return fmt.Errorf("submit %s: status %d", target, res.StatusCode)
	}
	// A POST that was answered through a redirect landed on a GET page.
	return p.load(res, req.Method == http.MethodGet || res.URL != target.String())
}

// formDefaults collects the values a browser would submit without user input.
func formDefaults(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		switch goquery.NodeName(s) {
		case "select":
			opt := s.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = s.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Set(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
			}
		case "textarea":
			values.Set(name, s.Text())
		default:
			switch strings.ToLower(s.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); checked {
					values.Add(name, s.AttrOr("value", "on"))
				}
			default:
				values.Set(name, s.AttrOr("value", ""))
			}
		}
	})
	return values
}

// WaitFor waits until one of selectors matches and returns it. Pages reached
// through GET are reloaded every poll interval, which is how asynchronous
// calculators publish their results. Other pages are checked once.
func (p *Page) WaitFor(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		for _, s := range selectors {
			if p.Has(s) {
				return s, nil
			}
		}
		if p.closed {
			return "", ErrClosed
		}
		if !p.reloadable || p.url == nil {
			return "", fmt.Errorf("%w: none of %s", ErrNotFound, strings.Join(selectors, ", "))
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %s: %w", strings.Join(selectors, ", "), ctx.Err())
		case <-time.After(defaultPollInterval):
		}
		res, err := p.b.send(ctx, &request{Method: http.MethodGet, URL: p.URL()})
		if err != nil {
			return "", fmt.Errorf("waiting for %s: %w", strings.Join(selectors, ", "), err)
		}
		if !res.ok() {
			return "", fmt.Errorf("waiting for %s: status %d", strings.Join(selectors, ", "), res.StatusCode)
		}
		filled := p.filled
		if err := p.load(res, true); err != nil {
			return "", err
		}
		p.filled = filled
	}
}

// HTML returns the current document for diagnostics.
func (p *Page) HTML() ([]byte, error) {
	if p.doc == nil {
		return p.raw, nil
	}
	s, err := p.doc.Html()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Close releases the page. The session stays open.
func (p *Page) Close() {
	p.closed = true
	p.doc = nil
	p.raw = nil
	p.filled = nil
}

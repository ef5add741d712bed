package browser

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

type header struct {
	Name  string
	Value string
}

type request struct {
	URL     string
	Method  string
	Body    string
	Headers []header
}

type response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (b *Browser) send(ctx context.Context, r *request) (*response, error) {
	ctx, done := b.bind(ctx)
	defer done()

	var body interface{}
	if r.Body != "" {
		body = strings.NewReader(r.Body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	if err := b.checkAllowed(req.URL); err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-transform")

	for _, h := range r.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if b.Closed() {
			return nil, ErrClosed
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (r *response) isJSON() bool {
	return strings.Contains(r.ContentType, "json")
}

func (r *response) ok() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusBadRequest
}

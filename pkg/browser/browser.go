package browser

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/weppos/publicsuffix-go/publicsuffix"
	xpublicsuffix "golang.org/x/net/publicsuffix"
)

const (
	USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrClosed        = errors.New("browser session closed")
	ErrNotFound      = errors.New("element not found")
	ErrOffSite       = errors.New("navigation outside allowed domains")
	ErrNotClickable  = errors.New("element is not clickable")
	ErrNoMatchOption = errors.New("no matching option")
)

// Options configures a browser session.
type Options struct {
	UserAgent string
	Proxy     string
	RetryMax  int
	// AllowedDomains restricts navigation to these registrable domains.
	// Empty allows everything.
	AllowedDomains []string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Browser is one automated session: a cookie jar and retrying client whose
// every request is bound to the session lifetime. Closing the browser aborts
// all in-flight page operations.
type Browser struct {
	client    *retryablehttp.Client
	userAgent string
	allowed   map[string]bool

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Launch starts a new session.
func Launch(opts Options) (*Browser, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: xpublicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 2
	if opts.RetryMax > 0 {
		client.RetryMax = opts.RetryMax
	}
	client.HTTPClient.Jar = jar

	switch {
	case opts.Transport != nil:
		client.HTTPClient.Transport = opts.Transport
	case opts.Proxy != "":
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		client.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	b := &Browser{
		client:    client,
		userAgent: opts.UserAgent,
	}
	if b.userAgent == "" {
		b.userAgent = USER_AGENT
	}
	if len(opts.AllowedDomains) > 0 {
		b.allowed = make(map[string]bool, len(opts.AllowedDomains))
		for _, d := range opts.AllowedDomains {
			b.allowed[RegistrableDomain(d)] = true
		}
	}
	client.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return b.checkAllowed(req.URL)
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	return b, nil
}

// NewPage opens a blank page in the session.
func (b *Browser) NewPage() (*Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return &Page{b: b, filled: url.Values{}}, nil
}

// Closed reports whether Close has been called.
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close ends the session. Further calls are no-ops.
func (b *Browser) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.client.HTTPClient.CloseIdleConnections()
	return nil
}

// bind derives a context that is cancelled when either ctx or the session ends.
func (b *Browser) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (b *Browser) checkAllowed(u *url.URL) error {
	if len(b.allowed) == 0 {
		return nil
	}
	if !b.allowed[RegistrableDomain(u.Hostname())] {
		return fmt.Errorf("%w: %s", ErrOffSite, u.Host)
	}
	return nil
}

// RegistrableDomain returns the eTLD+1 of host, or host itself for IPs and
// names the public suffix list does not know.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	d, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return d
}

package htmlform

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SessionConfig controls the HTTP client behind a Session.
type SessionConfig struct {
	Timeout      time.Duration
	RateLimit    int // requests per second, 0 disables limiting
	MaxRedirects int
	UserAgent    string
	Headers      map[string]string
	Insecure     bool
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Timeout:      10 * time.Second,
		MaxRedirects: 10,
		UserAgent:    defaultUserAgent,
	}
}

// Session carries cookies and the current page URL between requests, so
// relative form actions resolve the way they would in a browser.
type Session struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     SessionConfig
	opts    []Option

	mu      sync.Mutex
	baseURL *url.URL
}

func NewSession(cfg SessionConfig, opts ...Option) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Insecure,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	client := &http.Client{
		Jar:       jar,
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	s := &Session{
		client: client,
		cfg:    cfg,
		opts:   opts,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	return s, nil
}

// BaseURL is the URL of the last page fetched or submitted to.
func (s *Session) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseURL == nil {
		return ""
	}
	return s.baseURL.String()
}

func (s *Session) SetBaseURL(raw string) error {
	u, err := url.Parse(normalizeURL(raw))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	s.mu.Lock()
	s.baseURL = u
	s.mu.Unlock()
	return nil
}

func normalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "http://" + raw
	}
	return raw
}

// resolve turns a form action into an absolute URL. An empty action points
// at the current page.
func (s *Session) resolve(action string) (*url.URL, error) {
	s.mu.Lock()
	base := s.baseURL
	s.mu.Unlock()

	if action == "" {
		if base == nil {
			return nil, fmt.Errorf("form has no action and session has no current page")
		}
		u := *base
		return &u, nil
	}

	ref, err := url.Parse(action)
	if err != nil {
		return nil, fmt.Errorf("invalid form action %q: %w", action, err)
	}
	if base == nil {
		if !ref.IsAbs() {
			return nil, fmt.Errorf("relative form action %q and session has no current page", action)
		}
		return ref, nil
	}
	return base.ResolveReference(ref), nil
}

// Fetch GETs a page and makes it the session's current page.
func (s *Session) Fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	return s.do(req)
}

// Submit derives the request for form and sends it. submit names the
// submit control to press; empty picks the first one.
func (s *Session) Submit(ctx context.Context, form *Form, submit string, reqOpts ...RequestOption) (*goquery.Document, error) {
	req, err := DeriveRequest(form, submit, s.opts...)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, req, reqOpts...)
}

// Send issues an already derived request.
func (s *Session) Send(ctx context.Context, r *Request, reqOpts ...RequestOption) (*goquery.Document, error) {
	extra := &requestOptions{header: http.Header{}, query: url.Values{}}
	for _, opt := range reqOpts {
		opt(extra)
	}

	target, err := s.resolve(r.URL)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	switch r.Method {
	case MethodGet:
		target.RawQuery = joinQuery(r.EncodeQuery(), extra.query.Encode())
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	case MethodPost:
		if q := extra.query.Encode(); q != "" {
			target.RawQuery = joinQuery(target.RawQuery, q)
		}
		var body []byte
		var contentType string
		body, contentType, err = r.Encode()
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", contentType)
		}
	default:
		return nil, &UnsupportedMethodError{Method: r.Method}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.setHeaders(req)
	for key, values := range extra.header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return s.do(req)
}

func joinQuery(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "&" + b
}

func (s *Session) setHeaders(req *http.Request) {
	userAgent := s.cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}
}

func (s *Session) do(req *http.Request) (*goquery.Document, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String()}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Url = resp.Request.URL

	s.mu.Lock()
	s.baseURL = resp.Request.URL
	s.mu.Unlock()

	return doc, nil
}

type requestOptions struct {
	header http.Header
	query  url.Values
}

// RequestOption adds to a single outgoing request.
type RequestOption func(*requestOptions)

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Add(key, value)
	}
}

func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.query.Add(key, value)
	}
}

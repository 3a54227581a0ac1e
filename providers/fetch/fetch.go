package fetch

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/ratescan/core/dom"
	"github.com/leofalp/ratescan/internal/utils"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent mimics a desktop browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// MaxBodySize caps the response body (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout bounds TCP connection establishment.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second
	// IdleConnTimeout is how long idle keep-alive connections are kept.
	IdleConnTimeout = 90 * time.Second
)

// DefaultHeaders returns the request headers sent with every fetch.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", DefaultUserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// FetchFunc retrieves and parses one page.
type FetchFunc func(ctx context.Context, url string) (*Page, error)

// Middleware wraps a FetchFunc.
type Middleware func(next FetchFunc) FetchFunc

// Page is a retrieved and parsed document.
type Page struct {
	// URL is the requested URL.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL string
	// StatusCode is the HTTP status of the final response.
	StatusCode int
	// HTML is the decoded response body.
	HTML []byte
	// Document is the parsed tree.
	Document *dom.Document
	// Duration is the time spent on the successful attempt.
	Duration time.Duration
}

// Root returns the document tree root.
func (p *Page) Root() dom.Node {
	if p == nil {
		return nil
	}
	return p.Document.Root()
}

// Markdown renders the page as Markdown, for snapshots and debugging.
func (p *Page) Markdown() (string, error) {
	md, err := htmltomarkdown.ConvertString(string(p.HTML))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return md, nil
}

// Client fetches pages. Build one with [New]; it is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	headers     http.Header
	timeout     time.Duration
	maxBodySize int64
	middlewares []Middleware
	chain       FetchFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers.Set("User-Agent", ua)
		}
	}
}

// WithHeader sets an additional request header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithMiddleware appends middleware. The first one given is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// New creates a Client with its own connection pool.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:  newHTTPClient(),
		headers:     DefaultHeaders(),
		timeout:     DefaultTimeout,
		maxBodySize: MaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}

	chain := FetchFunc(c.get)
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		chain = c.middlewares[i](chain)
	}
	c.chain = chain
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: DefaultTimeout,
			IdleConnTimeout:       IdleConnTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (>10)")
			}
			return nil
		},
	}
}

// Fetch retrieves url through the middleware chain and parses the body.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	return c.chain(ctx, url)
}

// get is the base FetchFunc: one GET with the per-attempt timeout.
func (c *Client) get(ctx context.Context, rawURL string) (*Page, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers.Clone()

	timer := utils.NewTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RetrievalError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}

	doc, err := dom.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	return &Page{
		URL:        url,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       body,
		Document:   doc,
		Duration:   timer.Stop(),
	}, nil
}

// readBody decodes gzip/deflate bodies (the explicit Accept-Encoding header
// disables the transport's transparent decompression) and enforces the size cap.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip body: %w", err)
		}
		defer utils.CloseWithLog(gz)
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode deflate body: %w", err)
		}
		defer utils.CloseWithLog(zr)
		r = zr
	}

	body, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w (%d bytes)", errBodyTooLarge, c.maxBodySize)
	}
	return body, nil
}

// Package fetch retrieves HTML pages over HTTP and parses them into
// [dom.Document] trees for the extraction engine.
//
// A [Client] owns its *http.Client, the browser-like request headers and the
// per-request timeout, so nothing is shared process-wide. Non-2xx responses
// and transport failures are reported as [*RetrievalError].
//
// Cross-cutting behaviour is added with middleware wrapping the base
// [FetchFunc], outermost first:
//
//	c := fetch.New(
//	    fetch.WithMiddleware(
//	        fetch.NewTimeoutMiddleware(time.Minute),
//	        fetch.NewRetryMiddleware(fetch.RetryConfig{MaxRetries: 2}),
//	        fetch.NewLoggingMiddleware(slog.Default()),
//	    ),
//	)
//	page, err := c.Fetch(ctx, "https://aavescan.com/")
package fetch

package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/leofalp/ratescan/core/dom"
	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/internal/utils"
	"github.com/leofalp/ratescan/providers/fetch"
)

// DefaultDelay is the pause between two consecutive sources.
const DefaultDelay = 2 * time.Second

// Fetcher retrieves a parsed page. *fetch.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Snapshotter persists a fetched page for later inspection.
// *fetch.SnapshotWriter satisfies it.
type Snapshotter interface {
	Snapshot(label string, page *fetch.Page) (string, error)
}

// Scanner fetches sources one after another and extracts their records.
type Scanner struct {
	fetcher     Fetcher
	engine      *extract.Engine
	delay       time.Duration
	snapshotter Snapshotter
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithEngine sets the extraction engine.
func WithEngine(e *extract.Engine) Option {
	return func(s *Scanner) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithDelay sets the pause between the end of one source and the start of
// the next. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(s *Scanner) {
		s.delay = d
	}
}

// WithSnapshotter stores every fetched page through sn.
func WithSnapshotter(sn Snapshotter) Option {
	return func(s *Scanner) {
		s.snapshotter = sn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scanner reading pages through f.
func New(f Fetcher, opts ...Option) *Scanner {
	s := &Scanner{
		fetcher: f,
		delay:   DefaultDelay,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = extract.New(extract.WithLogger(s.logger))
	}
	return s
}

// pacer holds back the next source until delay has passed since the previous
// one finished. Nothing is pending before the first source.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// done starts the quiet period: the bucket is drained now and refills one
// delay later.
func (p *pacer) done() {
	if p.delay <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	p.limiter.Allow()
}

// wait blocks until the quiet period is over. It fails without waiting when
// the period would outlast the context deadline.
func (p *pacer) wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Run scans sources in order. Retrieval failures are logged and the source is
// skipped. If ctx is canceled the records gathered so far are returned with
// the context error.
func (s *Scanner) Run(ctx context.Context, sources []Source) (*Dataset, error) {
	ds := &Dataset{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Records:   []extract.Record{},
	}
	logger := s.logger.With(slog.String("run_id", ds.RunID))
	logger.InfoContext(ctx, "scan started", slog.Int("sources", len(sources)))

	pace := &pacer{delay: s.delay}
	for i, src := range sources {
		if err := pace.wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ds, ctx.Err()
			}
			return ds, fmt.Errorf("pacing before %s: %w", src.Label, err)
		}

		logger.InfoContext(ctx, "processing source",
			slog.String("protocol", src.Label),
			slog.Int("index", i+1),
			slog.Int("of", len(sources)),
		)

		outcome := s.scanOne(ctx, logger, src)
		pace.done()
		if outcome.Err != nil && ctx.Err() != nil {
			return ds, ctx.Err()
		}
		ds.Outcomes = append(ds.Outcomes, outcome.Outcome)
		ds.Records = append(ds.Records, outcome.records...)
	}

	logger.InfoContext(ctx, "scan finished",
		slog.Int("records", len(ds.Records)),
		slog.Int("sources", len(sources)),
	)
	return ds, nil
}

type sourceResult struct {
	Outcome
	records []extract.Record
}

func (s *Scanner) scanOne(ctx context.Context, logger *slog.Logger, src Source) sourceResult {
	res := sourceResult{Outcome: Outcome{Source: src}}
	timer := utils.NewTimer()

	page, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		res.Err = err
		res.Duration = timer.Stop()
		if !errors.Is(err, context.Canceled) {
			logger.WarnContext(ctx, "failed to fetch source, skipping",
				slog.String("protocol", src.Label),
				slog.String("url", src.URL),
				slog.String("error", err.Error()),
			)
		}
		return res
	}

	if s.snapshotter != nil {
		path, err := s.snapshotter.Snapshot(src.Label, page)
		if err != nil {
			logger.WarnContext(ctx, "failed to write snapshot",
				slog.String("protocol", src.Label),
				slog.String("error", err.Error()),
			)
		} else {
			res.Snapshot = path
		}
	}

	root := scopeRoot(page, src.Scope, logger)
	result := s.engine.Run(root, src.Label)
	res.records = result.Records
	res.Strategy = result.Strategy
	res.Records = len(result.Records)
	res.Addresses = result.Addresses
	res.Duration = timer.Stop()

	logger.InfoContext(ctx, "source extracted",
		slog.String("protocol", src.Label),
		slog.String("strategy", string(result.Strategy)),
		slog.Int("records", len(result.Records)),
		slog.Int("addresses", result.Addresses),
		slog.Duration("duration", res.Duration),
	)
	return res
}

// scopeRoot returns the first element matching scope, or the document root
// when scope is empty or matches nothing.
func scopeRoot(page *fetch.Page, scope string, logger *slog.Logger) dom.Node {
	if scope == "" {
		return page.Root()
	}
	if nodes := page.Document.Select(scope); len(nodes) > 0 {
		return nodes[0]
	}
	logger.Warn("scope matched nothing, using whole document",
		slog.String("url", page.URL),
		slog.String("scope", scope),
	)
	return page.Root()
}

package extract

import (
	"log/slog"

	"github.com/leofalp/ratescan/core/address"
	"github.com/leofalp/ratescan/core/dom"
)

// Strategy names the extraction strategy that produced a result.
type Strategy string

const (
	// StrategyNone means every strategy came back empty.
	StrategyNone         Strategy = ""
	StrategyTable        Strategy = "table"
	StrategyContainer    Strategy = "container"
	StrategyPercentage   Strategy = "percentage"
	StrategyContractOnly Strategy = "contract_only"
)

// Result is the outcome of one extraction pass.
type Result struct {
	// Records are the extracted rows, in document order.
	Records []Record
	// Strategy is the strategy that produced Records.
	Strategy Strategy
	// Addresses is the number of distinct addresses found on the page.
	Addresses int
}

// Engine runs the strategy cascade. Create one with [New]; it is safe for
// concurrent use.
type Engine struct {
	heuristics Heuristics
	locator    address.Locator
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeuristics overrides the default tuning. Zero fields keep their defaults.
func WithHeuristics(h Heuristics) Option {
	return func(e *Engine) {
		e.heuristics = DefaultHeuristics().Merge(h)
	}
}

// WithLogger sets the logger used for per-strategy debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine using [DefaultHeuristics] unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		heuristics: DefaultHeuristics(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.locator = address.NewLocator(e.heuristics.MaxDescendants)
	return e
}

// Heuristics returns the tuning in effect.
func (e *Engine) Heuristics() Heuristics {
	return e.heuristics
}

// Extract returns the records found in root, tagging each with label.
// An empty slice is a normal outcome.
func (e *Engine) Extract(root dom.Node, label string) []Record {
	return e.Run(root, label).Records
}

// Run executes the cascade and reports which strategy fired.
func (e *Engine) Run(root dom.Node, label string) Result {
	if root == nil {
		return Result{Records: []Record{}}
	}

	addrs := address.FindAll(root)
	e.logger.Debug("addresses located", "protocol", label, "count", addrs.Len())

	steps := []struct {
		name Strategy
		run  func() []Record
	}{
		{StrategyTable, func() []Record { return e.fromTables(root, label) }},
		{StrategyContainer, func() []Record { return e.fromContainers(root, label) }},
		{StrategyPercentage, func() []Record { return e.fromPercentages(root, label) }},
		{StrategyContractOnly, func() []Record { return contractOnly(addrs, label) }},
	}

	for _, step := range steps {
		records := step.run()
		if len(records) > 0 {
			e.logger.Debug("strategy matched",
				"protocol", label,
				"strategy", string(step.name),
				"records", len(records),
			)
			return Result{Records: records, Strategy: step.name, Addresses: addrs.Len()}
		}
		e.logger.Debug("strategy produced nothing", "protocol", label, "strategy", string(step.name))
	}

	return Result{Records: []Record{}, Strategy: StrategyNone, Addresses: addrs.Len()}
}

package extract

// Heuristics holds the empirically chosen thresholds and keyword lists used by
// the strategies. None of them is an invariant; adjust them per deployment.
type Heuristics struct {
	// TableKeywords qualify a table when its joined header text contains one.
	TableKeywords []string `json:"table_keywords,omitempty" yaml:"table_keywords,omitempty" toml:"table_keywords,omitempty"`
	// ContainerKeywords select div candidates by class token substring.
	ContainerKeywords []string `json:"container_keywords,omitempty" yaml:"container_keywords,omitempty" toml:"container_keywords,omitempty"`
	// ContextKeywords qualify the text surrounding a percentage.
	ContextKeywords []string `json:"context_keywords,omitempty" yaml:"context_keywords,omitempty" toml:"context_keywords,omitempty"`

	// MaxContainers caps the div candidates inspected, in document order.
	MaxContainers int `json:"max_containers,omitempty" yaml:"max_containers,omitempty" toml:"max_containers,omitempty"`
	// MaxContainerText is the exclusive upper bound on a container's text length.
	MaxContainerText int `json:"max_container_text,omitempty" yaml:"max_container_text,omitempty" toml:"max_container_text,omitempty"`
	// MaxLines is the number of container lines kept in the "lines" field.
	MaxLines int `json:"max_lines,omitempty" yaml:"max_lines,omitempty" toml:"max_lines,omitempty"`
	// MaxPercentNodes caps the "%" text nodes inspected, in document order.
	MaxPercentNodes int `json:"max_percent_nodes,omitempty" yaml:"max_percent_nodes,omitempty" toml:"max_percent_nodes,omitempty"`
	// MaxContextText is the exclusive upper bound on a percentage context length.
	MaxContextText int `json:"max_context_text,omitempty" yaml:"max_context_text,omitempty" toml:"max_context_text,omitempty"`
	// MaxDescendants caps the a/span/div descendants searched per level when
	// associating an address with an element.
	MaxDescendants int `json:"max_descendants,omitempty" yaml:"max_descendants,omitempty" toml:"max_descendants,omitempty"`
}

// DefaultHeuristics returns the stock tuning.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		TableKeywords:     []string{"supply", "rate", "apy", "apr"},
		ContainerKeywords: []string{"asset", "token", "supply", "rate", "card", "row"},
		ContextKeywords:   []string{"supply", "apy", "apr"},
		MaxContainers:     10,
		MaxContainerText:  200,
		MaxLines:          5,
		MaxPercentNodes:   20,
		MaxContextText:    100,
		MaxDescendants:    5,
	}
}

// Merge returns h with every non-zero field of o applied on top.
func (h Heuristics) Merge(o Heuristics) Heuristics {
	if len(o.TableKeywords) > 0 {
		h.TableKeywords = o.TableKeywords
	}
	if len(o.ContainerKeywords) > 0 {
		h.ContainerKeywords = o.ContainerKeywords
	}
	if len(o.ContextKeywords) > 0 {
		h.ContextKeywords = o.ContextKeywords
	}
	if o.MaxContainers > 0 {
		h.MaxContainers = o.MaxContainers
	}
	if o.MaxContainerText > 0 {
		h.MaxContainerText = o.MaxContainerText
	}
	if o.MaxLines > 0 {
		h.MaxLines = o.MaxLines
	}
	if o.MaxPercentNodes > 0 {
		h.MaxPercentNodes = o.MaxPercentNodes
	}
	if o.MaxContextText > 0 {
		h.MaxContextText = o.MaxContextText
	}
	if o.MaxDescendants > 0 {
		h.MaxDescendants = o.MaxDescendants
	}
	return h
}

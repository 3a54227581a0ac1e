package extract

// Field names written by the engine. Table strategies add one field per
// discovered column header as well.
const (
	FieldProtocol         = "protocol"
	FieldContractAddress  = "contract_address"
	FieldExtractionMethod = "extraction_method"
	FieldContainerText    = "container_text"
	FieldLines            = "lines"
	FieldContext          = "context"
	FieldElementTag       = "element_tag"
	FieldElementClass     = "element_class"
)

// MethodContractOnly marks records produced by the address-only fallback.
const MethodContractOnly = "contract_only"

// Record is one extracted row keyed by field name. Every value is a string:
// element_class holds the class tokens joined by single spaces rather than a
// list, so JSON output carries "a b", not ["a","b"].
type Record map[string]string

// Protocol returns the source label of the record.
func (r Record) Protocol() string {
	return r[FieldProtocol]
}

// ContractAddress returns the associated address, if any.
func (r Record) ContractAddress() (string, bool) {
	v, ok := r[FieldContractAddress]
	return v, ok
}

// hasValue reports whether at least one field is non-empty.
func (r Record) hasValue() bool {
	for _, v := range r {
		if v != "" {
			return true
		}
	}
	return false
}

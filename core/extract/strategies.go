package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/leofalp/ratescan/core/address"
	"github.com/leofalp/ratescan/core/dom"
)

// fromTables reads every table whose header row mentions a rate keyword,
// root included when it is itself a table.
// The first row supplies lower-cased column names; later rows with at least
// two cells become records. The first address found wins: the row itself is
// checked before its cells, and cells in column order.
func (e *Engine) fromTables(root dom.Node, label string) []Record {
	var out []Record

	for _, table := range dom.ElementsInclusive(root, 0, "table") {
		rows := dom.Elements(table, 0, "tr")
		if len(rows) == 0 {
			continue
		}

		headerCells := dom.Elements(rows[0], 0, "th", "td")
		headers := make([]string, len(headerCells))
		for i, cell := range headerCells {
			headers[i] = strings.ToLower(dom.StrippedText(cell))
		}
		if !containsAny(strings.Join(headers, " "), e.heuristics.TableKeywords) {
			continue
		}

		e.logger.Debug("rate table found", "protocol", label, "headers", headers)

		for _, row := range rows[1:] {
			cells := dom.Elements(row, 0, "td", "th")
			if len(cells) < 2 {
				continue
			}

			rec := Record{FieldProtocol: label}
			if addr, ok := e.locator.FindIn(row); ok {
				rec[FieldContractAddress] = addr
			}

			for i, cell := range cells {
				if i >= len(headers) {
					break
				}
				if headers[i] != FieldProtocol {
					rec[headers[i]] = dom.StrippedText(cell)
				}
				if _, ok := rec[FieldContractAddress]; !ok {
					if addr, found := e.locator.FindIn(cell); found {
						rec[FieldContractAddress] = addr
					}
				}
			}

			if rec.hasValue() {
				out = append(out, rec)
			}
		}
	}

	return out
}

// fromContainers looks at the first MaxContainers divs whose class tokens
// contain a container keyword, root included, and keeps the small ones that
// show a percentage across at least two lines.
func (e *Engine) fromContainers(root dom.Node, label string) []Record {
	h := e.heuristics
	candidates := dom.FindAllInclusive(root, h.MaxContainers, func(n dom.Node) bool {
		if n.Type() != dom.ElementNode || n.Tag() != "div" {
			return false
		}
		for _, class := range n.Classes() {
			if containsAny(strings.ToLower(class), h.ContainerKeywords) {
				return true
			}
		}
		return false
	})

	var out []Record
	for _, div := range candidates {
		text := dom.StrippedText(div)
		if !strings.Contains(text, "%") || utf8.RuneCountInString(text) >= h.MaxContainerText {
			continue
		}

		lines := nonEmptyLines(text)
		if len(lines) < 2 {
			continue
		}
		if len(lines) > h.MaxLines {
			lines = lines[:h.MaxLines]
		}

		rec := Record{
			FieldProtocol:      label,
			FieldContainerText: text,
			FieldLines:         strings.Join(lines, " | "),
		}
		if addr, ok := e.locator.FindIn(div); ok {
			rec[FieldContractAddress] = addr
		}
		out = append(out, rec)
	}

	return out
}

// fromPercentages inspects the parents of the first MaxPercentNodes text nodes
// containing "%" and keeps short contexts that mention a context keyword.
func (e *Engine) fromPercentages(root dom.Node, label string) []Record {
	h := e.heuristics
	nodes := dom.TextNodes(root, h.MaxPercentNodes, func(s string) bool {
		return strings.Contains(s, "%")
	})

	var out []Record
	for _, n := range nodes {
		parent := n.Parent()
		if parent == nil || parent.Type() != dom.ElementNode {
			continue
		}

		surrounding := dom.StrippedText(parent)
		if utf8.RuneCountInString(surrounding) >= h.MaxContextText {
			continue
		}
		if !containsAny(strings.ToLower(surrounding), h.ContextKeywords) {
			continue
		}

		rec := Record{
			FieldProtocol:     label,
			FieldContext:      surrounding,
			FieldElementTag:   parent.Tag(),
			FieldElementClass: strings.Join(parent.Classes(), " "),
		}
		if addr, ok := e.locator.FindIn(parent); ok {
			rec[FieldContractAddress] = addr
		}
		out = append(out, rec)
	}

	return out
}

// contractOnly emits one record per address, sorted for stable output.
func contractOnly(addrs address.Set, label string) []Record {
	out := make([]Record, 0, addrs.Len())
	for _, addr := range addrs.Sorted() {
		out = append(out, Record{
			FieldProtocol:         label,
			FieldContractAddress:  addr,
			FieldExtractionMethod: MethodContractOnly,
		})
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

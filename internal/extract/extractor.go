package extract

import (
	"regexp"
	"strings"

	"github.com/invoiceai/extractor/constants"
	"github.com/invoiceai/extractor/internal/entity"
)

// Candidate is an unvalidated field value matched by a pattern.
type Candidate struct {
	Name string
	Raw  string
}

// Result carries the raw candidates in table order plus heuristic line items.
type Result struct {
	Candidates []Candidate
	LineItems  []entity.LineItem
}

// numericShape matches tokens that look like a currency amount or plain number.
var numericShape = regexp.MustCompile(`^\$?[0-9,]+\.?\d*$`)

// headerTokens mark table-header lines that must not be read as line items.
var headerTokens = []string{"description", "qty", "quantity", "price", "total", "amount"}

// Engine resolves invoice fields from recognized text. It is stateless and
// safe for concurrent use.
type Engine struct {
	fields []FieldPatterns
}

func NewEngine() *Engine {
	return &Engine{fields: fieldTable}
}

// ExtractFields applies the ordered pattern table to the lower-cased text and
// collects at most one candidate per field, plus heuristic line items. No
// validation happens here; unparsable values survive as raw strings.
func (e *Engine) ExtractFields(text string) Result {
	lower := strings.ToLower(text)

	var res Result
	for _, fp := range e.fields {
		for _, p := range fp.Patterns {
			m := p.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			val := m[0]
			if len(m) > 1 {
				val = m[1]
			}
			res.Candidates = append(res.Candidates, Candidate{Name: fp.Name, Raw: strings.TrimSpace(val)})
			break
		}
	}

	res.LineItems = e.extractLineItems(text)
	return res
}

// extractLineItems scans for table-like rows. A line qualifies when it has at
// least 3 whitespace tokens and at least 2 numeric-shaped tokens; the first
// numeric token is read as quantity, the last two as unit price and line
// total. Extra numeric tokens in between are ignored.
func (e *Engine) extractLineItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || containsHeaderToken(line) {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		var numbers []string
		for _, p := range parts {
			if numericShape.MatchString(p) {
				numbers = append(numbers, p)
			}
		}
		if len(numbers) < 2 {
			continue
		}

		items = append(items, entity.LineItem{
			Description: strings.Join(parts[:len(parts)-len(numbers)], " "),
			Quantity:    parseNumber(numbers[0]),
			UnitPrice:   parseNumber(numbers[len(numbers)-2]),
			LineTotal:   parseNumber(numbers[len(numbers)-1]),
		})
		if len(items) == constants.MaxLineItems {
			break
		}
	}
	return items
}

func containsHeaderToken(line string) bool {
	lower := strings.ToLower(line)
	for _, h := range headerTokens {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func parseNumber(token string) *float64 {
	if f, ok := entity.ParseAmount(token); ok {
		return &f
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// ErrMalformedContract reports a contract call that cannot be read, such as a
// Contract.Requires without arguments.
var ErrMalformedContract = errors.New("malformed contract call")

// Markers maps each contract kind to the call-name prefix that declares it.
type Markers map[m.ContractKind]string

// DefaultMarkers returns the Code Contracts call names.
func DefaultMarkers() Markers {
	return Markers{
		m.Requires:  "Contract.Requires",
		m.Ensures:   "Contract.Ensures",
		m.Invariant: "Contract.Invariant",
	}
}

// Collector extracts and classifies the contract clauses of one or more kinds.
type Collector struct {
	kinds   m.ContractKind
	markers Markers
	engine  *Engine
	unroll  bool
}

// NewCollector creates a collector sensitive to kinds. unrollEnumerables lets
// the splitter replace an allow-listed quantifier with its lambda body.
func NewCollector(kinds m.ContractKind, markers Markers, engine *Engine, unrollEnumerables bool) *Collector {
	if markers == nil {
		markers = DefaultMarkers()
	}

	if engine == nil {
		engine = NewDefaultEngine()
	}

	return &Collector{
		kinds:   kinds,
		markers: markers,
		engine:  engine,
		unroll:  unrollEnumerables,
	}
}

// Kinds returns the kinds the collector is sensitive to.
func (c *Collector) Kinds() m.ContractKind {
	return c.kinds
}

// Collect classifies every clause declared in root. A malformed contract call
// stops the file: the clauses collected before it are returned together with
// ErrMalformedContract.
func (c *Collector) Collect(root *m.SyntaxRoot) ([]m.Clause, error) {
	var clauses []m.Clause

	for _, call := range root.Calls {
		kind, ok := c.contractKind(call)
		if !ok {
			continue
		}

		if len(call.Args) == 0 {
			return clauses, fmt.Errorf("%w: %s in %s", ErrMalformedContract, call.Text(), root.Path)
		}

		for _, expr := range TopLevelClauses(call.Args[0], c.unroll) {
			if isFalseLiteral(expr) {
				slog.Debug("dropping invalid contract", "path", root.Path, "contract", call.Text())
				continue
			}

			clauses = append(clauses, m.Clause{
				Kind:   kind,
				Text:   expr.Text(),
				Labels: c.engine.Labels(c.kinds, expr),
				File:   root.Path,
			})
		}
	}

	return clauses, nil
}

// contractKind returns the kind declared by call when the call is an
// extraction site for this collector.
func (c *Collector) contractKind(call *m.Invocation) (m.ContractKind, bool) {
	callee, ok := call.Callee.(*m.MemberAccess)
	if !ok {
		return 0, false
	}

	text := m.CompactText(callee)

	for _, kind := range c.kinds.Kinds() {
		marker := c.markers[kind]
		if marker != "" && strings.HasPrefix(text, marker) {
			return kind, true
		}
	}

	return 0, false
}

// TopLevelClauses splits a contract body into independently classifiable
// clauses: parentheses are stripped, top-level conjunctions are split and, when
// unrollEnumerables is set, one level of allow-listed quantifier is replaced by
// its lambda body.
func TopLevelClauses(body m.Expr, unrollEnumerables bool) []m.Expr {
	expr := m.Strip(body)

	if unrollEnumerables {
		if inner, ok := quantifierBody(expr); ok {
			return TopLevelClauses(inner, false)
		}
	}

	if b, ok := expr.(*m.Binary); ok && b.Op == m.OpAnd {
		left := TopLevelClauses(b.Left, unrollEnumerables)
		return append(left, TopLevelClauses(b.Right, unrollEnumerables)...)
	}

	return []m.Expr{expr}
}

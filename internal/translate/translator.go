// Package translate converts a parsed-SQL tree into query document
// fragments and assembles them into a full document.
//
// Translation is a pure, synchronous transformation: no I/O, no shared
// mutable state beyond the immutable operator catalog, so a Translator
// may be used from multiple goroutines without locking. Recursion is
// bounded by an explicit depth limit that fails fast instead of
// exhausting the stack.
package translate

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
	"github.com/querybridge/querybridge/internal/schema"
)

// DefaultMaxDepth bounds tree recursion when the caller supplies no
// limit of its own.
const DefaultMaxDepth = 64

// Translator converts single tree nodes (and recursively their
// children) into document fragments. The fragment type depends on the
// node kind:
//
//	table               querydoc.Resource
//	colref              *querydoc.Property (nil for wildcards: absence)
//	alias               querydoc.Property
//	reserved            bool
//	const               int64 | float64 | string
//	operator            string (lower-cased token)
//	in-list             []any
//	aggregate_function  querydoc.Expression
//	bracket_expression  querydoc.Condition | querydoc.Group | querydoc.Expression
type Translator struct {
	catalog  schema.Catalog
	maxDepth int
}

// NewTranslator builds a translator over the given operator catalog.
// maxDepth bounds tree recursion; values < 1 select DefaultMaxDepth.
func NewTranslator(catalog schema.Catalog, maxDepth int) *Translator {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Translator{catalog: catalog, maxDepth: maxDepth}
}

// Translate converts one node into its document fragment. It is total
// over the supported node kinds and fails with UNSUPPORTED_NODE_KIND
// for anything else.
func (t *Translator) Translate(node ast.Node) (any, error) {
	return t.translate(node, 0)
}

// translate dispatches purely on the node kind. The switch is the only
// dispatch mechanism: an unknown kind can never fall through silently.
func (t *Translator) translate(node ast.Node, depth int) (any, error) {
	if depth >= t.maxDepth {
		return nil, newError(KindStructural, ErrCodeMaxDepthExceeded,
			"tree nests deeper than %d levels", t.maxDepth)
	}

	switch node.Kind {
	case ast.KindTable:
		return t.translateTable(node), nil
	case ast.KindColRef:
		return t.translateColRef(node), nil
	case ast.KindAlias:
		return t.translateAlias(node), nil
	case ast.KindReserved:
		return translateReserved(node)
	case ast.KindConst:
		return coerceConstant(node.BaseExpr), nil
	case ast.KindOperator:
		return strings.ToLower(node.BaseExpr), nil
	case ast.KindInList:
		return t.translateInList(node, depth)
	case ast.KindAggregateFunction:
		return t.translateAggregate(node, depth)
	case ast.KindBracketExpression:
		return t.translateBracket(node, depth)
	default:
		return nil, newError(KindStructural, ErrCodeUnsupportedNodeKind,
			"no handler for node kind %q", node.Kind).
			withContext("kind", string(node.Kind))
	}
}

// translateTable converts a FROM entry. An unaliased table gets the
// default resource alias.
func (t *Translator) translateTable(node ast.Node) querydoc.Resource {
	res := querydoc.Resource{Alias: querydoc.DefaultResourceAlias}
	if parts := node.PathParts(); len(parts) > 0 {
		res.ID = parts[0]
	}
	if alias := node.AliasName(); alias != "" {
		res.Alias = alias
	}
	return res
}

// translateColRef converts a column reference. Wildcard references
// (bare "*" or "qualifier.*") produce no property at all: the returned
// pointer is nil and the caller drops the entry.
func (t *Translator) translateColRef(node ast.Node) *querydoc.Property {
	parts := node.PathParts()
	if len(parts) == 0 || parts[len(parts)-1] == "*" {
		return nil
	}

	prop := &querydoc.Property{
		Property: parts[len(parts)-1],
		Resource: querydoc.DefaultResourceAlias,
	}
	if len(parts) >= 2 {
		prop.Resource = parts[0]
	}
	if alias := node.AliasName(); alias != "" {
		prop.Alias = alias
	}
	if node.Direction != "" {
		prop.Order = strings.ToLower(node.Direction)
	}
	return prop
}

// translateAlias converts a standalone alias token, as used by ORDER
// clauses that sort on a select-list alias.
func (t *Translator) translateAlias(node ast.Node) querydoc.Property {
	prop := querydoc.Property{Property: node.BaseExpr}
	if node.Direction != "" {
		prop.Order = strings.ToLower(node.Direction)
	}
	return prop
}

// translateReserved maps TRUE and FALSE (any casing) to booleans. All
// other reserved words have no document representation.
func translateReserved(node ast.Node) (any, error) {
	switch {
	case strings.EqualFold(node.BaseExpr, "true"):
		return true, nil
	case strings.EqualFold(node.BaseExpr, "false"):
		return false, nil
	default:
		return nil, newError(KindConstraint, ErrCodeUnknownReservedWord,
			"reserved word %q has no value representation", node.BaseExpr).
			withContext("token", node.BaseExpr)
	}
}

// coerceConstant converts a literal token: exact integers stay
// integers, other numerics become floats, everything else is a string
// with surrounding quotes stripped. Integers are parsed in base 10
// only; a leading zero never selects octal.
func coerceConstant(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(raw); err == nil {
		return f
	}
	return stripQuotes(raw)
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// translateInList converts an IN value list to its ordered elements.
func (t *Translator) translateInList(node ast.Node, depth int) ([]any, error) {
	values := make([]any, 0, len(node.SubTree))
	for _, child := range node.SubTree {
		val, err := t.translate(child, depth+1)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

// translateAggregate converts an aggregate call into an expression.
// The alias is required: an unreferencable computation is rejected
// here, not left for the schema to catch.
func (t *Translator) translateAggregate(node ast.Node, depth int) (querydoc.Expression, error) {
	alias := node.AliasName()
	if alias == "" {
		return querydoc.Expression{}, newError(KindConstraint, ErrCodeUnaliasedExpression,
			"aggregate %q requires an alias", node.BaseExpr).
			withContext("function", node.BaseExpr)
	}

	operands, err := t.translateOperands(node.SubTree, depth)
	if err != nil {
		return querydoc.Expression{}, err
	}
	if len(operands) == 0 {
		return querydoc.Expression{}, newError(KindConstraint, ErrCodeEmptyAggregate,
			"aggregate %q has no operands", node.BaseExpr).
			withContext("function", node.BaseExpr)
	}

	return querydoc.Expression{
		Operator: strings.ToLower(node.BaseExpr),
		Operands: operands,
		Alias:    alias,
	}, nil
}

// translateOperands converts expression operand nodes, skipping
// operator tokens and wildcard absences.
func (t *Translator) translateOperands(children []ast.Node, depth int) ([]any, error) {
	operands := make([]any, 0, len(children))
	for _, child := range children {
		if child.Kind == ast.KindOperator {
			continue
		}
		frag, err := t.translate(child, depth+1)
		if err != nil {
			return nil, err
		}
		operands = append(operands, derefFragment(frag)...)
	}
	return operands, nil
}

// derefFragment normalizes a translated fragment for use as an
// operand: property pointers become values, wildcard absences vanish.
func derefFragment(frag any) []any {
	switch v := frag.(type) {
	case nil:
		return nil
	case *querydoc.Property:
		if v == nil {
			return nil
		}
		return []any{*v}
	default:
		return []any{frag}
	}
}

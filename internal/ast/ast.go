// Package ast defines the parsed-SQL tree contract consumed by the
// translator.
//
// The tree is external data: it is produced by the SQL front end in
// internal/sqlparser, or arrives pre-parsed as JSON from an API caller.
// The translator never mutates nodes, so a Statement can be shared
// between concurrent translation calls.
package ast

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates node variants. Every node has exactly one kind.
type Kind string

const (
	// KindTable is a FROM-clause data source reference.
	KindTable Kind = "table"

	// KindColRef is a (possibly qualified) column reference.
	KindColRef Kind = "colref"

	// KindAlias is a standalone alias token, used chiefly in ORDER
	// clauses that sort by a select-list alias.
	KindAlias Kind = "alias"

	// KindReserved is a reserved word such as TRUE or FALSE.
	KindReserved Kind = "reserved"

	// KindConst is a literal constant token.
	KindConst Kind = "const"

	// KindOperator is a comparison, boolean, or arithmetic operator token.
	KindOperator Kind = "operator"

	// KindInList is the parenthesized value list of an IN predicate.
	KindInList Kind = "in-list"

	// KindAggregateFunction is an aggregate call such as COUNT(x).
	KindAggregateFunction Kind = "aggregate_function"

	// KindBracketExpression is a parenthesized sub-tree whose semantic
	// role (condition, condition group, or arithmetic expression) must
	// be inferred from its operator children.
	KindBracketExpression Kind = "bracket_expression"
)

// Alias carries the AS-name attached to a node.
type Alias struct {
	Name string `json:"name"`
}

// Path holds the dotted identifier segments of a reference, with any
// quoting already stripped by the parser.
type Path struct {
	Parts []string `json:"parts"`
}

// Node is one element of the parsed tree.
//
// Which payload fields are populated depends on Kind:
//
//	table               BaseExpr, NoQuotes, Alias
//	colref              BaseExpr, NoQuotes, Alias, Direction
//	alias               BaseExpr, Direction
//	reserved, const     BaseExpr
//	operator            BaseExpr
//	in-list             SubTree
//	aggregate_function  BaseExpr (function name), SubTree, Alias
//	bracket_expression  SubTree
type Node struct {
	Kind      Kind   `json:"kind"`
	BaseExpr  string `json:"base_expr,omitempty"`
	SubTree   []Node `json:"sub_tree,omitempty"`
	Alias     *Alias `json:"alias,omitempty"`
	NoQuotes  *Path  `json:"no_quotes,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// PathParts returns the dotted identifier segments, falling back to the
// raw token when the parser supplied no path.
func (n Node) PathParts() []string {
	if n.NoQuotes != nil && len(n.NoQuotes.Parts) > 0 {
		return n.NoQuotes.Parts
	}
	if n.BaseExpr != "" {
		return []string{n.BaseExpr}
	}
	return nil
}

// AliasName returns the attached alias name, or "" when unaliased.
func (n Node) AliasName() string {
	if n.Alias == nil {
		return ""
	}
	return n.Alias.Name
}

// Limit carries the LIMIT/OFFSET clause. Pointer fields distinguish an
// absent value from an explicit zero.
type Limit struct {
	RowCount *int64 `json:"rowcount,omitempty"`
	Offset   *int64 `json:"offset,omitempty"`
}

// Statement is one parsed SELECT statement, clause by clause. Absent
// clauses are nil. WHERE is the flat node sequence between the WHERE
// keyword and the next clause: parenthesized groups appear as single
// bracket_expression nodes, everything else token by token.
type Statement struct {
	Select []Node `json:"SELECT,omitempty"`
	From   []Node `json:"FROM,omitempty"`
	Where  []Node `json:"WHERE,omitempty"`
	Limit  *Limit `json:"LIMIT,omitempty"`
	Order  []Node `json:"ORDER,omitempty"`
}

// DecodeStatement parses a JSON-encoded statement, the form in which
// pre-parsed trees arrive from API callers.
func DecodeStatement(data []byte) (*Statement, error) {
	var stmt Statement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return nil, fmt.Errorf("decoding statement: %w", err)
	}
	return &stmt, nil
}

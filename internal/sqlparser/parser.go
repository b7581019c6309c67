// Package sqlparser turns SELECT statements into the generic parsed
// tree consumed by the translator.
//
// The parser deliberately produces the flat, loosely-typed tree of the
// node contract rather than a typed SQL AST: the translator's
// classification step is what assigns semantics to bracketed
// sub-trees, and the same tree shape may arrive pre-parsed as JSON
// from API callers. FROM is optional so statements paired with an
// external resource id parse cleanly.
package sqlparser

import (
	"strconv"
	"strings"

	"github.com/querybridge/querybridge/internal/ast"
)

// aggregateFunctions are the identifiers treated as aggregate calls
// when followed by an argument list.
var aggregateFunctions = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// Parser consumes tokens with one token of lookahead.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token

	// selectAliases tracks select-list aliases so ORDER entries that
	// reference one become alias nodes instead of column references.
	selectAliases map[string]bool
}

// Parse converts one SELECT statement into a parsed tree.
func Parse(sql string) (*ast.Statement, error) {
	p := &Parser{
		lexer:         NewLexer(sql),
		selectAliases: make(map[string]bool),
	}
	p.next()
	p.next()
	return p.parseStatement()
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) parseStatement() (*ast.Statement, error) {
	if p.cur.Type != TokenSELECT {
		return nil, newParseError(p.cur, "statement must start with SELECT", "SELECT")
	}
	p.next()

	stmt := &ast.Statement{}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Select = items

	for p.cur.Type != TokenEOF {
		switch p.cur.Type {
		case TokenFROM:
			if stmt.From != nil {
				return nil, newParseError(p.cur, "duplicate FROM clause")
			}
			p.next()
			if stmt.From, err = p.parseFromList(); err != nil {
				return nil, err
			}
		case TokenWHERE:
			if stmt.Where != nil {
				return nil, newParseError(p.cur, "duplicate WHERE clause")
			}
			p.next()
			if stmt.Where, err = p.parseNodeSequence(false); err != nil {
				return nil, err
			}
			if len(stmt.Where) == 0 {
				return nil, newParseError(p.cur, "WHERE clause is empty")
			}
		case TokenORDER:
			if stmt.Order != nil {
				return nil, newParseError(p.cur, "duplicate ORDER clause")
			}
			p.next()
			if p.cur.Type != TokenBY {
				return nil, newParseError(p.cur, "ORDER must be followed by BY", "BY")
			}
			p.next()
			if stmt.Order, err = p.parseOrderList(); err != nil {
				return nil, err
			}
		case TokenLIMIT:
			if stmt.Limit != nil {
				return nil, newParseError(p.cur, "duplicate LIMIT clause")
			}
			p.next()
			if stmt.Limit, err = p.parseLimit(); err != nil {
				return nil, err
			}
		default:
			return nil, newParseError(p.cur, "unexpected token after clause")
		}
	}

	return stmt, nil
}

// parseSelectList parses the comma-separated select items.
func (p *Parser) parseSelectList() ([]ast.Node, error) {
	var items []ast.Node
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if p.cur.Type != TokenComma {
			break
		}
		p.next()
	}
	if len(items) == 0 {
		return nil, newParseError(p.cur, "select list is empty")
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (ast.Node, error) {
	switch p.cur.Type {
	case TokenAsterisk:
		node := ast.Node{
			Kind:     ast.KindColRef,
			BaseExpr: "*",
			NoQuotes: &ast.Path{Parts: []string{"*"}},
		}
		p.next()
		return node, nil

	case TokenLParen:
		p.next()
		children, err := p.parseNodeSequence(true)
		if err != nil {
			return ast.Node{}, err
		}
		if p.cur.Type != TokenRParen {
			return ast.Node{}, newParseError(p.cur, "unclosed bracket", ")")
		}
		p.next()
		node := ast.Node{Kind: ast.KindBracketExpression, SubTree: children}
		node.Alias = p.parseOptionalAlias()
		return node, nil

	case TokenIdent:
		if aggregateFunctions[strings.ToLower(p.cur.Value)] && p.peek.Type == TokenLParen {
			return p.parseAggregate()
		}
		node, err := p.parseQualifiedRef()
		if err != nil {
			return ast.Node{}, err
		}
		node.Alias = p.parseOptionalAlias()
		return node, nil

	default:
		return ast.Node{}, newParseError(p.cur, "invalid select item", "column", "(", "*", "aggregate")
	}
}

// parseAggregate parses name(...) into an aggregate node with the
// argument nodes as its sub-tree.
func (p *Parser) parseAggregate() (ast.Node, error) {
	name := p.cur.Value
	p.next() // function name
	p.next() // (

	var args []ast.Node
	for p.cur.Type != TokenRParen {
		if p.cur.Type == TokenComma {
			p.next()
			continue
		}
		if p.cur.Type == TokenEOF {
			return ast.Node{}, newParseError(p.cur, "unclosed aggregate argument list", ")")
		}
		arg, err := p.parseValueNode()
		if err != nil {
			return ast.Node{}, err
		}
		args = append(args, arg)
	}
	p.next() // )

	node := ast.Node{
		Kind:     ast.KindAggregateFunction,
		BaseExpr: name,
		SubTree:  args,
	}
	node.Alias = p.parseOptionalAlias()
	return node, nil
}

// parseOptionalAlias consumes "AS name" or a bare trailing identifier.
// Select-list aliases are recorded for ORDER resolution.
func (p *Parser) parseOptionalAlias() *ast.Alias {
	if p.cur.Type == TokenAS {
		p.next()
	} else if p.cur.Type != TokenIdent {
		return nil
	}
	if p.cur.Type != TokenIdent {
		return nil
	}
	name := p.cur.Value
	p.next()
	p.selectAliases[name] = true
	return &ast.Alias{Name: name}
}

// parseQualifiedRef parses ident(.ident)*(.*)? into a column
// reference.
func (p *Parser) parseQualifiedRef() (ast.Node, error) {
	parts := []string{p.cur.Value}
	p.next()
	for p.cur.Type == TokenDot {
		p.next()
		switch p.cur.Type {
		case TokenIdent:
			parts = append(parts, p.cur.Value)
		case TokenAsterisk:
			parts = append(parts, "*")
		default:
			return ast.Node{}, newParseError(p.cur, "invalid qualified reference", "identifier", "*")
		}
		p.next()
	}
	return ast.Node{
		Kind:     ast.KindColRef,
		BaseExpr: strings.Join(parts, "."),
		NoQuotes: &ast.Path{Parts: parts},
	}, nil
}

// parseFromList parses the comma-separated table references.
func (p *Parser) parseFromList() ([]ast.Node, error) {
	var tables []ast.Node
	for {
		if p.cur.Type != TokenIdent {
			return nil, newParseError(p.cur, "invalid FROM entry", "table name")
		}
		ref, err := p.parseQualifiedRef()
		if err != nil {
			return nil, err
		}
		table := ast.Node{
			Kind:     ast.KindTable,
			BaseExpr: ref.BaseExpr,
			NoQuotes: ref.NoQuotes,
		}
		if p.cur.Type == TokenAS {
			p.next()
		}
		if p.cur.Type == TokenIdent {
			table.Alias = &ast.Alias{Name: p.cur.Value}
			p.next()
		}
		tables = append(tables, table)

		if p.cur.Type != TokenComma {
			break
		}
		p.next()
	}
	return tables, nil
}

// parseNodeSequence parses the flat node run used by WHERE clauses and
// bracket interiors. inBracket stops at the closing parenthesis;
// otherwise a clause boundary ends the run.
func (p *Parser) parseNodeSequence(inBracket bool) ([]ast.Node, error) {
	var nodes []ast.Node
	for {
		if inBracket {
			if p.cur.Type == TokenRParen {
				return nodes, nil
			}
			if p.cur.Type == TokenEOF {
				return nil, newParseError(p.cur, "unclosed bracket", ")")
			}
		} else if clauseBoundary(p.cur.Type) {
			return nodes, nil
		}

		switch p.cur.Type {
		case TokenLParen:
			p.next()
			children, err := p.parseNodeSequence(true)
			if err != nil {
				return nil, err
			}
			if p.cur.Type != TokenRParen {
				return nil, newParseError(p.cur, "unclosed bracket", ")")
			}
			p.next()
			nodes = append(nodes, ast.Node{Kind: ast.KindBracketExpression, SubTree: children})

		case TokenAND, TokenOR, TokenLIKE,
			TokenEQ, TokenNE, TokenGT, TokenLT, TokenGE, TokenLE,
			TokenPlus, TokenAsterisk, TokenSlash:
			nodes = append(nodes, ast.Node{Kind: ast.KindOperator, BaseExpr: p.cur.Value})
			p.next()

		case TokenMinus:
			// A minus in value position (start of run or right after an
			// operator) signs the following number; elsewhere it is the
			// binary subtraction operator.
			if p.peek.Type == TokenNumber &&
				(len(nodes) == 0 || nodes[len(nodes)-1].Kind == ast.KindOperator) {
				node, err := p.parseValueNode()
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, node)
				continue
			}
			nodes = append(nodes, ast.Node{Kind: ast.KindOperator, BaseExpr: p.cur.Value})
			p.next()

		case TokenIN:
			nodes = append(nodes, ast.Node{Kind: ast.KindOperator, BaseExpr: p.cur.Value})
			p.next()
			list, err := p.parseInList()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, list)

		default:
			node, err := p.parseValueNode()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}
}

// parseInList parses the parenthesized value list following IN.
func (p *Parser) parseInList() (ast.Node, error) {
	if p.cur.Type != TokenLParen {
		return ast.Node{}, newParseError(p.cur, "IN must be followed by a value list", "(")
	}
	p.next()

	var values []ast.Node
	for p.cur.Type != TokenRParen {
		if p.cur.Type == TokenComma {
			p.next()
			continue
		}
		if p.cur.Type == TokenEOF {
			return ast.Node{}, newParseError(p.cur, "unclosed IN list", ")")
		}
		val, err := p.parseValueNode()
		if err != nil {
			return ast.Node{}, err
		}
		values = append(values, val)
	}
	p.next() // )

	return ast.Node{Kind: ast.KindInList, SubTree: values}, nil
}

// parseValueNode parses a single constant, reserved word, or column
// reference.
func (p *Parser) parseValueNode() (ast.Node, error) {
	switch p.cur.Type {
	case TokenNumber, TokenString:
		node := ast.Node{Kind: ast.KindConst, BaseExpr: p.cur.Value}
		p.next()
		return node, nil
	case TokenMinus:
		if p.peek.Type != TokenNumber {
			return ast.Node{}, newParseError(p.cur, "minus is not followed by a number", "number")
		}
		p.next()
		node := ast.Node{Kind: ast.KindConst, BaseExpr: "-" + p.cur.Value}
		p.next()
		return node, nil
	case TokenTRUE, TokenFALSE:
		node := ast.Node{Kind: ast.KindReserved, BaseExpr: p.cur.Value}
		p.next()
		return node, nil
	case TokenIdent:
		return p.parseQualifiedRef()
	case TokenIllegal:
		return ast.Node{}, newParseError(p.cur, "illegal token")
	default:
		return ast.Node{}, newParseError(p.cur, "unexpected token", "constant", "column")
	}
}

// parseOrderList parses the ORDER BY entries. A bare name matching a
// select-list alias becomes an alias node; everything else is a column
// reference.
func (p *Parser) parseOrderList() ([]ast.Node, error) {
	var items []ast.Node
	for {
		if p.cur.Type != TokenIdent {
			return nil, newParseError(p.cur, "invalid ORDER entry", "column")
		}

		var node ast.Node
		if p.peek.Type != TokenDot && p.selectAliases[p.cur.Value] {
			node = ast.Node{Kind: ast.KindAlias, BaseExpr: p.cur.Value}
			p.next()
		} else {
			ref, err := p.parseQualifiedRef()
			if err != nil {
				return nil, err
			}
			node = ref
		}

		switch p.cur.Type {
		case TokenASC, TokenDESC:
			node.Direction = p.cur.Value
			p.next()
		}
		items = append(items, node)

		if p.cur.Type != TokenComma {
			break
		}
		p.next()
	}
	return items, nil
}

// parseLimit parses "LIMIT n", "LIMIT offset, n", and
// "LIMIT n OFFSET m".
func (p *Parser) parseLimit() (*ast.Limit, error) {
	first, err := p.parseCount()
	if err != nil {
		return nil, err
	}

	limit := &ast.Limit{RowCount: &first}

	switch p.cur.Type {
	case TokenComma:
		p.next()
		second, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		// MySQL form: LIMIT offset, rowcount.
		limit.Offset = limit.RowCount
		limit.RowCount = &second
	case TokenOFFSET:
		p.next()
		offset, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		limit.Offset = &offset
	}

	return limit, nil
}

func (p *Parser) parseCount() (int64, error) {
	if p.cur.Type != TokenNumber {
		return 0, newParseError(p.cur, "LIMIT takes integer counts", "integer")
	}
	n, err := strconv.ParseInt(p.cur.Value, 10, 64)
	if err != nil {
		return 0, newParseError(p.cur, "LIMIT count is not an integer")
	}
	p.next()
	return n, nil
}

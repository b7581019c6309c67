package translate

import (
	"strings"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
)

// bracketClass is the resolved semantic role of a bracket expression.
type bracketClass int

const (
	classCondition bracketClass = iota
	classGroup
	classExpression
)

// translateBracket disambiguates a parenthesized sub-tree and delegates
// to the matching handler. Classification happens independently at
// every nesting level, so arbitrarily deep nesting works as long as
// each level is operator-homogeneous.
func (t *Translator) translateBracket(node ast.Node, depth int) (any, error) {
	class, err := t.classifyBracket(node)
	if err != nil {
		return nil, err
	}

	switch class {
	case classCondition:
		return t.bracketCondition(node, depth)
	case classGroup:
		return t.bracketGroup(node, depth)
	default:
		return t.bracketExpression(node, depth)
	}
}

// classifyBracket scans the bracket's immediate operator children and
// intersects their tokens with the three catalog vocabularies. Exactly
// one vocabulary must match.
func (t *Translator) classifyBracket(node ast.Node) (bracketClass, error) {
	ops := operatorTokens(node.SubTree)

	var isCondition, isGroup, isExpression bool
	for _, op := range ops {
		if t.catalog.IsCondition(op) {
			isCondition = true
		}
		if t.catalog.IsGroup(op) {
			isGroup = true
		}
		if t.catalog.IsExpression(op) {
			isExpression = true
		}
	}

	matches := 0
	for _, hit := range []bool{isCondition, isGroup, isExpression} {
		if hit {
			matches++
		}
	}

	switch {
	case matches > 1:
		return 0, newError(KindClassification, ErrCodeAmbiguousOperatorMix,
			"operators %s mix categories; separate with parentheses", strings.Join(ops, " ")).
			withContext("operators", strings.Join(ops, " "))
	case matches == 0:
		return 0, newError(KindClassification, ErrCodeNoValidOperator,
			"bracket contains no operator from any vocabulary").
			withContext("operators", strings.Join(ops, " "))
	case isCondition:
		return classCondition, nil
	case isGroup:
		return classGroup, nil
	default:
		return classExpression, nil
	}
}

// operatorTokens collects the lower-cased tokens of immediate
// operator-kind children.
func operatorTokens(children []ast.Node) []string {
	var ops []string
	for _, child := range children {
		if child.Kind == ast.KindOperator {
			ops = append(ops, strings.ToLower(child.BaseExpr))
		}
	}
	return ops
}

// bracketCondition handles a bracket classified as a single
// comparison. The shape is fixed: operand, operator, operand, and the
// left operand must be a column reference.
func (t *Translator) bracketCondition(node ast.Node, depth int) (querydoc.Condition, error) {
	if len(node.SubTree) != 3 {
		return querydoc.Condition{}, newError(KindStructural, ErrCodeMalformedCondition,
			"condition has %d children, want operand, operator, operand", len(node.SubTree))
	}

	left, err := t.translate(node.SubTree[0], depth+1)
	if err != nil {
		return querydoc.Condition{}, err
	}
	prop, ok := left.(*querydoc.Property)
	if !ok || prop == nil {
		return querydoc.Condition{}, newError(KindStructural, ErrCodeMalformedCondition,
			"condition left operand must be a column reference")
	}

	op, err := t.translate(node.SubTree[1], depth+1)
	if err != nil {
		return querydoc.Condition{}, err
	}
	operator, ok := op.(string)
	if !ok {
		return querydoc.Condition{}, newError(KindStructural, ErrCodeMalformedCondition,
			"condition middle child is not an operator")
	}

	value, err := t.translate(node.SubTree[2], depth+1)
	if err != nil {
		return querydoc.Condition{}, err
	}
	if err := checkConditionValue(value); err != nil {
		return querydoc.Condition{}, err
	}

	return querydoc.Condition{
		Resource: prop.Resource,
		Property: prop.Property,
		Operator: operator,
		Value:    value,
	}, nil
}

// checkConditionValue enforces the data model: a condition value is a
// constant or an ordered list of constants, never a column reference.
func checkConditionValue(value any) error {
	switch v := value.(type) {
	case int64, float64, bool, string:
		return nil
	case []any:
		for _, elem := range v {
			if err := checkConditionValue(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return newError(KindStructural, ErrCodeMalformedCondition,
			"condition right operand must be a constant or value list")
	}
}

// bracketGroup handles a bracket classified as a boolean combination.
// All operator children must collapse to one distinct token; the
// non-operator children become the group's ordered members.
func (t *Translator) bracketGroup(node ast.Node, depth int) (querydoc.Group, error) {
	ops := operatorTokens(node.SubTree)
	distinct := make(map[string]struct{}, 1)
	for _, op := range ops {
		distinct[op] = struct{}{}
	}
	if len(distinct) != 1 {
		return querydoc.Group{}, newError(KindClassification, ErrCodeMixedGroupOperators,
			"group mixes boolean operators %s; separate with parentheses", strings.Join(ops, " ")).
			withContext("operators", strings.Join(ops, " "))
	}

	group := querydoc.Group{GroupOperator: ops[0]}
	for _, child := range node.SubTree {
		if child.Kind == ast.KindOperator {
			continue
		}
		frag, err := t.translate(child, depth+1)
		if err != nil {
			return querydoc.Group{}, err
		}
		filter, ok := frag.(querydoc.Filter)
		if !ok {
			return querydoc.Group{}, newError(KindStructural, ErrCodeMalformedCondition,
				"group member is not a condition or nested group")
		}
		group.Conditions = append(group.Conditions, filter)
	}
	return group, nil
}

// bracketExpression handles a bracket classified as arithmetic. The
// first operator child names the operation; non-operator children
// become the ordered operands. The alias is required because an
// unaliased expression cannot be referenced in output.
func (t *Translator) bracketExpression(node ast.Node, depth int) (querydoc.Expression, error) {
	alias := node.AliasName()
	if alias == "" {
		return querydoc.Expression{}, newError(KindConstraint, ErrCodeUnaliasedExpression,
			"expression requires an alias")
	}

	ops := operatorTokens(node.SubTree)
	operands, err := t.translateOperands(node.SubTree, depth)
	if err != nil {
		return querydoc.Expression{}, err
	}

	return querydoc.Expression{
		Operator: ops[0],
		Operands: operands,
		Alias:    alias,
	}, nil
}

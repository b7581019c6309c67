package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
)

func bracket(children ...ast.Node) ast.Node {
	return ast.Node{Kind: ast.KindBracketExpression, SubTree: children}
}

func TestBracket_Condition(t *testing.T) {
	tr := newTestTranslator(t)

	frag, err := tr.Translate(bracket(colref("something"), op("LIKE"), constant("'%whatever'")))
	require.NoError(t, err)
	assert.Equal(t, querydoc.Condition{
		Resource: "t",
		Property: "something",
		Operator: "like",
		Value:    "%whatever",
	}, frag)
}

func TestBracket_ConditionWithQualifiedColumn(t *testing.T) {
	tr := newTestTranslator(t)

	frag, err := tr.Translate(bracket(colref("u", "age"), op(">="), constant("21")))
	require.NoError(t, err)
	cond := frag.(querydoc.Condition)
	assert.Equal(t, "u", cond.Resource)
	assert.Equal(t, int64(21), cond.Value)
}

func TestBracket_ConditionWithInList(t *testing.T) {
	tr := newTestTranslator(t)

	list := ast.Node{Kind: ast.KindInList, SubTree: []ast.Node{constant("1"), constant("2")}}
	frag, err := tr.Translate(bracket(colref("status"), op("IN"), list))
	require.NoError(t, err)
	cond := frag.(querydoc.Condition)
	assert.Equal(t, "in", cond.Operator)
	assert.Equal(t, []any{int64(1), int64(2)}, cond.Value)
}

func TestBracket_ConditionShapeErrors(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("too few children", func(t *testing.T) {
		_, err := tr.Translate(bracket(colref("a"), op("=")))
		assert.True(t, IsCode(err, ErrCodeMalformedCondition))
	})

	t.Run("left operand is a constant", func(t *testing.T) {
		_, err := tr.Translate(bracket(constant("1"), op("="), constant("2")))
		assert.True(t, IsCode(err, ErrCodeMalformedCondition))
	})

	t.Run("left operand is a wildcard", func(t *testing.T) {
		_, err := tr.Translate(bracket(colref("*"), op("="), constant("2")))
		assert.True(t, IsCode(err, ErrCodeMalformedCondition))
	})

	t.Run("right operand is a column reference", func(t *testing.T) {
		_, err := tr.Translate(bracket(colref("a"), op("="), colref("b")))
		assert.True(t, IsCode(err, ErrCodeMalformedCondition))
	})

	t.Run("in list containing a column reference", func(t *testing.T) {
		list := ast.Node{Kind: ast.KindInList, SubTree: []ast.Node{constant("1"), colref("b")}}
		_, err := tr.Translate(bracket(colref("a"), op("IN"), list))
		assert.True(t, IsCode(err, ErrCodeMalformedCondition))
	})

	t.Run("boolean right operand is allowed", func(t *testing.T) {
		frag, err := tr.Translate(bracket(
			colref("active"), op("="), ast.Node{Kind: ast.KindReserved, BaseExpr: "TRUE"}))
		require.NoError(t, err)
		assert.Equal(t, true, frag.(querydoc.Condition).Value)
	})
}

func TestBracket_Group(t *testing.T) {
	tr := newTestTranslator(t)

	frag, err := tr.Translate(bracket(
		bracket(colref("a"), op("="), constant("1")),
		op("OR"),
		bracket(colref("b"), op("="), constant("2")),
	))
	require.NoError(t, err)
	group := frag.(querydoc.Group)
	assert.Equal(t, "or", group.GroupOperator)
	require.Len(t, group.Conditions, 2)
	assert.Equal(t, querydoc.Condition{Resource: "t", Property: "a", Operator: "=", Value: int64(1)}, group.Conditions[0])
}

func TestBracket_NestedGroups(t *testing.T) {
	tr := newTestTranslator(t)

	frag, err := tr.Translate(bracket(
		bracket(
			bracket(colref("a"), op("="), constant("1")),
			op("AND"),
			bracket(colref("b"), op("="), constant("2")),
		),
		op("OR"),
		bracket(colref("c"), op("="), constant("3")),
	))
	require.NoError(t, err)
	outer := frag.(querydoc.Group)
	assert.Equal(t, "or", outer.GroupOperator)
	require.Len(t, outer.Conditions, 2)

	inner, ok := outer.Conditions[0].(querydoc.Group)
	require.True(t, ok)
	assert.Equal(t, "and", inner.GroupOperator)
	assert.Len(t, inner.Conditions, 2)
}

func TestBracket_MixedGroupOperators(t *testing.T) {
	tr := newTestTranslator(t)

	_, err := tr.Translate(bracket(
		bracket(colref("a"), op("="), constant("1")),
		op("AND"),
		bracket(colref("b"), op("="), constant("2")),
		op("OR"),
		bracket(colref("c"), op("="), constant("3")),
	))
	assert.True(t, IsCode(err, ErrCodeMixedGroupOperators))
	assert.Equal(t, KindClassification, KindOf(err))
}

func TestBracket_GroupMemberNotAFilter(t *testing.T) {
	tr := newTestTranslator(t)

	_, err := tr.Translate(bracket(
		bracket(colref("a"), op("="), constant("1")),
		op("AND"),
		constant("5"),
	))
	assert.True(t, IsCode(err, ErrCodeMalformedCondition))
}

func TestBracket_Expression(t *testing.T) {
	tr := newTestTranslator(t)

	node := bracket(colref("object_id"), op("+"), constant("4"))
	node.Alias = &ast.Alias{Name: "shifted"}

	frag, err := tr.Translate(node)
	require.NoError(t, err)
	expr := frag.(querydoc.Expression)
	assert.Equal(t, "+", expr.Operator)
	assert.Equal(t, "shifted", expr.Alias)
	assert.Equal(t, []any{
		querydoc.Property{Resource: "t", Property: "object_id"},
		int64(4),
	}, expr.Operands)
}

func TestBracket_ExpressionRequiresAlias(t *testing.T) {
	tr := newTestTranslator(t)
	_, err := tr.Translate(bracket(colref("object_id"), op("+"), constant("4")))
	assert.True(t, IsCode(err, ErrCodeUnaliasedExpression))
	assert.Equal(t, KindConstraint, KindOf(err))
}

func TestBracket_AmbiguousOperatorMix(t *testing.T) {
	tr := newTestTranslator(t)

	// "=" is a condition operator, "+" an expression operator.
	_, err := tr.Translate(bracket(colref("a"), op("="), constant("1"), op("+"), constant("2")))
	assert.True(t, IsCode(err, ErrCodeAmbiguousOperatorMix))
	assert.Equal(t, KindClassification, KindOf(err))
}

func TestBracket_NoValidOperator(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("unknown operator token", func(t *testing.T) {
		_, err := tr.Translate(bracket(colref("a"), op("%"), constant("2")))
		assert.True(t, IsCode(err, ErrCodeNoValidOperator))
	})

	t.Run("no operators at all", func(t *testing.T) {
		_, err := tr.Translate(bracket(colref("a"), constant("2")))
		assert.True(t, IsCode(err, ErrCodeNoValidOperator))
	})
}

func TestBracket_ClassificationIsCaseInsensitive(t *testing.T) {
	tr := newTestTranslator(t)

	frag, err := tr.Translate(bracket(colref("a"), op("Like"), constant("'x%'")))
	require.NoError(t, err)
	cond := frag.(querydoc.Condition)
	assert.Equal(t, "like", cond.Operator)
}

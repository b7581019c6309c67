package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
	"github.com/querybridge/querybridge/internal/sqlparser"
)

func newTestBuilder(t *testing.T, allowJoins bool) *Builder {
	t.Helper()
	return NewBuilder(testCatalog(t), allowJoins, 0)
}

func mustParse(t *testing.T, sql string) *ast.Statement {
	t.Helper()
	stmt, err := sqlparser.Parse(sql)
	require.NoError(t, err)
	return stmt
}

func TestBuild_BasicStatement(t *testing.T) {
	b := newTestBuilder(t, false)

	stmt := mustParse(t, "SELECT record_number FROM tablename t WHERE something LIKE '%whatever'")
	doc, err := b.Build(stmt, "")
	require.NoError(t, err)

	assert.Equal(t, []querydoc.Resource{{ID: "tablename", Alias: "t"}}, doc.Resources)
	assert.Equal(t, []querydoc.Selectable{
		querydoc.Property{Resource: "t", Property: "record_number"},
	}, doc.Properties)
	assert.Equal(t, []querydoc.Filter{
		querydoc.Condition{Resource: "t", Property: "something", Operator: "like", Value: "%whatever"},
	}, doc.Conditions)
	assert.Nil(t, doc.Limit)
	assert.Nil(t, doc.Offset)
}

func TestBuild_ExternalResource(t *testing.T) {
	b := newTestBuilder(t, false)

	stmt := mustParse(t, "SELECT record_number WHERE something LIKE '%whatever'")
	doc, err := b.Build(stmt, "tablename")
	require.NoError(t, err)
	assert.Equal(t, []querydoc.Resource{{ID: "tablename", Alias: "t"}}, doc.Resources)
}

func TestBuild_ConflictingResource(t *testing.T) {
	b := newTestBuilder(t, false)

	stmt := mustParse(t, "SELECT a FROM x")
	_, err := b.Build(stmt, "y")
	assert.True(t, IsCode(err, ErrCodeConflictingResource))
	assert.Equal(t, KindPolicy, KindOf(err))
}

func TestBuild_JoinPolicy(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM x, y")

	t.Run("disabled", func(t *testing.T) {
		_, err := newTestBuilder(t, false).Build(stmt, "")
		assert.True(t, IsCode(err, ErrCodeTooManyResources))
	})

	t.Run("enabled but unimplemented", func(t *testing.T) {
		_, err := newTestBuilder(t, true).Build(stmt, "")
		assert.True(t, IsCode(err, ErrCodeJoinsNotSupported))
	})
}

func TestBuild_WildcardSelectVanishes(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t, "SELECT * FROM x"), "")
	require.NoError(t, err)
	assert.Nil(t, doc.Properties)

	doc, err = b.Build(mustParse(t, "SELECT *, a FROM x"), "")
	require.NoError(t, err)
	assert.Equal(t, []querydoc.Selectable{
		querydoc.Property{Resource: "t", Property: "a"},
	}, doc.Properties)
}

func TestBuild_SelectExpressionAndAggregate(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t,
		"SELECT (object_id + 4) AS shifted, count(object_id) AS total FROM x"), "")
	require.NoError(t, err)
	require.Len(t, doc.Properties, 2)

	expr := doc.Properties[0].(querydoc.Expression)
	assert.Equal(t, "+", expr.Operator)
	assert.Equal(t, "shifted", expr.Alias)

	agg := doc.Properties[1].(querydoc.Expression)
	assert.Equal(t, "count", agg.Operator)
	assert.Equal(t, "total", agg.Alias)
}

func TestBuild_WhereSingleComparison(t *testing.T) {
	b := newTestBuilder(t, false)

	// A lone bracketed comparison stays a single condition.
	doc, err := b.Build(mustParse(t, "SELECT a FROM x WHERE (a = 1)"), "")
	require.NoError(t, err)
	require.Len(t, doc.Conditions, 1)
	assert.IsType(t, querydoc.Condition{}, doc.Conditions[0])
}

func TestBuild_WhereImplicitAndFlattens(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t,
		"SELECT a FROM x WHERE (a LIKE '%w') AND (b = 2) AND (c > 3)"), "")
	require.NoError(t, err)

	// Top-level AND members land directly in the conditions array.
	require.Len(t, doc.Conditions, 3)
	for _, f := range doc.Conditions {
		assert.IsType(t, querydoc.Condition{}, f)
	}
}

func TestBuild_WhereOrGroupStaysNested(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t, "SELECT a FROM x WHERE (a = 1) OR (b = 2)"), "")
	require.NoError(t, err)
	require.Len(t, doc.Conditions, 1)

	group, ok := doc.Conditions[0].(querydoc.Group)
	require.True(t, ok)
	assert.Equal(t, "or", group.GroupOperator)
	assert.Len(t, group.Conditions, 2)
}

func TestBuild_WhereNegativeValue(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t, "SELECT a FROM x WHERE x = -5"), "")
	require.NoError(t, err)
	require.Len(t, doc.Conditions, 1)
	cond := doc.Conditions[0].(querydoc.Condition)
	assert.Equal(t, int64(-5), cond.Value)
}

func TestBuild_WhereColumnComparisonRejected(t *testing.T) {
	b := newTestBuilder(t, false)

	// A column on the right has no document representation; it must
	// fail here rather than produce a value serialization cannot handle.
	_, err := b.Build(mustParse(t, "SELECT a FROM x WHERE a = b"), "")
	assert.True(t, IsCode(err, ErrCodeMalformedCondition))
}

func TestBuild_WhereMixedAndOrWithoutBrackets(t *testing.T) {
	b := newTestBuilder(t, false)

	_, err := b.Build(mustParse(t,
		"SELECT a FROM x WHERE (a = 1) AND (b = 2) OR (c = 3)"), "")
	assert.True(t, IsCode(err, ErrCodeMixedGroupOperators))
}

func TestBuild_WhereNestedDisambiguation(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t,
		"SELECT a FROM x WHERE ((a = 1) OR (b = 2)) AND (c = 3)"), "")
	require.NoError(t, err)

	// The AND flattens; the OR survives as a nested group entry.
	require.Len(t, doc.Conditions, 2)
	group, ok := doc.Conditions[0].(querydoc.Group)
	require.True(t, ok)
	assert.Equal(t, "or", group.GroupOperator)
	assert.IsType(t, querydoc.Condition{}, doc.Conditions[1])
}

func TestBuild_NoWhere(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t, "SELECT a FROM x"), "")
	require.NoError(t, err)
	assert.Nil(t, doc.Conditions)
}

func TestBuild_EmptyWhere(t *testing.T) {
	b := newTestBuilder(t, false)

	stmt := &ast.Statement{
		Select: []ast.Node{{Kind: ast.KindColRef, BaseExpr: "a"}},
		Where:  []ast.Node{},
	}
	_, err := b.Build(stmt, "x")
	assert.True(t, IsCode(err, ErrCodeInvalidWhereClause))
}

func TestBuild_LimitOffsetPreserved(t *testing.T) {
	b := newTestBuilder(t, false)

	t.Run("explicit zero offset", func(t *testing.T) {
		doc, err := b.Build(mustParse(t, "SELECT a FROM x LIMIT 5 OFFSET 0"), "")
		require.NoError(t, err)
		require.NotNil(t, doc.Limit)
		assert.Equal(t, int64(5), *doc.Limit)
		require.NotNil(t, doc.Offset)
		assert.Equal(t, int64(0), *doc.Offset)
	})

	t.Run("absent stays absent", func(t *testing.T) {
		doc, err := b.Build(mustParse(t, "SELECT a FROM x"), "")
		require.NoError(t, err)
		assert.Nil(t, doc.Limit)
		assert.Nil(t, doc.Offset)
	})

	t.Run("limit without offset", func(t *testing.T) {
		doc, err := b.Build(mustParse(t, "SELECT a FROM x LIMIT 7"), "")
		require.NoError(t, err)
		assert.Equal(t, int64(7), *doc.Limit)
		assert.Nil(t, doc.Offset)
	})
}

func TestBuild_Sorts(t *testing.T) {
	b := newTestBuilder(t, false)

	doc, err := b.Build(mustParse(t,
		"SELECT a, b AS label FROM x ORDER BY a DESC, label"), "")
	require.NoError(t, err)
	require.Len(t, doc.Sorts, 2)
	assert.Equal(t, querydoc.Property{Resource: "t", Property: "a", Order: "desc"}, doc.Sorts[0])
	// Alias entries carry no resource qualifier.
	assert.Equal(t, querydoc.Property{Property: "label"}, doc.Sorts[1])
}

func TestBuild_SortOnWildcard(t *testing.T) {
	b := newTestBuilder(t, false)

	stmt := mustParse(t, "SELECT a FROM x")
	stmt.Order = []ast.Node{{Kind: ast.KindColRef, BaseExpr: "*", NoQuotes: &ast.Path{Parts: []string{"*"}}}}
	_, err := b.Build(stmt, "")
	assert.True(t, IsCode(err, ErrCodeInvalidOrderClause))
}

package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
	"github.com/querybridge/querybridge/internal/schema"
)

func testCatalog(t *testing.T) schema.Catalog {
	t.Helper()
	s, err := schema.Load(schema.DefaultConfig)
	require.NoError(t, err)
	return s.Catalog()
}

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	return NewTranslator(testCatalog(t), 0)
}

func colref(parts ...string) ast.Node {
	return ast.Node{Kind: ast.KindColRef, BaseExpr: strJoin(parts), NoQuotes: &ast.Path{Parts: parts}}
}

func op(token string) ast.Node {
	return ast.Node{Kind: ast.KindOperator, BaseExpr: token}
}

func constant(raw string) ast.Node {
	return ast.Node{Kind: ast.KindConst, BaseExpr: raw}
}

func strJoin(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func TestTranslate_Table(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("aliased", func(t *testing.T) {
		frag, err := tr.Translate(ast.Node{
			Kind:     ast.KindTable,
			BaseExpr: "tablename",
			NoQuotes: &ast.Path{Parts: []string{"tablename"}},
			Alias:    &ast.Alias{Name: "x"},
		})
		require.NoError(t, err)
		assert.Equal(t, querydoc.Resource{ID: "tablename", Alias: "x"}, frag)
	})

	t.Run("unaliased gets default alias", func(t *testing.T) {
		frag, err := tr.Translate(ast.Node{Kind: ast.KindTable, BaseExpr: "tablename"})
		require.NoError(t, err)
		assert.Equal(t, querydoc.Resource{ID: "tablename", Alias: "t"}, frag)
	})
}

func TestTranslate_ColRef(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("bare", func(t *testing.T) {
		frag, err := tr.Translate(colref("record_number"))
		require.NoError(t, err)
		prop := frag.(*querydoc.Property)
		require.NotNil(t, prop)
		assert.Equal(t, querydoc.Property{Resource: "t", Property: "record_number"}, *prop)
	})

	t.Run("qualified", func(t *testing.T) {
		frag, err := tr.Translate(colref("u", "name"))
		require.NoError(t, err)
		prop := frag.(*querydoc.Property)
		assert.Equal(t, "u", prop.Resource)
		assert.Equal(t, "name", prop.Property)
	})

	t.Run("aliased with direction", func(t *testing.T) {
		node := colref("age")
		node.Alias = &ast.Alias{Name: "years"}
		node.Direction = "DESC"
		frag, err := tr.Translate(node)
		require.NoError(t, err)
		prop := frag.(*querydoc.Property)
		assert.Equal(t, "years", prop.Alias)
		assert.Equal(t, "desc", prop.Order)
	})

	t.Run("wildcards vanish", func(t *testing.T) {
		for _, parts := range [][]string{{"*"}, {"t", "*"}} {
			frag, err := tr.Translate(colref(parts...))
			require.NoError(t, err)
			prop := frag.(*querydoc.Property)
			assert.Nil(t, prop)
		}
	})
}

func TestTranslate_Alias(t *testing.T) {
	tr := newTestTranslator(t)
	frag, err := tr.Translate(ast.Node{Kind: ast.KindAlias, BaseExpr: "label", Direction: "ASC"})
	require.NoError(t, err)
	assert.Equal(t, querydoc.Property{Property: "label", Order: "asc"}, frag)
}

func TestTranslate_Reserved(t *testing.T) {
	tr := newTestTranslator(t)

	for _, tt := range []struct {
		raw  string
		want bool
	}{
		{"TRUE", true}, {"true", true}, {"False", false}, {"FALSE", false},
	} {
		frag, err := tr.Translate(ast.Node{Kind: ast.KindReserved, BaseExpr: tt.raw})
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, frag, tt.raw)
	}

	_, err := tr.Translate(ast.Node{Kind: ast.KindReserved, BaseExpr: "NULL"})
	assert.True(t, IsCode(err, ErrCodeUnknownReservedWord))
	assert.Equal(t, KindConstraint, KindOf(err))
}

func TestTranslate_Constants(t *testing.T) {
	tr := newTestTranslator(t)

	tests := []struct {
		raw  string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		// Leading zeros are decimal, never octal.
		{"010", int64(10)},
		{"09", int64(9)},
		{"3.25", 3.25},
		{"'%whatever'", "%whatever"},
		{`"quoted"`, "quoted"},
		{"`ticked`", "ticked"},
		{"bareword", "bareword"},
		{"'unbalanced", "'unbalanced"},
	}
	for _, tt := range tests {
		frag, err := tr.Translate(constant(tt.raw))
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, frag, tt.raw)
	}
}

func TestTranslate_OperatorLowercased(t *testing.T) {
	tr := newTestTranslator(t)
	frag, err := tr.Translate(op("LIKE"))
	require.NoError(t, err)
	assert.Equal(t, "like", frag)
}

func TestTranslate_InList(t *testing.T) {
	tr := newTestTranslator(t)
	frag, err := tr.Translate(ast.Node{
		Kind:    ast.KindInList,
		SubTree: []ast.Node{constant("1"), constant("2.5"), constant("'three'")},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), 2.5, "three"}, frag)
}

func TestTranslate_Aggregate(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("aliased", func(t *testing.T) {
		frag, err := tr.Translate(ast.Node{
			Kind:     ast.KindAggregateFunction,
			BaseExpr: "COUNT",
			Alias:    &ast.Alias{Name: "total"},
			SubTree:  []ast.Node{colref("object_id")},
		})
		require.NoError(t, err)
		expr := frag.(querydoc.Expression)
		assert.Equal(t, "count", expr.Operator)
		assert.Equal(t, "total", expr.Alias)
		require.Len(t, expr.Operands, 1)
		assert.Equal(t, querydoc.Property{Resource: "t", Property: "object_id"}, expr.Operands[0])
	})

	t.Run("missing alias", func(t *testing.T) {
		_, err := tr.Translate(ast.Node{
			Kind:     ast.KindAggregateFunction,
			BaseExpr: "count",
			SubTree:  []ast.Node{colref("object_id")},
		})
		assert.True(t, IsCode(err, ErrCodeUnaliasedExpression))
	})

	t.Run("no operands", func(t *testing.T) {
		_, err := tr.Translate(ast.Node{
			Kind:     ast.KindAggregateFunction,
			BaseExpr: "count",
			Alias:    &ast.Alias{Name: "total"},
		})
		assert.True(t, IsCode(err, ErrCodeEmptyAggregate))
	})

	t.Run("wildcard operand counts as empty", func(t *testing.T) {
		_, err := tr.Translate(ast.Node{
			Kind:     ast.KindAggregateFunction,
			BaseExpr: "count",
			Alias:    &ast.Alias{Name: "total"},
			SubTree:  []ast.Node{colref("*")},
		})
		assert.True(t, IsCode(err, ErrCodeEmptyAggregate))
	})
}

func TestTranslate_UnsupportedKind(t *testing.T) {
	tr := newTestTranslator(t)
	_, err := tr.Translate(ast.Node{Kind: ast.Kind("subquery")})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeUnsupportedNodeKind))
	assert.Equal(t, KindStructural, KindOf(err))
}

func TestTranslate_MaxDepth(t *testing.T) {
	tr := NewTranslator(testCatalog(t), 4)

	// Nest in-lists beyond the bound.
	node := constant("1")
	for i := 0; i < 6; i++ {
		node = ast.Node{Kind: ast.KindInList, SubTree: []ast.Node{node}}
	}
	_, err := tr.Translate(node)
	assert.True(t, IsCode(err, ErrCodeMaxDepthExceeded))

	// Shallow trees pass under the same bound.
	_, err = tr.Translate(ast.Node{Kind: ast.KindInList, SubTree: []ast.Node{constant("1")}})
	assert.NoError(t, err)
}

func TestErrorString(t *testing.T) {
	err := newError(KindPolicy, ErrCodeTooManyResources, "too many").
		withContext("count", "3").
		withContext("allow", "false")
	assert.Equal(t, "TOO_MANY_RESOURCES: too many (allow=false, count=3)", err.Error())

	bare := newError(KindStructural, ErrCodeInvalidWhereClause, "empty")
	assert.Equal(t, "INVALID_WHERE_CLAUSE: empty", bare.Error())
}

func TestCodeOf_NonTranslationError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(assert.AnError))
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
	assert.False(t, IsCode(assert.AnError, ErrCodeInvalidWhereClause))
}

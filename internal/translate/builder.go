package translate

import (
	"github.com/querybridge/querybridge/internal/ast"
	"github.com/querybridge/querybridge/internal/querydoc"
	"github.com/querybridge/querybridge/internal/schema"
)

// Builder assembles a full parsed statement into an unvalidated query
// document. The caller finalizes the result against the schema
// (querydoc.Finalize), which populates defaults and validates.
type Builder struct {
	translator *Translator
	allowJoins bool
}

// NewBuilder builds a Builder over the given catalog. allowJoins
// admits multi-resource FROM clauses past the resource-count policy;
// the join translation itself is an unimplemented feature gap and
// still fails, just with a distinct code.
func NewBuilder(catalog schema.Catalog, allowJoins bool, maxDepth int) *Builder {
	return &Builder{
		translator: NewTranslator(catalog, maxDepth),
		allowJoins: allowJoins,
	}
}

// Build assembles the statement's clauses into a document. resourceID
// optionally names the data source externally; it is mutually
// exclusive with a FROM clause.
func (b *Builder) Build(stmt *ast.Statement, resourceID string) (querydoc.Document, error) {
	var doc querydoc.Document

	resources, err := b.buildResources(stmt, resourceID)
	if err != nil {
		return querydoc.Document{}, err
	}
	doc.Resources = resources

	properties, err := b.buildProperties(stmt.Select)
	if err != nil {
		return querydoc.Document{}, err
	}
	doc.Properties = properties

	conditions, err := b.buildConditions(stmt.Where)
	if err != nil {
		return querydoc.Document{}, err
	}
	doc.Conditions = conditions

	if stmt.Limit != nil {
		// Pointers are copied as-is: an explicit zero stays distinct
		// from an absent clause.
		doc.Limit = stmt.Limit.RowCount
		doc.Offset = stmt.Limit.Offset
	}

	sorts, err := b.buildSorts(stmt.Order)
	if err != nil {
		return querydoc.Document{}, err
	}
	doc.Sorts = sorts

	return doc, nil
}

// buildResources resolves the data sources from either the external
// resource id or the FROM clause, never both.
func (b *Builder) buildResources(stmt *ast.Statement, resourceID string) ([]querydoc.Resource, error) {
	if resourceID != "" && len(stmt.From) > 0 {
		return nil, newError(KindPolicy, ErrCodeConflictingResource,
			"both an external resource id and a FROM clause were supplied").
			withContext("resource", resourceID)
	}

	if resourceID != "" {
		return []querydoc.Resource{{ID: resourceID, Alias: querydoc.DefaultResourceAlias}}, nil
	}

	switch len(stmt.From) {
	case 0:
		return nil, nil
	case 1:
		// fall through to translation below
	default:
		if !b.allowJoins {
			return nil, newError(KindPolicy, ErrCodeTooManyResources,
				"FROM names %d resources but joins are disabled", len(stmt.From))
		}
		return nil, newError(KindPolicy, ErrCodeJoinsNotSupported,
			"joins are not implemented yet")
	}

	frag, err := b.translator.Translate(stmt.From[0])
	if err != nil {
		return nil, err
	}
	res, ok := frag.(querydoc.Resource)
	if !ok {
		return nil, newError(KindStructural, ErrCodeUnsupportedNodeKind,
			"FROM entry is not a table reference").
			withContext("kind", string(stmt.From[0].Kind))
	}
	return []querydoc.Resource{res}, nil
}

// buildProperties translates the select list. Wildcard items
// contribute nothing: they are filtered out, not emitted as nulls.
func (b *Builder) buildProperties(items []ast.Node) ([]querydoc.Selectable, error) {
	var properties []querydoc.Selectable
	for _, item := range items {
		frag, err := b.translator.Translate(item)
		if err != nil {
			return nil, err
		}
		switch v := frag.(type) {
		case *querydoc.Property:
			if v != nil {
				properties = append(properties, *v)
			}
		case querydoc.Property:
			properties = append(properties, v)
		case querydoc.Expression:
			properties = append(properties, v)
		default:
			return nil, newError(KindStructural, ErrCodeUnsupportedNodeKind,
				"select item does not produce a property or expression").
				withContext("kind", string(item.Kind))
		}
	}
	return properties, nil
}

// buildConditions normalizes the WHERE clause.
//
// One top-level element is wrapped alone: it is itself a bracket
// expression that classification has already resolved. Multiple
// elements are wrapped in a synthetic bracket and classified as a
// whole; a resulting "and" group is flattened into the conditions
// array directly (the implicit AND at top level), while an "or" group
// or a single comparison is kept as one entry.
func (b *Builder) buildConditions(where []ast.Node) ([]querydoc.Filter, error) {
	if where == nil {
		return nil, nil
	}
	if len(where) == 0 {
		return nil, newError(KindStructural, ErrCodeInvalidWhereClause,
			"WHERE clause is empty")
	}

	if len(where) == 1 {
		frag, err := b.translator.Translate(where[0])
		if err != nil {
			return nil, err
		}
		filter, ok := frag.(querydoc.Filter)
		if !ok {
			return nil, newError(KindStructural, ErrCodeInvalidWhereClause,
				"WHERE clause does not reduce to a condition")
		}
		return []querydoc.Filter{filter}, nil
	}

	synthetic := ast.Node{Kind: ast.KindBracketExpression, SubTree: where}
	frag, err := b.translator.Translate(synthetic)
	if err != nil {
		return nil, err
	}

	switch v := frag.(type) {
	case querydoc.Group:
		if v.GroupOperator == "and" {
			return v.Conditions, nil
		}
		return []querydoc.Filter{v}, nil
	case querydoc.Condition:
		return []querydoc.Filter{v}, nil
	default:
		return nil, newError(KindStructural, ErrCodeInvalidWhereClause,
			"WHERE clause does not reduce to conditions")
	}
}

// buildSorts translates the ORDER clause. Every entry must reduce to a
// property; wildcards cannot be sorted on.
func (b *Builder) buildSorts(items []ast.Node) ([]querydoc.Property, error) {
	var sorts []querydoc.Property
	for _, item := range items {
		frag, err := b.translator.Translate(item)
		if err != nil {
			return nil, err
		}
		switch v := frag.(type) {
		case *querydoc.Property:
			if v == nil {
				return nil, newError(KindStructural, ErrCodeInvalidOrderClause,
					"ORDER entry is a wildcard")
			}
			sorts = append(sorts, *v)
		case querydoc.Property:
			sorts = append(sorts, v)
		default:
			return nil, newError(KindStructural, ErrCodeUnsupportedNodeKind,
				"ORDER entry does not produce a property").
				withContext("kind", string(item.Kind))
		}
	}
	return sorts, nil
}

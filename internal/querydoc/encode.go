package querydoc

import "fmt"

// AsMap converts the document to its plain-data form: the shape that is
// schema-validated and serialized. Empty clauses are omitted entirely
// rather than emitted as nulls or empty arrays; explicit zero limits
// and offsets are kept.
func (d Document) AsMap() (map[string]any, error) {
	m := make(map[string]any)

	if len(d.Properties) > 0 {
		props := make([]any, len(d.Properties))
		for i, p := range d.Properties {
			enc, err := encodeSelectable(p)
			if err != nil {
				return nil, fmt.Errorf("properties[%d]: %w", i, err)
			}
			props[i] = enc
		}
		m["properties"] = props
	}

	if len(d.Resources) > 0 {
		resources := make([]any, len(d.Resources))
		for i, r := range d.Resources {
			resources[i] = map[string]any{"id": r.ID, "alias": r.Alias}
		}
		m["resources"] = resources
	}

	if len(d.Conditions) > 0 {
		conditions := make([]any, len(d.Conditions))
		for i, f := range d.Conditions {
			enc, err := encodeFilter(f)
			if err != nil {
				return nil, fmt.Errorf("conditions[%d]: %w", i, err)
			}
			conditions[i] = enc
		}
		m["conditions"] = conditions
	}

	if d.Limit != nil {
		m["limit"] = *d.Limit
	}
	if d.Offset != nil {
		m["offset"] = *d.Offset
	}

	if len(d.Sorts) > 0 {
		sorts := make([]any, len(d.Sorts))
		for i, s := range d.Sorts {
			sorts[i] = encodeProperty(s)
		}
		m["sorts"] = sorts
	}

	return m, nil
}

// encodeSelectable converts a select-list entry to plain data.
func encodeSelectable(s Selectable) (map[string]any, error) {
	switch sel := s.(type) {
	case Property:
		return encodeProperty(sel), nil
	case *Property:
		return encodeProperty(*sel), nil
	case Expression:
		return encodeExpression(sel)
	case *Expression:
		return encodeExpression(*sel)
	default:
		return nil, fmt.Errorf("unsupported selectable type: %T", s)
	}
}

// encodeFilter converts a WHERE entry to plain data.
func encodeFilter(f Filter) (map[string]any, error) {
	switch flt := f.(type) {
	case Condition:
		return encodeCondition(flt), nil
	case *Condition:
		return encodeCondition(*flt), nil
	case Group:
		return encodeGroup(flt)
	case *Group:
		return encodeGroup(*flt)
	default:
		return nil, fmt.Errorf("unsupported filter type: %T", f)
	}
}

func encodeProperty(p Property) map[string]any {
	m := map[string]any{"property": p.Property}
	if p.Resource != "" {
		m["resource"] = p.Resource
	}
	if p.Alias != "" {
		m["alias"] = p.Alias
	}
	if p.Order != "" {
		m["order"] = p.Order
	}
	return m
}

func encodeCondition(c Condition) map[string]any {
	m := map[string]any{
		"property": c.Property,
		"operator": c.Operator,
		"value":    c.Value,
	}
	if c.Resource != "" {
		m["resource"] = c.Resource
	}
	return m
}

func encodeGroup(g Group) (map[string]any, error) {
	conditions := make([]any, len(g.Conditions))
	for i, f := range g.Conditions {
		enc, err := encodeFilter(f)
		if err != nil {
			return nil, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		conditions[i] = enc
	}
	return map[string]any{
		"groupOperator": g.GroupOperator,
		"conditions":    conditions,
	}, nil
}

func encodeExpression(e Expression) (map[string]any, error) {
	operands := make([]any, len(e.Operands))
	for i, op := range e.Operands {
		enc, err := encodeOperand(op)
		if err != nil {
			return nil, fmt.Errorf("operands[%d]: %w", i, err)
		}
		operands[i] = enc
	}
	m := map[string]any{
		"operator": e.Operator,
		"operands": operands,
	}
	if e.Alias != "" {
		m["alias"] = e.Alias
	}
	return m, nil
}

// encodeOperand converts a single expression operand. Operands are
// Property, nested Expression, or an already-coerced constant.
func encodeOperand(op any) (any, error) {
	switch v := op.(type) {
	case Property:
		return encodeProperty(v), nil
	case *Property:
		return encodeProperty(*v), nil
	case Expression:
		return encodeExpression(v)
	case *Expression:
		return encodeExpression(*v)
	default:
		return v, nil
	}
}

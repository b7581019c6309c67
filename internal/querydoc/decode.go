package querydoc

import (
	"fmt"

	"github.com/spf13/cast"
)

// Decoders for plain-data clause values, the mirror of encode.go. A
// schema may declare a root-level default for a clause; the declared
// value arrives as generic data and must become typed clause entries
// before it can live in a Document.

func decodeResources(v any) ([]Resource, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list: %T", v)
	}
	out := make([]Resource, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d]: not an object: %T", i, item)
		}
		out[i] = Resource{ID: cast.ToString(m["id"]), Alias: cast.ToString(m["alias"])}
	}
	return out, nil
}

func decodeSorts(v any) ([]Property, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list: %T", v)
	}
	out := make([]Property, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d]: not an object: %T", i, item)
		}
		out[i] = decodePropertyMap(m)
	}
	return out, nil
}

func decodeSelectables(v any) ([]Selectable, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list: %T", v)
	}
	out := make([]Selectable, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d]: not an object: %T", i, item)
		}
		// Expressions are the only selectables carrying operands.
		if rawOperands, isExpr := m["operands"]; isExpr {
			operands, ok := rawOperands.([]any)
			if !ok {
				return nil, fmt.Errorf("[%d]: operands is not a list: %T", i, rawOperands)
			}
			out[i] = Expression{
				Operator: cast.ToString(m["operator"]),
				Operands: operands,
				Alias:    cast.ToString(m["alias"]),
			}
			continue
		}
		out[i] = decodePropertyMap(m)
	}
	return out, nil
}

func decodeFilters(v any) ([]Filter, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list: %T", v)
	}
	out := make([]Filter, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("[%d]: not an object: %T", i, item)
		}
		// Groups are the only filters carrying a groupOperator.
		if _, isGroup := m["groupOperator"]; isGroup {
			nested, err := decodeFilters(m["conditions"])
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = Group{
				GroupOperator: cast.ToString(m["groupOperator"]),
				Conditions:    nested,
			}
			continue
		}
		out[i] = Condition{
			Resource: cast.ToString(m["resource"]),
			Property: cast.ToString(m["property"]),
			Operator: cast.ToString(m["operator"]),
			Value:    m["value"],
		}
	}
	return out, nil
}

func decodePropertyMap(m map[string]any) Property {
	return Property{
		Resource: cast.ToString(m["resource"]),
		Property: cast.ToString(m["property"]),
		Alias:    cast.ToString(m["alias"]),
		Order:    cast.ToString(m["order"]),
	}
}

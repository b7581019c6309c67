package schema

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
)

// Catalog holds the three schema-derived operator vocabularies used to
// classify bracket expressions. The sets are pairwise disjoint - the
// loader rejects a schema where any token appears in two vocabularies,
// because classification would be ambiguous.
//
// A Catalog is an immutable value: load it once and share it freely.
type Catalog struct {
	condition  map[string]struct{}
	group      map[string]struct{}
	expression map[string]struct{}
}

// Schema paths of the vocabulary lists.
const (
	conditionOpsPath  = "#conditionOperators"
	groupOpsPath      = "#groupOperators"
	expressionOpsPath = "#expressionOperators"
)

func loadCatalog(root cue.Value) (Catalog, error) {
	condition, err := loadOperatorSet(root, conditionOpsPath)
	if err != nil {
		return Catalog{}, err
	}
	group, err := loadOperatorSet(root, groupOpsPath)
	if err != nil {
		return Catalog{}, err
	}
	expression, err := loadOperatorSet(root, expressionOpsPath)
	if err != nil {
		return Catalog{}, err
	}

	c := Catalog{condition: condition, group: group, expression: expression}
	if err := c.checkDisjoint(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func loadOperatorSet(root cue.Value, path string) (map[string]struct{}, error) {
	val := root.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return nil, &LoadError{Code: ErrCodeSchemaInvalid, Message: fmt.Sprintf("schema does not define %s", path)}
	}
	var ops []string
	if err := val.Decode(&ops); err != nil {
		return nil, wrapCUEError(ErrCodeSchemaInvalid, err)
	}
	if len(ops) == 0 {
		return nil, &LoadError{Code: ErrCodeSchemaInvalid, Message: fmt.Sprintf("%s is empty", path)}
	}
	set := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set, nil
}

// checkDisjoint rejects any operator token present in more than one
// vocabulary.
func (c Catalog) checkDisjoint() error {
	for op := range c.condition {
		if _, ok := c.group[op]; ok {
			return overlapError(op, "condition", "group")
		}
		if _, ok := c.expression[op]; ok {
			return overlapError(op, "condition", "expression")
		}
	}
	for op := range c.group {
		if _, ok := c.expression[op]; ok {
			return overlapError(op, "group", "expression")
		}
	}
	return nil
}

func overlapError(op, a, b string) error {
	return &LoadError{
		Code:    ErrCodeOverlappingOperators,
		Message: fmt.Sprintf("operator %q appears in both the %s and %s vocabularies", op, a, b),
	}
}

// IsCondition reports whether op is a condition (comparison) operator.
func (c Catalog) IsCondition(op string) bool {
	_, ok := c.condition[op]
	return ok
}

// IsGroup reports whether op is a boolean group operator.
func (c Catalog) IsGroup(op string) bool {
	_, ok := c.group[op]
	return ok
}

// IsExpression reports whether op is an arithmetic or aggregate
// operator.
func (c Catalog) IsExpression(op string) bool {
	_, ok := c.expression[op]
	return ok
}

// ConditionOperators returns the condition vocabulary, sorted.
func (c Catalog) ConditionOperators() []string { return sortedKeys(c.condition) }

// GroupOperators returns the boolean group vocabulary, sorted.
func (c Catalog) GroupOperators() []string { return sortedKeys(c.group) }

// ExpressionOperators returns the arithmetic/aggregate vocabulary,
// sorted.
func (c Catalog) ExpressionOperators() []string { return sortedKeys(c.expression) }

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

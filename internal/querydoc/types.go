package querydoc

// Selectable is a select-list entry: a plain column reference or an
// aliased computation.
//
// Selectable types:
//   - Property: column reference, optionally aliased and ordered
//   - Expression: arithmetic or aggregate computation (alias required)
type Selectable interface {
	selectableNode() // Marker method - seals interface to this package
}

// Filter is a WHERE-clause entry.
//
// Filter types:
//   - Condition: single property-operator-value comparison
//   - Group: boolean combination of conditions or nested groups
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Resource names a data source (table equivalent) with its alias.
// DefaultResourceAlias is used when the statement supplies none.
type Resource struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

// DefaultResourceAlias is the sentinel alias assigned to an unaliased
// resource and to unqualified column references.
const DefaultResourceAlias = "t"

// Property is a column reference. A wildcard reference never produces
// a Property: the translator returns absence instead.
type Property struct {
	Resource string `json:"resource,omitempty"`
	Property string `json:"property"`
	Alias    string `json:"alias,omitempty"`
	Order    string `json:"order,omitempty"` // "asc" | "desc", ORDER clauses only
}

func (Property) selectableNode() {}

// Condition is a single comparison. Value is a coerced constant
// (int64, float64, bool, string) or an ordered []any for IN lists.
type Condition struct {
	Resource string `json:"resource,omitempty"`
	Property string `json:"property"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

func (Condition) filterNode() {}

// Group combines filters under exactly one boolean operator. Mixing
// "and" and "or" within one group requires an explicit nested bracket
// in the source SQL, which arrives here as a nested Group.
type Group struct {
	GroupOperator string   `json:"groupOperator"`
	Conditions    []Filter `json:"conditions"`
}

func (Group) filterNode() {}

// Expression is an arithmetic operator or aggregate function
// application. Alias is required: an expression without one cannot be
// referenced in output and is rejected during translation.
//
// Operands are ordered and may be Property, Expression, or a coerced
// constant.
type Expression struct {
	Operator string `json:"operator"`
	Operands []any  `json:"operands"`
	Alias    string `json:"alias"`
}

func (Expression) selectableNode() {}

// Document is the assembled query document. Empty fields are omitted
// from the serialized form. Limit and Offset are pointers so an
// explicit zero survives assembly (present-but-zero is distinct from
// absent).
//
// Joins are deliberately unrepresented: multi-resource statements fail
// during building, so a valid Document never carries one.
type Document struct {
	Properties []Selectable `json:"properties,omitempty"`
	Resources  []Resource   `json:"resources,omitempty"`
	Conditions []Filter     `json:"conditions,omitempty"`
	Limit      *int64       `json:"limit,omitempty"`
	Offset     *int64       `json:"offset,omitempty"`
	Sorts      []Property   `json:"sorts,omitempty"`
}

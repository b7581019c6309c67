// Package querydoc defines the schema-validated query document produced
// by translation.
//
// A Document is assembled by the builder, has root-level defaults
// populated from the schema, and is validated before being handed to
// the caller. After Finalize it is never mutated.
//
// The Selectable and Filter interfaces are sealed: only types in this
// package implement them. The marker method pattern prevents external
// implementations and enables exhaustive type switches in encoders.
package querydoc

// Package schema loads the query-document schema and derives the
// operator catalog from it.
//
// The schema is a CUE document. A default copy is embedded in the
// binary; deployments can substitute their own with LoadFile. Limit
// bounds are not part of the schema text - they are parameters filled
// in at load time, so the same schema serves differently sized
// deployments.
//
// A loaded Schema is immutable and safe for concurrent use.
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed querydoc.cue
var embeddedSchema string

// Root-level document fields, in serialization order. Kept in sync with
// #QueryDocument in querydoc.cue.
var rootFields = []string{"properties", "resources", "conditions", "limit", "offset", "sorts"}

// Config carries the limit bounds injected into the schema at load
// time.
type Config struct {
	// MaxLimit is the largest permissible limit value.
	MaxLimit int64

	// DefaultLimit is populated into documents that carry no explicit
	// limit.
	DefaultLimit int64
}

// DefaultConfig is used by callers that do not bound result size
// themselves.
var DefaultConfig = Config{MaxLimit: 1000, DefaultLimit: 100}

// Schema is the loaded query-document schema: the operator catalog,
// the root-level defaults, and the validator.
type Schema struct {
	ctx      *cue.Context
	document cue.Value // the #QueryDocument definition
	catalog  Catalog
	defaults map[string]any
}

// Load builds a Schema from the embedded schema document.
func Load(cfg Config) (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(embeddedSchema, cue.Filename("querydoc.cue"))
	return build(ctx, root, cfg)
}

// LoadFile builds a Schema from a schema document on disk.
func LoadFile(path string, cfg Config) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaNotFound, Message: fmt.Sprintf("reading schema: %v", err)}
	}
	ctx := cuecontext.New()
	root := ctx.CompileString(string(src), cue.Filename(path))
	return build(ctx, root, cfg)
}

func build(ctx *cue.Context, root cue.Value, cfg Config) (*Schema, error) {
	if err := root.Err(); err != nil {
		return nil, wrapCUEError(ErrCodeSchemaInvalid, err)
	}
	if cfg.MaxLimit <= 0 || cfg.DefaultLimit <= 0 {
		return nil, &LoadError{Code: ErrCodeBadLimitConfig,
			Message: fmt.Sprintf("limit bounds must be positive (max=%d, default=%d)", cfg.MaxLimit, cfg.DefaultLimit)}
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		return nil, &LoadError{Code: ErrCodeBadLimitConfig,
			Message: fmt.Sprintf("default limit %d exceeds maximum %d", cfg.DefaultLimit, cfg.MaxLimit)}
	}

	root = root.FillPath(cue.ParsePath("#maxLimit"), cfg.MaxLimit)
	root = root.FillPath(cue.ParsePath("#defaultLimit"), cfg.DefaultLimit)
	if err := root.Err(); err != nil {
		return nil, wrapCUEError(ErrCodeSchemaInvalid, err)
	}

	catalog, err := loadCatalog(root)
	if err != nil {
		return nil, err
	}

	document := root.LookupPath(cue.ParsePath("#QueryDocument"))
	if !document.Exists() {
		return nil, &LoadError{Code: ErrCodeSchemaInvalid, Message: "schema does not define #QueryDocument"}
	}

	defaults, err := loadRootDefaults(document)
	if err != nil {
		return nil, err
	}

	return &Schema{
		ctx:      ctx,
		document: document,
		catalog:  catalog,
		defaults: defaults,
	}, nil
}

// loadRootDefaults collects the declared default for every root-level
// document property that has one. These are inserted explicitly into
// assembled documents before validation.
func loadRootDefaults(document cue.Value) (map[string]any, error) {
	defaults := make(map[string]any)
	for _, field := range rootFields {
		val := document.LookupPath(cue.MakePath(cue.Str(field).Optional()))
		if !val.Exists() {
			continue
		}
		def, ok := val.Default()
		if !ok || !def.IsConcrete() {
			continue
		}
		var decoded any
		if err := def.Decode(&decoded); err != nil {
			return nil, wrapCUEError(ErrCodeSchemaInvalid, err)
		}
		defaults[field] = decoded
	}
	return defaults, nil
}

// Catalog returns the operator catalog derived from the schema.
func (s *Schema) Catalog() Catalog {
	return s.catalog
}

// RootDefaults returns a copy of the root-level property defaults.
func (s *Schema) RootDefaults() map[string]any {
	out := make(map[string]any, len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v
	}
	return out
}

// Validate checks an assembled document (in plain-data form) against
// the schema. Returns a *ValidationError describing every violation,
// or nil when the document conforms.
func (s *Schema) Validate(doc map[string]any) error {
	encoded := s.ctx.Encode(doc)
	if err := encoded.Err(); err != nil {
		return wrapValidationError(err)
	}

	unified := s.document.Unify(encoded)
	if err := unified.Err(); err != nil {
		return wrapValidationError(err)
	}
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return wrapValidationError(err)
	}
	return nil
}

package querydoc

import (
	"fmt"

	"github.com/spf13/cast"
)

// Validator is the capability Finalize needs from a schema: the
// root-level defaults to populate and a validation check over the
// plain-data document form. schema.Schema satisfies it.
type Validator interface {
	RootDefaults() map[string]any
	Validate(doc map[string]any) error
}

// Finalize populates root-level schema defaults into the assembled
// document and validates the result. Every root property with a
// declared default is filled when the document left it absent;
// clause-valued defaults are decoded into typed entries. The returned
// document is the one handed to callers; on any validation failure
// there is no partial result.
func Finalize(doc Document, s Validator) (Document, error) {
	for field, def := range s.RootDefaults() {
		var err error
		switch field {
		case "limit":
			if doc.Limit == nil {
				var n int64
				if n, err = cast.ToInt64E(def); err == nil {
					doc.Limit = &n
				}
			}
		case "offset":
			if doc.Offset == nil {
				var n int64
				if n, err = cast.ToInt64E(def); err == nil {
					doc.Offset = &n
				}
			}
		case "properties":
			if doc.Properties == nil {
				doc.Properties, err = decodeSelectables(def)
			}
		case "resources":
			if doc.Resources == nil {
				doc.Resources, err = decodeResources(def)
			}
		case "conditions":
			if doc.Conditions == nil {
				doc.Conditions, err = decodeFilters(def)
			}
		case "sorts":
			if doc.Sorts == nil {
				doc.Sorts, err = decodeSorts(def)
			}
		default:
			return Document{}, fmt.Errorf("schema declares a default for unknown root property %q", field)
		}
		if err != nil {
			return Document{}, fmt.Errorf("schema default for %s: %w", field, err)
		}
	}

	m, err := doc.AsMap()
	if err != nil {
		return Document{}, err
	}
	if err := s.Validate(m); err != nil {
		return Document{}, err
	}
	return doc, nil
}

package aiservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

/* =================================================================================
							RESPONSE SCHEMA DEFINITION
	Tells the model how to shape its JSON and lets us check that it did.
=================================================================================*/

// Schema type names, in the Gemini dialect.
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeNumber  = "NUMBER"
	TypeInteger = "INTEGER"
	TypeBoolean = "BOOLEAN"
)

// ErrSchemaMismatch is returned when model output does not conform to the declared schema.
var ErrSchemaMismatch = errors.New("model output does not match schema")

// Schema describes a structured model response ("Controlled Generation").
type Schema struct {
	// Type is one of the Type* constants.
	Type string `json:"type"`

	// Description explains the field to the model.
	Description string `json:"description,omitempty"`

	// Properties maps field names to child schemas when Type is OBJECT.
	Properties map[string]*Schema `json:"properties,omitempty"`

	// Items is the element schema when Type is ARRAY.
	Items *Schema `json:"items,omitempty"`

	// Required lists the properties the model MUST include.
	Required []string `json:"required,omitempty"`
}

// Validate checks raw JSON against the schema.
// Required properties must be present and non-null, and every present value must have the declared type.
func (s *Schema) Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaMismatch, err)
	}
	return s.check("$", v)
}

func (s *Schema) check(path string, v any) error {
	if s == nil {
		return nil
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, "object", v)
		}
		for _, name := range s.Required {
			if val, ok := obj[name]; !ok || val == nil {
				return fmt.Errorf("%w: %s.%s is required", ErrSchemaMismatch, path, name)
			}
		}
		for name, child := range s.Properties {
			val, ok := obj[name]
			if !ok || val == nil {
				continue
			}
			if err := child.check(path+"."+name, val); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, "array", v)
		}
		for i, el := range arr {
			if err := s.Items.check(fmt.Sprintf("%s[%d]", path, i), el); err != nil {
				return err
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return mismatch(path, "string", v)
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return mismatch(path, "number", v)
		}
	case TypeInteger:
		f, ok := v.(float64)
		if !ok || f != float64(int64(f)) {
			return mismatch(path, "integer", v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, "boolean", v)
		}
	default:
		return fmt.Errorf("unsupported schema type %q at %s", s.Type, path)
	}
	return nil
}

func mismatch(path, want string, got any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrSchemaMismatch, path, want, got)
}

// JSONSchema converts the schema to standard JSON-Schema, as OpenAI's
// json_schema response format expects. Strict mode needs every property
// listed as required and additionalProperties=false on every object.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}

	out := map[string]any{"type": strings.ToLower(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}

	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		names := make([]string, 0, len(s.Properties))
		for name, child := range s.Properties {
			props[name] = child.JSONSchema()
			names = append(names, name)
		}
		out["properties"] = props
		slices.Sort(names)
		out["required"] = names
		out["additionalProperties"] = false
	case TypeArray:
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	SchemaExtended = "extended"
	SchemaSimple   = "simple"
)

const extendedSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "category", "due_date", "time_slot", "completed", "priority", "reminder_set"],
    "properties": {
      "id": {"type": "integer"},
      "title": {"type": "string"},
      "category": {"type": "string"},
      "due_date": {"type": "string"},
      "time_slot": {"type": "string"},
      "completed": {"type": "boolean"},
      "priority": {"type": "string"},
      "reminder_set": {"type": "boolean"}
    }
  }
}`

const simpleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["task", "date", "completed"],
    "properties": {
      "task": {"type": "string"},
      "date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
      "completed": {"type": "boolean"}
    }
  }
}`

// Violation is one schema failure inside a backing file.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Verify checks a raw backing file against the schema of the given task
// variant. A nil slice with a nil error means the document is valid; an
// error means the document could not be checked at all.
func Verify(data []byte, variant string) ([]Violation, error) {
	var doc any
	if len(bytes.TrimSpace(data)) == 0 {
		doc = []any{}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	sch, err := compileSchema(variant)
	if err != nil {
		return nil, err
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	var out []Violation
	collectViolations(&out, ve)
	return out, nil
}

func compileSchema(variant string) (*jsonschema.Schema, error) {
	var src string
	switch variant {
	case "", SchemaExtended:
		src = extendedSchema
	case SchemaSimple:
		src = simpleSchema
	default:
		return nil, fmt.Errorf("unknown task schema %q", variant)
	}
	url := "tasks-" + variant + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func collectViolations(out *[]Violation, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, Violation{Path: err.InstanceLocation, Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(out, cause)
	}
}

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/webnote/internal/todo"
	"github.com/nibzard/webnote/internal/utils"
)

// SchemaFile is the file name init writes the schema to.
const SchemaFile = "tasks.schema.json"

const schemaText = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "webnote task list",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed"],
    "properties": {
      "id": {"type": "integer", "minimum": 1, "maximum": 9007199254740991},
      "title": {"type": "string", "pattern": "\\S"},
      "description": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}
`

var taskListSchema = jsonschema.MustCompileString(SchemaFile, schemaText)

// Schema returns the JSON Schema the stored value must satisfy.
func Schema() string {
	return schemaText
}

// Encode renders the list in its stored form: a JSON array with 2-space
// indentation and a trailing newline.
func Encode(list todo.List) ([]byte, error) {
	if list == nil {
		list = todo.List{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal task list: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a stored value. It fails on anything that is not a task list
// satisfying the schema and the list invariants.
func Decode(data []byte) (todo.List, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrAbsent
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse task list: %w", err)
	}
	if err := taskListSchema.Validate(raw); err != nil {
		return nil, schemaError(err)
	}

	var list todo.List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// SchemaViolation lists every leaf failure reported by the validator.
type SchemaViolation struct {
	Causes []*todo.ValidationError
}

func (e *SchemaViolation) Error() string {
	if len(e.Causes) == 0 {
		return "schema validation failed"
	}
	if len(e.Causes) == 1 {
		return "schema validation failed: " + e.Causes[0].Error()
	}
	return fmt.Sprintf("schema validation failed: %s (and %d more)", e.Causes[0], len(e.Causes)-1)
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	violation := &SchemaViolation{}
	collectSchemaErrors(violation, ve)
	return violation
}

func collectSchemaErrors(v *SchemaViolation, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		v.Causes = append(v.Causes, &todo.ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(v, cause)
	}
}

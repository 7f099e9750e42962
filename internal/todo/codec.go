package todo

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
)

const collectionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "completed"],
    "properties": {
      "id":        {"type": "integer"},
      "text":      {"type": "string", "minLength": 1},
      "completed": {"type": "boolean"}
    }
  }
}`

var schema = jsonschema.MustCompileString("todos.schema.json", collectionSchema)

// Encode serializes the collection as a JSON array. nil encodes as [].
func Encode(todos []model.Todo) ([]byte, error) {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses and validates a serialized collection. Records must carry
// an integer id, non-empty text and a completed flag; ids must be unique.
func Decode(b []byte) ([]model.Todo, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var todos []model.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	seen := make(map[int64]struct{}, len(todos))
	for _, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

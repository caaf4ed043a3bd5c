// Package transfer reads and writes task documents: a JSON array of tasks in
// the same shape as the persisted list.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"taskflow/internal/model"
)

// ErrInvalidDocument wraps every reason a document cannot be imported.
var ErrInvalidDocument = errors.New("invalid task document")

const schemaURL = "taskflow://tasks.schema.json"

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "date", "category", "isDone", "priority", "hasReminder"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string", "minLength": 1},
      "date": {"type": ["string", "number"]},
      "category": {"type": "string"},
      "isDone": {"type": "boolean"},
      "priority": {"enum": ["High", "Medium", "Low"]},
      "note": {"type": ["string", "null"]},
      "hasReminder": {"type": "boolean"},
      "recurrence": {"enum": ["None", "Daily", "Weekly", "Monthly"]}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Export encodes tasks as a document.
func Export(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Decode validates data against the document schema, decodes it and checks
// every task the way a stored task is checked.
func Decode(data []byte) ([]model.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, firstCause(err))
	}

	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for i, task := range tasks {
		if err := model.ValidateTask(task); err != nil {
			return nil, fmt.Errorf("%w: /%d: %w", ErrInvalidDocument, i, err)
		}
	}
	return tasks, nil
}

// Import appends the decoded document to existing. existing is returned
// unchanged when the document is invalid.
func Import(existing []model.Task, data []byte) ([]model.Task, error) {
	imported, err := Decode(data)
	if err != nil {
		return existing, err
	}
	out := make([]model.Task, 0, len(existing)+len(imported))
	out = append(out, existing...)
	return append(out, imported...), nil
}

// WriteFile exports tasks to path, replacing any previous file atomically.
func WriteFile(path string, tasks []model.Task) error {
	data, err := Export(tasks)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ReadFile(path string) ([]model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// firstCause digs out the innermost schema failure so the message names the
// offending field instead of the whole document.
func firstCause(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}

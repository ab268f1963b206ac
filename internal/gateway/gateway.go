// Package gateway fetches todos from the remote endpoint or from a
// local JSON file, validating the response shape before decoding.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todoview/internal/model"
)

// DefaultEndpoint serves the todo collection.
const DefaultEndpoint = "https://jsonplaceholder.typicode.com/todos"

// ErrFetch wraps every failure a gateway reports: transport errors,
// non-2xx statuses and bodies that do not decode into todos.
var ErrFetch = errors.New("fetch failed")

// Gateway performs the fetches the UI depends on.
type Gateway interface {
	FetchTodos(ctx context.Context) ([]model.Todo, error)
	FetchTodo(ctx context.Context, id int) (model.Todo, error)
}

// New returns a FileGateway for file:// endpoints and an HTTPGateway
// otherwise.
func New(endpoint string, timeout time.Duration) (Gateway, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + path
		}
		return NewFileGateway(path), nil
	case "http", "https":
		return NewHTTPGateway(endpoint, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
}

const todoSchema = `{
  "type": "object",
  "required": ["userId", "id", "title", "completed"],
  "properties": {
    "userId":    {"type": "integer", "minimum": 0},
    "id":        {"type": "integer", "minimum": 0},
    "title":     {"type": "string"},
    "completed": {"type": "boolean"}
  }
}`

const todosSchema = `{
  "type": "array",
  "items": {"$ref": "todo.json"}
}`

const schemaBase = "https://todoview.invalid/schema/"

var (
	listSchema = mustCompile(schemaBase + "todos.json")
	itemSchema = mustCompile(schemaBase + "todo.json")
)

func mustCompile(name string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaBase+"todo.json", strings.NewReader(todoSchema)); err != nil {
		panic(err)
	}
	if err := compiler.AddResource(schemaBase+"todos.json", strings.NewReader(todosSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// decode validates body against schema and unmarshals it into out.
func decode(body []byte, schema *jsonschema.Schema, out any) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("%w: malformed body: %w", ErrFetch, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrFetch, describeSchemaError(err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}
	return nil
}

// describeSchemaError reduces a validation tree to its first leaf.
func describeSchemaError(err error) string {
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
	return fmt.Sprintf("unexpected body at %s: %s", loc, ve.Message)
}

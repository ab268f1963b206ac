package gateway

import (
	"context"
	"fmt"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/store/jsonstore"
)

// FileGateway serves todos from a JSON array on disk.
type FileGateway struct {
	path string
}

func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

func (g *FileGateway) FetchTodos(ctx context.Context) ([]model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	body, err := jsonstore.LoadRaw(g.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	var todos []model.Todo
	if err := decode(body, listSchema, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (g *FileGateway) FetchTodo(ctx context.Context, id int) (model.Todo, error) {
	todos, err := g.FetchTodos(ctx)
	if err != nil {
		return model.Todo{}, err
	}
	for _, t := range todos {
		if id >= 0 && t.ID == uint64(id) {
			return t, nil
		}
	}
	return model.Todo{}, fmt.Errorf("%w: todo %d not in %s", ErrFetch, id, g.path)
}

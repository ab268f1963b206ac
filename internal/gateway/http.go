package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/todoview/internal/model"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// HTTPGateway fetches todos over HTTP with GET requests.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

func NewHTTPGateway(endpoint string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the collection URL.
func (g *HTTPGateway) Endpoint() string { return g.endpoint }

func (g *HTTPGateway) FetchTodos(ctx context.Context) ([]model.Todo, error) {
	body, err := g.get(ctx, g.endpoint)
	if err != nil {
		return nil, err
	}
	var todos []model.Todo
	if err := decode(body, listSchema, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (g *HTTPGateway) FetchTodo(ctx context.Context, id int) (model.Todo, error) {
	body, err := g.get(ctx, g.endpoint+"/"+strconv.Itoa(id))
	if err != nil {
		return model.Todo{}, err
	}
	var todo model.Todo
	if err := decode(body, itemSchema, &todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (g *HTTPGateway) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrFetch, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	return body, nil
}

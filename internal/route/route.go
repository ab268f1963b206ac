// Package route maps navigation paths to the two application routes.
package route

import (
	"strconv"
	"strings"
)

// Route is one of Home or Detail. The set is closed: only this package
// can add variants.
type Route interface {
	// Path renders the route back to its canonical path.
	Path() string
	isRoute()
}

// Home is the todo list at "/".
type Home struct{}

// Detail is a single todo at "/todo/{id}".
type Detail struct {
	ID int
}

func (Home) Path() string     { return "/" }
func (d Detail) Path() string { return "/todo/" + strconv.Itoa(d.ID) }

func (Home) isRoute()   {}
func (Detail) isRoute() {}

// Match parses path into a Route. Query strings and fragments are
// ignored. ok is false when no route matches, including a /todo/{id}
// whose id is not a signed 32-bit integer.
func Match(path string) (r Route, ok bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == "/" {
		return Home{}, true
	}
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segs) == 2 && segs[0] == "todo" {
		id, err := strconv.ParseInt(segs[1], 10, 32)
		if err != nil {
			return nil, false
		}
		return Detail{ID: int(id)}, true
	}
	return nil, false
}

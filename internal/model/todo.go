package model

// Todo is one remote task record as served by the todos endpoint.
// Values are never mutated after decoding; a new fetch replaces the
// whole slice.
type Todo struct {
	UserID    uint64 `json:"userId"`
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

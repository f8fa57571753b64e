package topic

import (
	"context"
	"errors"
)

// ErrUnexpectedShape is returned when the backend answers the topic listing
// with a payload that is neither a list of names nor an object wrapping one.
var ErrUnexpectedShape = errors.New("unexpected topic list shape")

// Store defines remote persistence for the topic list. The backend owns the
// list; every save replaces it wholesale.
type Store interface {
	// List returns the stored topic names.
	List(ctx context.Context) ([]string, error)
	// Save replaces the stored topic names with topics.
	Save(ctx context.Context, topics []string) error
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Read when nothing is stored at the path.
	ErrNotFound = errors.New("document not found")
	// ErrMalformed is returned by ReadJSON when the stored bytes do not decode.
	ErrMalformed = errors.New("malformed document")
)

// DataRepository is the document store behind exercises, assignments and
// results. Paths are slash-separated, e.g. "exercises/ex-1".
type DataRepository interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
}

// Lister is implemented by stores that can enumerate paths.
type Lister interface {
	ListPaths(ctx context.Context, prefix string, limit int) ([]string, error)
}

// ErrListUnsupported is returned when no store in the chain is a Lister.
var ErrListUnsupported = errors.New("store does not support listing")

// ListPaths lists paths under prefix, unwrapping decorators until it finds
// a store that implements Lister.
func ListPaths(ctx context.Context, repo DataRepository, prefix string, limit int) ([]string, error) {
	for repo != nil {
		if l, ok := repo.(Lister); ok {
			return l.ListPaths(ctx, prefix, limit)
		}
		u, ok := repo.(interface{ Unwrap() DataRepository })
		if !ok {
			break
		}
		repo = u.Unwrap()
	}
	return nil, ErrListUnsupported
}

func ExercisePath(exerciseID string) string {
	return "exercises/" + exerciseID
}

func AssignmentPath(assignedExerciseID string) string {
	return "assignedExercises/" + assignedExerciseID
}

func ResultPath(exerciseID, resultID string) string {
	return ResultsPrefix(exerciseID) + resultID
}

func ResultsPrefix(exerciseID string) string {
	return "results/" + exerciseID + "/"
}

// ReadJSON reads the document at path and decodes it into a T.
func ReadJSON[T any](ctx context.Context, repo DataRepository, path string) (*T, error) {
	data, err := repo.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformed, path, err)
	}
	return &out, nil
}

// WriteJSON encodes v and stores it at path.
func WriteJSON(ctx context.Context, repo DataRepository, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return repo.Write(ctx, path, data)
}

package store

import "errors"

var (
	ErrNotFound        = errors.New("store: not found")
	ErrCompetitorTaken = errors.New("store: competitor already on roster")
	ErrInvalid         = errors.New("store: invalid record")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

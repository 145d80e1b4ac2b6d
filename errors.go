package balancer

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a node with the same identifier is
	// already registered.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when an operation refers to an unknown node.
	ErrNotFound = errors.New("node not found")

	// ErrInvalidParameter is returned when a node is constructed with a
	// non-positive weight.
	ErrInvalidParameter = errors.New("invalid parameter")
)

func duplicateKey(id any) error {
	return fmt.Errorf("balancer: node %v: %w", id, ErrDuplicateKey)
}

func notFound(id any) error {
	return fmt.Errorf("balancer: node %v: %w", id, ErrNotFound)
}

// Package gate is a small authorization registry. A Gate maps resource kinds
// to policies; handlers and services ask it whether an acting subject may
// perform an action on a concrete resource.
//
// The subject type is generic so the same registry works for plain user ids
// (Gate[uint]) or richer principals.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Action names an operation on a resource.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy decides whether subject may perform action on resource.
// resource is nil for collection-level checks (list, create).
type Policy[U any] interface {
	Can(ctx context.Context, subject U, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[U any] func(ctx context.Context, subject U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, subject U, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}

// Gate is safe for concurrent use once policies are registered.
type Gate[U comparable] struct {
	mu       sync.RWMutex
	policies map[string]Policy[U]
}

func New[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register binds a policy to a resource kind, replacing any previous one.
func (g *Gate[U]) Register(kind string, p Policy[U]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.policies[kind] = p
}

// Authorize returns ErrUnauthorized for the zero subject or a denied action,
// and an error wrapping ErrNoPolicyDefined when kind is unknown.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, kind string, resource any) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	g.mu.RLock()
	p, ok := g.policies[kind]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPolicyDefined, kind)
	}
	if !p.Can(ctx, subject, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, kind string, resource any) bool {
	return g.Authorize(ctx, subject, action, kind, resource) == nil
}

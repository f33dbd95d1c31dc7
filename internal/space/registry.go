// internal/space/registry.go
package space

import (
	"fmt"

	"github.com/xkilldash9x/fospace/internal/layout"
)

// ResolverID identifies a resolver within its Registry.
type ResolverID int

// Registry owns the resolvers created for one element list so that position
// tokens can refer to them by id. A Registry is task-local: each independently
// resolved section needs its own.
type Registry struct {
	resolvers []*Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) register(res *Resolver) ResolverID {
	r.resolvers = append(r.resolvers, res)
	return ResolverID(len(r.resolvers) - 1)
}

// Lookup returns the resolver registered under id. An unknown id means a
// position token escaped its registry, which is an invariant violation.
func (r *Registry) Lookup(id ResolverID) *Resolver {
	if id < 0 || int(id) >= len(r.resolvers) {
		panic(fmt.Sprintf("space: resolver %d not found in registry of %d", id, len(r.resolvers)))
	}
	return r.resolvers[id]
}

// Len is the number of registered resolvers.
func (r *Registry) Len() int { return len(r.resolvers) }

// -- Position Tokens --

// BreakPosition is attached to the penalty synthesized for a Break.
type BreakPosition struct {
	Resolver ResolverID
	// Original is the Break's own position, if it had one.
	Original layout.Position
}

func (p *BreakPosition) String() string {
	if p.Original != nil {
		return fmt.Sprintf("space-break(%d, %s)", p.Resolver, p.Original)
	}
	return fmt.Sprintf("space-break(%d)", p.Resolver)
}

// NoBreakPosition is attached to the zero-width box emitted for a run that
// has no break candidate.
type NoBreakPosition struct {
	Resolver ResolverID
}

func (p *NoBreakPosition) String() string {
	return fmt.Sprintf("space-nobreak(%d)", p.Resolver)
}

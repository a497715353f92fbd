// Package policy registers the CRM's authorization rules on a gate.
package policy

import (
	"context"

	"github.com/diewo77/go-crm/gate"
)

// Resource kinds known to the gate.
const (
	KindClient   = "client"
	KindNote     = "note"
	KindFollowUp = "followup"
	KindProposal = "proposal"
	KindProject  = "project"
)

// Ownable is implemented by every client-derived model.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows an action when the subject owns the resource.
// Collection-level checks (nil resource) are allowed for any signed-in user
// because listings are already scoped by user_id.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// resources without an owner are never reachable through this policy.
		return false
	}
	return ownable.GetUserID() == userID
}

// NewGate returns a gate with the ownership policy bound to every kind.
func NewGate() *gate.Gate[uint] {
	g := gate.New[uint]()
	p := NewOwnershipPolicy()
	for _, kind := range []string{KindClient, KindNote, KindFollowUp, KindProposal, KindProject} {
		g.Register(kind, p)
	}
	return g
}

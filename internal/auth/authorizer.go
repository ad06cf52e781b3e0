package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrResourceNotFound is returned by OwnerLookup when the instance does not
// exist.
var ErrResourceNotFound = errors.New("resource not found")

// Resource names an owned table. Only values declared here reach SQL, so
// Table and IDColumn are never user input.
type Resource struct {
	Name     string
	Table    string
	IDColumn string
}

var Recipes = Resource{Name: "recipe", Table: "recipes", IDColumn: "recipe_id"}

// OwnerLookup resolves the user id that owns a resource instance.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, res Resource, id int64) (int64, error)
}

type Decision int

const (
	Deny Decision = iota
	Allow
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	default:
		return "deny"
	}
}

type Authorizer struct {
	owners OwnerLookup
}

func NewAuthorizer(owners OwnerLookup) *Authorizer {
	return &Authorizer{owners: owners}
}

// Authorize allows admins and the owner; everyone else is denied.
func (a *Authorizer) Authorize(p Principal, ownerID int64) Decision {
	if p.IsAnonymous() {
		return Deny
	}

	if p.IsAdmin || p.UserID == ownerID {
		return Allow
	}

	return Deny
}

// AuthorizeResource checks existence before ownership, so a missing instance
// is reported as NotFound and never as Deny. Admins skip the lookup.
func (a *Authorizer) AuthorizeResource(ctx context.Context, p Principal, res Resource, id int64) (Decision, error) {
	if p.IsAnonymous() {
		return Deny, nil
	}

	if p.IsAdmin {
		return Allow, nil
	}

	ownerID, err := a.owners.OwnerOf(ctx, res, id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return NotFound, nil
		}
		return Deny, fmt.Errorf("lookup %s owner: %w", res.Name, err)
	}

	return a.Authorize(p, ownerID), nil
}

func (a *Authorizer) RequireAdmin(p Principal) Decision {
	if !p.IsAnonymous() && p.IsAdmin {
		return Allow
	}
	return Deny
}

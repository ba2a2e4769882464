// Package policy decides who may perform which write operation.
//
// Every protected operation has exactly one Rule in a static table and is
// evaluated by Check. Reads are public and never consult the table.
package policy

import (
	"errors"
	"fmt"
	"slices"
)

type Role string

const (
	Admin     Role = "Admin"
	ForumUser Role = "ForumUser"
)

// AllRoles is the closed set of roles the store must contain.
func AllRoles() []Role {
	return []Role{Admin, ForumUser}
}

type Operation string

const (
	CountryCreate Operation = "country.create"
	CountryUpdate Operation = "country.update"
	CountryDelete Operation = "country.delete"

	CityCreate Operation = "city.create"
	CityUpdate Operation = "city.update"
	CityDelete Operation = "city.delete"

	PlaceCreate Operation = "place.create"
	PlaceUpdate Operation = "place.update"
	PlaceDelete Operation = "place.delete"

	CommentCreate Operation = "comment.create"
	CommentUpdate Operation = "comment.update"
	CommentDelete Operation = "comment.delete"

	UserForceRelogin Operation = "user.force_relogin"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Rule grants an operation to any holder of Roles, or, when OwnerOrAdmin is
// set, to the resource owner and to admins.
type Rule struct {
	Roles        []Role
	OwnerOrAdmin bool
}

var members = Rule{Roles: []Role{Admin, ForumUser}}
var ownerOrAdmin = Rule{OwnerOrAdmin: true}

var rules = map[Operation]Rule{
	CountryCreate: members,
	CountryUpdate: ownerOrAdmin,
	CountryDelete: ownerOrAdmin,

	CityCreate: members,
	CityUpdate: ownerOrAdmin,
	CityDelete: ownerOrAdmin,

	PlaceCreate: members,
	PlaceUpdate: ownerOrAdmin,
	PlaceDelete: ownerOrAdmin,

	CommentCreate: members,
	CommentUpdate: ownerOrAdmin,
	CommentDelete: ownerOrAdmin,

	UserForceRelogin: {Roles: []Role{Admin}},
}

// RuleFor returns the rule registered for op.
func RuleFor(op Operation) (Rule, bool) {
	r, ok := rules[op]
	return r, ok
}

// Identity is the caller as described by a verified access token.
type Identity struct {
	Subject string
	Name    string
	Roles   []string
}

func (i *Identity) HasRole(r Role) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, string(r))
}

// Check returns nil when id may perform op on a resource owned by ownerID.
// ownerID is ignored by rules that are not ownership based.
func Check(op Operation, id *Identity, ownerID string) error {
	if id == nil || id.Subject == "" {
		return ErrUnauthenticated
	}

	rule, ok := rules[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %q", ErrForbidden, op)
	}

	if rule.OwnerOrAdmin {
		if id.HasRole(Admin) || (ownerID != "" && id.Subject == ownerID) {
			return nil
		}
		return ErrForbidden
	}

	for _, r := range rule.Roles {
		if id.HasRole(r) {
			return nil
		}
	}
	return ErrForbidden
}

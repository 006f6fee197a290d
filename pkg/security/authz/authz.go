// Package authz is the single place where DataSphere decides whether a caller
// may act.
//
// Roles live on the account row, never in the token, so every check starts
// by loading the caller's account. Role to capability grants are casbin
// policies; call sites ask for a Capability instead of comparing roles.
//
// Usage:
//
//	policy, _ := authz.NewPolicy(authz.DefaultGrants)
//	a := authz.New(store.Users(), policy)
//
//	// Gate an operation on a role set
//	admin, err := a.RequireRole(ctx, uid, authz.RoleAdmin)
//
//	// Owner or moderator
//	if !a.CanAct(ctx, uid, dataset.CreatedBy, authz.CapModerateContent) {
//	    return errors.ErrForbidden
//	}
package authz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// UserGetter loads an account by uid. A missing account is reported with
// errors.ErrUserNotFound.
type UserGetter interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// Authorizer evaluates role and ownership rules.
type Authorizer struct {
	users  UserGetter
	policy *Policy
}

// New creates an Authorizer.
func New(users UserGetter, policy *Policy) *Authorizer {
	return &Authorizer{users: users, policy: policy}
}

// lookup returns nil, nil when the account does not exist.
func (a *Authorizer) lookup(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, nil
	}
	user, err := a.users.Get(ctx, uid)
	if err != nil {
		if errors.IsCode(err, errors.ErrUserNotFound.Code) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequireRole returns the caller's account if its role is one of allowed.
// A caller without an account fails with ErrAccountNotFound (401) whatever
// allowed contains.
func (a *Authorizer) RequireRole(ctx context.Context, uid string, allowed ...Role) (*model.User, error) {
	user, err := a.lookup(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrAccountNotFound
	}

	role, err := ParseRole(user.Role)
	if err != nil || !containsRole(allowed, role) {
		logger.Warnw("authorization denied", "subject", uid, "role", user.Role, "allowed", allowed)
		return nil, errors.ErrForbidden
	}
	return user, nil
}

// CanActOnResource reports whether uid owns the resource or holds one of allowed.
func (a *Authorizer) CanActOnResource(ctx context.Context, uid, ownerID string, allowed ...Role) bool {
	if uid != "" && uid == ownerID {
		return true
	}

	user, err := a.lookup(ctx, uid)
	if err != nil {
		logger.Errorw("authorization lookup failed", "subject", uid, "error", err.Error())
		return false
	}
	if user == nil {
		return false
	}

	role, err := ParseRole(user.Role)
	if err != nil {
		return false
	}
	return containsRole(allowed, role)
}

// Require returns the caller's account if its role holds capability.
func (a *Authorizer) Require(ctx context.Context, uid string, c Capability) (*model.User, error) {
	return a.RequireRole(ctx, uid, a.policy.RolesWith(c)...)
}

// CanAct reports whether uid owns the resource or its role holds capability.
func (a *Authorizer) CanAct(ctx context.Context, uid, ownerID string, c Capability) bool {
	return a.CanActOnResource(ctx, uid, ownerID, a.policy.RolesWith(c)...)
}

// Policy returns the capability policy.
func (a *Authorizer) Policy() *Policy {
	return a.policy
}

package authz

import (
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = model.RoleUser
	RoleModerator Role = model.RoleModerator
	RoleAdmin     Role = model.RoleAdmin
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// ParseRole accepts exactly USER, MODERATOR or ADMIN.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", errors.ErrInvalidRole
}

func (r Role) String() string {
	return string(r)
}

// Capability is an object/action pair granted to roles by policy.
type Capability struct {
	Object string
	Action string
}

func (c Capability) String() string {
	return c.Object + ":" + c.Action
}

var (
	// CapModerateContent allows verifying, editing and deleting any dataset or comment.
	CapModerateContent = Capability{Object: "content", Action: "moderate"}
	// CapManageUsers allows changing roles.
	CapManageUsers = Capability{Object: "users", Action: "manage"}
	// CapViewAllUsers allows listing every account with its email and role.
	CapViewAllUsers = Capability{Object: "users", Action: "list"}
)

// DefaultGrants is the role to capability matrix seeded at start-up.
var DefaultGrants = map[Role][]Capability{
	RoleModerator: {CapModerateContent},
	RoleAdmin:     {CapModerateContent, CapManageUsers, CapViewAllUsers},
}

func containsRole(allowed []Role, r Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

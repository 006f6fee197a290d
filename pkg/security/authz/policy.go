package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/kart-io/logger"
)

// policyModel grants capabilities (obj, act) directly to roles (sub).
const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Options configures the capability policy.
type Options struct {
	// Persist stores the policy in the casbin_rule table so operators can
	// extend grants without a redeploy.
	Persist bool `json:"persist" mapstructure:"persist"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{Persist: false}
}

// Validate validates the options.
func (o *Options) Validate() error {
	return nil
}

// AddFlags adds flags for authz options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Persist, "authz.persist", o.Persist,
		"Persist role capability grants in the database through the casbin gorm adapter")
}

// Policy resolves role capabilities through a casbin enforcer.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy creates an in-memory policy seeded with grants.
func NewPolicy(grants map[Role][]Capability) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	p := &Policy{enforcer: e}
	if err := p.seed(grants); err != nil {
		return nil, err
	}
	return p, nil
}

// NewGormPolicy creates a policy stored in db. Missing default grants are
// added, existing rows are kept.
func NewGormPolicy(db *gorm.DB, grants map[Role][]Capability) (*Policy, error) {
	// This will automatically create the casbin_rule table if it doesn't exist
	a, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create gorm adapter: %w", err)
	}

	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	p := &Policy{enforcer: e}
	if err := p.seed(grants); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPolicyFromOptions picks the in-memory or persisted policy.
func NewPolicyFromOptions(opts *Options, db *gorm.DB) (*Policy, error) {
	if opts != nil && opts.Persist {
		return NewGormPolicy(db, DefaultGrants)
	}
	return NewPolicy(DefaultGrants)
}

func (p *Policy) seed(grants map[Role][]Capability) error {
	for role, caps := range grants {
		for _, c := range caps {
			added, err := p.enforcer.AddPolicy(string(role), c.Object, c.Action)
			if err != nil {
				return fmt.Errorf("failed to seed %s %s: %w", role, c, err)
			}
			if added {
				logger.Infow("Authorization grant added", "role", role.String(), "capability", c.String())
			}
		}
	}
	return nil
}

// Allowed reports whether role holds capability.
func (p *Policy) Allowed(role Role, c Capability) (bool, error) {
	return p.enforcer.Enforce(string(role), c.Object, c.Action)
}

// Grant adds capability to role.
func (p *Policy) Grant(role Role, c Capability) error {
	_, err := p.enforcer.AddPolicy(string(role), c.Object, c.Action)
	return err
}

// Revoke removes capability from role.
func (p *Policy) Revoke(role Role, c Capability) error {
	_, err := p.enforcer.RemovePolicy(string(role), c.Object, c.Action)
	return err
}

// RolesWith lists the roles that hold capability.
func (p *Policy) RolesWith(c Capability) []Role {
	var roles []Role
	for _, r := range Roles {
		if ok, err := p.Allowed(r, c); err == nil && ok {
			roles = append(roles, r)
		}
	}
	return roles
}

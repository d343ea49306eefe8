package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
)

// DefaultModel is the multi-tenant RBAC matcher used when no model file is
// supplied. Requests are (subject, object, action, domain); "p" rules carry
// (subject, object, action, domain) and "g" rules (subject, role, domain),
// so the same role name in two domains carries independent permissions.
const DefaultModel = `
[request_definition]
r = sub, obj, act, dom

[policy_definition]
p = sub, obj, act, dom

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.obj == p.obj && r.act == p.act && r.dom == p.dom
`

// EnforcerConfig assembles the evaluation primitive.
type EnforcerConfig struct {
	// ModelPath points at a Casbin model file. Empty selects DefaultModel.
	ModelPath string

	// ModelText overrides ModelPath when non-empty.
	ModelText string

	// Adapter is the policy adapter seeding the enforcer. Required.
	Adapter persist.Adapter

	// Watcher, when set, synchronizes policy reloads across instances.
	Watcher persist.Watcher
}

// NewEnforcer builds a SyncedEnforcer from the configured model and adapter
// and performs the initial full policy load.
func NewEnforcer(cfg *EnforcerConfig) (*casbin.SyncedEnforcer, error) {
	if cfg == nil || cfg.Adapter == nil {
		return nil, fmt.Errorf("authz: adapter is required")
	}

	var (
		m   model.Model
		err error
	)
	switch {
	case cfg.ModelText != "":
		m, err = model.NewModelFromString(cfg.ModelText)
	case cfg.ModelPath != "":
		m, err = model.NewModelFromFile(cfg.ModelPath)
	default:
		m, err = model.NewModelFromString(DefaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m, cfg.Adapter)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to create enforcer: %w", err)
	}

	if cfg.Watcher != nil {
		// SetWatcher installs a callback reloading policy on peer updates.
		if err := e.SetWatcher(cfg.Watcher); err != nil {
			return nil, fmt.Errorf("authz: failed to set watcher: %w", err)
		}
	}

	return e, nil
}

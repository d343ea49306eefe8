package authz

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
)

// ErrSavePolicyFiltered is returned when SavePolicy is called on an adapter
// holding a filtered (incomplete) rule set. Writing it back would silently
// drop every rule the filter excluded.
var ErrSavePolicyFiltered = stderrors.New("authz: cannot save policy while a filtered set is loaded")

// defaultOpTimeout bounds every storage call issued by the adapter.
const defaultOpTimeout = 10 * time.Second

// Adapter translates between the Casbin working set and the rule
// Repository. It implements persist.Adapter, persist.BatchAdapter,
// persist.FilteredAdapter and persist.UpdatableAdapter.
//
// The adapter is the only component that mutates rule storage. The
// enforcement guard reads through the enforcer and never touches it.
type Adapter struct {
	repo    Repository
	timeout time.Duration

	mu       sync.RWMutex
	filtered bool
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithOperationTimeout bounds each storage call. A timeout surfaces as an
// infrastructure error, never as a denial.
func WithOperationTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter creates an Adapter over the given repository.
func NewAdapter(repo Repository, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		repo:    repo,
		timeout: defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *Adapter) setFiltered(filtered bool) {
	a.mu.Lock()
	a.filtered = filtered
	a.mu.Unlock()
}

// IsFiltered reports whether the last successful load was partial. The flag
// stays set until a full LoadPolicy completes.
func (a *Adapter) IsFiltered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.filtered
}

// LoadPolicy reads every stored rule into the model. It propagates storage
// errors unchanged and applies nothing on failure.
func (a *Adapter) LoadPolicy(m model.Model) error {
	ctx, cancel := a.opContext()
	defer cancel()

	rules, err := a.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := loadRules(rules, m); err != nil {
		return err
	}
	a.setFiltered(false)
	return nil
}

// LoadFilteredPolicy loads only the rules matching the filter. A nil filter
// degrades to a full load. The filter must be a Filter or *Filter.
func (a *Adapter) LoadFilteredPolicy(m model.Model, filter interface{}) error {
	if filter == nil {
		return a.LoadPolicy(m)
	}

	var f Filter
	switch v := filter.(type) {
	case Filter:
		f = v
	case *Filter:
		f = *v
	case map[string][][]string:
		f = v
	default:
		return stderrors.New("authz: unsupported filter type")
	}

	ctx, cancel := a.opContext()
	defer cancel()

	rules, err := a.repo.LoadFiltered(ctx, f)
	if err != nil {
		return err
	}
	if err := loadRules(rules, m); err != nil {
		return err
	}
	a.setFiltered(true)
	return nil
}

// SavePolicy rewrites storage from the model: every stored rule is replaced
// by the rules currently held in the "p" and "g" sections, in one storage
// transaction. Refused while filtered.
func (a *Adapter) SavePolicy(m model.Model) error {
	if a.IsFiltered() {
		return ErrSavePolicyFiltered
	}

	var rules []Rule
	for _, sec := range []string{"p", "g"} {
		for ptype, ast := range m[sec] {
			for _, fields := range ast.Policy {
				rules = append(rules, NewRule(ptype, fields...))
			}
		}
	}

	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.ReplaceAll(ctx, rules)
}

// AddPolicy inserts a single rule. An existing tuple surfaces as a conflict.
func (a *Adapter) AddPolicy(sec string, ptype string, rule []string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.Add(ctx, NewRule(ptype, rule...))
}

// AddPolicies inserts many rules in one transaction; existing tuples are
// skipped, never duplicated.
func (a *Adapter) AddPolicies(sec string, ptype string, rules [][]string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.AddBatch(ctx, toRules(ptype, rules))
}

// RemovePolicy deletes the rule matching the full tuple exactly.
func (a *Adapter) RemovePolicy(sec string, ptype string, rule []string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.Remove(ctx, NewRule(ptype, rule...))
}

// RemovePolicies deletes many rules in one transaction.
func (a *Adapter) RemovePolicies(sec string, ptype string, rules [][]string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.RemoveBatch(ctx, toRules(ptype, rules))
}

// RemoveFilteredPolicy deletes rules where each supplied value matches the
// column at fieldIndex+offset. Used for bulk cleanup such as deleting every
// rule of a role or of a tenant domain.
func (a *Adapter) RemoveFilteredPolicy(sec string, ptype string, fieldIndex int, fieldValues ...string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	_, err := a.repo.RemoveFiltered(ctx, ptype, fieldIndex, fieldValues...)
	return err
}

// UpdatePolicy swaps one tuple for another. Updates are delete-then-recreate:
// there is no in-place field mutation.
func (a *Adapter) UpdatePolicy(sec string, ptype string, oldRule, newRule []string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.Replace(ctx, []Rule{NewRule(ptype, oldRule...)}, []Rule{NewRule(ptype, newRule...)})
}

// UpdatePolicies swaps many tuples in one transaction.
func (a *Adapter) UpdatePolicies(sec string, ptype string, oldRules, newRules [][]string) error {
	ctx, cancel := a.opContext()
	defer cancel()
	return a.repo.Replace(ctx, toRules(ptype, oldRules), toRules(ptype, newRules))
}

// UpdateFilteredPolicies replaces every rule matching the filter with the
// given new rules, in one storage transaction, and returns the rules that
// were removed.
func (a *Adapter) UpdateFilteredPolicies(sec string, ptype string, newRules [][]string, fieldIndex int, fieldValues ...string) ([][]string, error) {
	ctx, cancel := a.opContext()
	defer cancel()

	removed, err := a.repo.ReplaceFiltered(ctx, ptype, fieldIndex, fieldValues, toRules(ptype, newRules))
	if err != nil {
		return nil, err
	}

	out := make([][]string, len(removed))
	for i, r := range removed {
		out[i] = r.Fields
	}
	return out, nil
}

// Close releases the underlying storage connection.
func (a *Adapter) Close() error {
	return a.repo.Close()
}

func loadRules(rules []Rule, m model.Model) error {
	for _, r := range rules {
		if err := persist.LoadPolicyLine(r.Line(), m); err != nil {
			return err
		}
	}
	return nil
}

func toRules(ptype string, raw [][]string) []Rule {
	rules := make([]Rule, len(raw))
	for i, fields := range raw {
		rules[i] = NewRule(ptype, fields...)
	}
	return rules
}

// Interface guards.
var (
	_ persist.Adapter          = (*Adapter)(nil)
	_ persist.BatchAdapter     = (*Adapter)(nil)
	_ persist.FilteredAdapter  = (*Adapter)(nil)
	_ persist.UpdatableAdapter = (*Adapter)(nil)
)

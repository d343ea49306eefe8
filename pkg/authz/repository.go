package authz

import "context"

// Filter selects a subset of rules for a partial load. It maps a ptype to a
// list of patterns; a pattern is a list of positional values matched against
// v0.. in order, where an empty string is a wildcard. Patterns under the
// same ptype (and across ptypes) are combined with OR, the values inside a
// pattern with AND.
//
//	Filter{"p": {{"alice", "data1", "read"}}}
//
// loads only "p" rules whose first three values are exactly those.
type Filter map[string][][]string

// Repository defines the storage contract for policy rules. Implementations
// own uniqueness of the full (ptype, v0..v5) tuple and must surface a
// conflict, not a second row, when it is violated.
type Repository interface {
	// LoadAll returns every stored rule.
	LoadAll(ctx context.Context) ([]Rule, error)

	// LoadFiltered returns the rules matching the filter.
	LoadFiltered(ctx context.Context, filter Filter) ([]Rule, error)

	// ReplaceAll atomically deletes every stored rule and inserts the given
	// set. Either the full new set is visible afterwards or the old set is
	// untouched.
	ReplaceAll(ctx context.Context, rules []Rule) error

	// Add inserts a single rule. Inserting an existing tuple fails with a
	// conflict error.
	Add(ctx context.Context, rule Rule) error

	// AddBatch inserts many rules in one transaction. Tuples that already
	// exist are skipped rather than duplicated; the batch never half-applies.
	AddBatch(ctx context.Context, rules []Rule) error

	// Remove deletes the rule matching the full tuple exactly. Removing an
	// absent rule is a no-op.
	Remove(ctx context.Context, rule Rule) error

	// RemoveBatch deletes many rules in one transaction.
	RemoveBatch(ctx context.Context, rules []Rule) error

	// RemoveFiltered deletes rules of the given ptype where each supplied
	// value matches the column at fieldIndex+offset. Empty values match
	// anything. Returns the removed rules.
	RemoveFiltered(ctx context.Context, ptype string, fieldIndex int, fieldValues ...string) ([]Rule, error)

	// Replace swaps old tuples for new ones in one transaction. Rule
	// updates are delete-then-recreate.
	Replace(ctx context.Context, oldRules, newRules []Rule) error

	// ReplaceFiltered deletes rules of the given ptype matching the field
	// values as RemoveFiltered does, inserts the new rules, and commits
	// both in one transaction. Returns the removed rules.
	ReplaceFiltered(ctx context.Context, ptype string, fieldIndex int, fieldValues []string, newRules []Rule) ([]Rule, error)

	// Close releases the underlying storage connection.
	Close() error
}

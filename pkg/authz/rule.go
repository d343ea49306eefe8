// Package authz implements the authorization core for Aegis: the policy
// persistence adapter feeding the Casbin evaluation primitive, the rule
// repository contract, and the shared permission-requirement type consumed
// by the enforcement guard.
package authz

import "strings"

// MaxRuleFields is the number of positional value columns a rule row carries.
const MaxRuleFields = 6

// Well-known policy type discriminators.
const (
	// PTypePolicy marks an authorization rule ("p").
	PTypePolicy = "p"

	// PTypeGrouping marks a role-inheritance rule ("g").
	PTypeGrouping = "g"
)

// Rule is a single policy tuple: a ptype discriminator plus up to six
// positional values. Semantics of the values depend on the ptype and the
// matcher model, e.g. for "p": (subject, object, action, domain) and for
// "g": (child subject, parent role, domain).
//
// Fields beyond the arity of the ptype's model are simply absent. A rule
// with zero fields (bare ptype) is legal.
type Rule struct {
	PType  string
	Fields []string
}

// NewRule builds a Rule from a ptype and positional values. Values past
// MaxRuleFields are dropped and empty trailing values are trimmed so that
// the tuple has one canonical form.
func NewRule(ptype string, fields ...string) Rule {
	if len(fields) > MaxRuleFields {
		fields = fields[:MaxRuleFields]
	}
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	out := make([]string, end)
	copy(out, fields[:end])
	return Rule{PType: ptype, Fields: out}
}

// Line encodes the rule as a Casbin policy line: "p, alice, data1, read".
// A bare ptype encodes as just the ptype with no trailing separator.
func (r Rule) Line() string {
	if len(r.Fields) == 0 {
		return r.PType
	}
	var sb strings.Builder
	sb.WriteString(r.PType)
	for _, f := range r.Fields {
		sb.WriteString(", ")
		sb.WriteString(f)
	}
	return sb.String()
}

// Field returns the positional value at i, or "" when absent.
func (r Rule) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Equal reports whether two rules carry the same canonical tuple.
func (r Rule) Equal(other Rule) bool {
	if r.PType != other.PType || len(r.Fields) != len(other.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Requirement is a (resource, action) pair declared on a protected
// operation. An operation may declare any number of requirements; the guard
// demands that all of them are satisfied.
type Requirement struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// NewRequirement creates a permission requirement.
func NewRequirement(resource, action string) Requirement {
	return Requirement{Resource: resource, Action: action}
}

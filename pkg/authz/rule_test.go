package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRuleTrimsTrailingEmpties(t *testing.T) {
	r := NewRule("p", "admin", "data1", "read", "", "")
	assert.Equal(t, []string{"admin", "data1", "read"}, r.Fields)
	assert.Equal(t, "p, admin, data1, read", r.Line())
}

func TestNewRuleKeepsInteriorEmpties(t *testing.T) {
	r := NewRule("p", "admin", "", "read")
	assert.Equal(t, []string{"admin", "", "read"}, r.Fields)
}

func TestNewRuleDropsExcessFields(t *testing.T) {
	r := NewRule("p", "a", "b", "c", "d", "e", "f", "g")
	assert.Len(t, r.Fields, MaxRuleFields)
}

func TestRuleLineBarePType(t *testing.T) {
	assert.Equal(t, "g", NewRule("g").Line())
}

func TestRuleField(t *testing.T) {
	r := NewRule("p", "admin", "data1")
	assert.Equal(t, "admin", r.Field(0))
	assert.Equal(t, "", r.Field(5))
	assert.Equal(t, "", r.Field(-1))
}

func TestRuleEqual(t *testing.T) {
	a := NewRule("p", "admin", "data1", "read")
	b := NewRule("p", "admin", "data1", "read", "")
	c := NewRule("p", "admin", "data1", "write")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(NewRule("g", "admin", "data1", "read")))
}

package authz

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryValidatesRoles(t *testing.T) {
	h := testHierarchy(t)

	reg, err := NewRegistry(h, DefaultRequirements())
	require.NoError(t, err)

	roles, ok := reg.Required(OpGrantsEdit)
	require.True(t, ok)
	assert.Equal(t, []string{"admin"}, roles)

	_, ok = reg.Required("reports.export")
	assert.False(t, ok)
}

func TestNewRegistryRejectsUnknownRole(t *testing.T) {
	h := testHierarchy(t)

	_, err := NewRegistry(h, map[string][]string{
		OpUsersList: {"admin", "auditor"},
	})
	require.Error(t, err)
	var unknown *UnknownRoleError
	assert.ErrorAs(t, err, &unknown)
}

func TestNewRegistryRejectsEmptyOperation(t *testing.T) {
	_, err := NewRegistry(testHierarchy(t), map[string][]string{"": {"admin"}})
	assert.Error(t, err)
}

func TestRegistryOperationsSorted(t *testing.T) {
	reg, err := NewRegistry(testHierarchy(t), DefaultRequirements())
	require.NoError(t, err)

	ops := reg.Operations()
	require.NotEmpty(t, ops)
	assert.True(t, sort.StringsAreSorted(ops))
	assert.Contains(t, ops, OpCheckinSend)
}

func TestRegistryCopiesRequirementSlices(t *testing.T) {
	h := testHierarchy(t)
	input := map[string][]string{OpUsersList: {"admin"}}
	reg, err := NewRegistry(h, input)
	require.NoError(t, err)

	input[OpUsersList][0] = "colaborador"
	roles, _ := reg.Required(OpUsersList)
	assert.Equal(t, []string{"admin"}, roles)
}

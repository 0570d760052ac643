package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, PermissionTrackerWrite))
	assert.False(t, HasPermission(RoleUser, PermissionPromptsGlobal))
	assert.False(t, HasPermission(RoleUser, PermissionOutboxReplay))
	assert.True(t, HasPermission(RoleAdmin, PermissionOutboxReplay))
	assert.False(t, HasPermission("guest", PermissionTrackerRead))
}

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission(RoleAdmin, PermissionPromptsGlobal))

	err := CheckPermission(RoleUser, PermissionPromptsGlobal)
	var denied *PermissionDeniedError
	assert.ErrorAs(t, err, &denied)
	assert.Equal(t, PermissionPromptsGlobal, denied.Permission)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("root"))
}

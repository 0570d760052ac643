package rbac

import "slices"

// 权限常量
const (
	// 普通用户权限
	PermissionTrackerWrite = "tracker:write"
	PermissionTrackerRead  = "tracker:read"
	PermissionPromptsOwn   = "prompts:own"

	// 管理员权限
	PermissionPromptsGlobal = "prompts:global"
	PermissionOutboxReplay  = "outbox:replay"
	PermissionUsersPromote  = "users:promote"
)

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionTrackerRead,
		PermissionTrackerWrite,
		PermissionPromptsOwn,
	},
	RoleAdmin: {
		PermissionTrackerRead,
		PermissionTrackerWrite,
		PermissionPromptsOwn,
		PermissionPromptsGlobal,
		PermissionOutboxReplay,
		PermissionUsersPromote,
	},
}

// IsValidRole 检查角色是否存在
func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return slices.Contains(permissions, permission)
}

// CheckPermission 检查权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

package permissions

import "errors"

var (
	ErrUnknownPermission = errors.New("unknown permission")
	ErrAlreadyGranted    = errors.New("permission already granted to role")
	ErrNotGranted        = errors.New("permission not granted to role")
	ErrStaffRoleExists   = errors.New("role is already a staff role")
	ErrStaffRoleMissing  = errors.New("role is not a staff role")
)

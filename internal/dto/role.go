package dto

// CreateRoleRequest holds the payload for creating a role.
type CreateRoleRequest struct {
	Name          string   `json:"name" validate:"required,min=3,max=50"`
	Description   *string  `json:"description" validate:"omitempty,max=200"`
	PermissionIDs []string `json:"permissions" validate:"omitempty,dive,uuid"`
	Type          string   `json:"type" validate:"omitempty,oneof=system custom"`
}

// UpdateRoleRequest holds a partial role update. A nil PermissionIDs leaves the set unchanged.
type UpdateRoleRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=3,max=50"`
	Description   *string   `json:"description" validate:"omitempty,max=200"`
	PermissionIDs *[]string `json:"permissions" validate:"omitempty,dive,uuid"`
	Type          *string   `json:"type" validate:"omitempty,oneof=system custom"`
}

// CreatePermissionRequest holds the payload for creating a permission.
type CreatePermissionRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=50"`
	Resource    string  `json:"resource" validate:"required,min=3,max=50"`
	Action      string  `json:"action" validate:"required,min=3,max=50"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}

// UpdatePermissionRequest holds a partial permission update.
type UpdatePermissionRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=50"`
	Resource    *string `json:"resource" validate:"omitempty,min=3,max=50"`
	Action      *string `json:"action" validate:"omitempty,min=3,max=50"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}

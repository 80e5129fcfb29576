package models

import (
	"time"

	"github.com/lib/pq"
)

// RoleKind separates seeded roles from operator-defined ones.
type RoleKind string

const (
	RoleKindSystem RoleKind = "system"
	RoleKindCustom RoleKind = "custom"
)

// Role bundles permissions assignable to an admin.
type Role struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   *string        `db:"description" json:"description,omitempty"`
	PermissionIDs pq.StringArray `db:"permission_ids" json:"permissions"`
	Kind          RoleKind       `db:"kind" json:"type"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// RoleName is the lightweight projection used by selectors.
type RoleName struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Permission is an atomic named capability such as "admin.create".
type Permission struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Resource    string    `db:"resource" json:"resource"`
	Action      string    `db:"action" json:"action"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// RoleFilter captures filtering criteria for listing roles.
type RoleFilter struct {
	ListQuery
	Name        string
	Description string
	Kind        RoleKind
}

// PermissionFilter captures filtering criteria for listing permissions.
type PermissionFilter struct {
	ListQuery
	Name        string
	Resource    string
	Action      string
	Description string
}

package models

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AuditAction enumerates the recorded mutation kinds.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditActionForMethod maps an HTTP method to the action it records. Methods
// that do not mutate report false.
func AuditActionForMethod(method string) (AuditAction, bool) {
	switch method {
	case http.MethodPost:
		return AuditActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return AuditActionUpdate, true
	case http.MethodDelete:
		return AuditActionDelete, true
	default:
		return "", false
	}
}

// AuditLog is an append-only record of a successful mutating request.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"userId"`
	UserType   UserType       `db:"user_type" json:"userType"`
	Email      string         `db:"email" json:"email"`
	Action     AuditAction    `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resourceId,omitempty"`
	Changes    types.JSONText `db:"changes" json:"changes,omitempty"`
	IP         *string        `db:"ip" json:"ip,omitempty"`
	UserAgent  *string        `db:"user_agent" json:"userAgent,omitempty"`
	Timestamp  time.Time      `db:"timestamp" json:"timestamp"`
}

// UserLog records a successful login.
type UserLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	UserType  UserType  `db:"user_type" json:"userType"`
	Email     string    `db:"email" json:"email"`
	IP        *string   `db:"ip" json:"ip,omitempty"`
	UserAgent *string   `db:"user_agent" json:"userAgent,omitempty"`
	LoginTime time.Time `db:"login_time" json:"loginTime"`
}

// AuditLogFilter captures filtering criteria for listing audit logs.
type AuditLogFilter struct {
	ListQuery
	UserID     string
	UserType   UserType
	Email      string
	Action     AuditAction
	Resource   string
	ResourceID string
}

// UserLogFilter captures filtering criteria for listing login logs.
type UserLogFilter struct {
	ListQuery
	UserID   string
	UserType UserType
	Email    string
	IP       string
}

package models

import "time"

// UserType distinguishes the two identity collections.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeStudent UserType = "student"
)

// Valid reports whether t names a known identity kind.
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeStudent
}

// Admin is a back-office operator. Only admins carry a role.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleID       *string   `db:"role_id" json:"roleId,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Student is a learner account. Students never hold permissions.
type Student struct {
	ID             string     `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"firstName"`
	LastName       string     `db:"last_name" json:"lastName"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	EnrollmentYear int        `db:"enrollment_year" json:"enrollmentYear"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// AdminFilter captures filtering criteria for listing admins.
type AdminFilter struct {
	ListQuery
	Name     string
	Email    string
	RoleID   string
	IsActive *bool
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	ListQuery
	FirstName      string
	LastName       string
	Email          string
	IsActive       *bool
	EnrollmentYear *int
}

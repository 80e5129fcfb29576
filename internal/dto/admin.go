package dto

import "time"

// CreateAdminRequest holds the payload for creating an admin.
type CreateAdminRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=100"`
	RoleID   *string `json:"role" validate:"omitempty,uuid"`
	IsActive *bool   `json:"isActive"`
}

// UpdateAdminRequest holds a partial admin update.
type UpdateAdminRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=100"`
	RoleID   *string `json:"role" validate:"omitempty,uuid"`
	IsActive *bool   `json:"isActive"`
}

// CreateStudentRequest holds the payload for creating a student.
type CreateStudentRequest struct {
	FirstName      string     `json:"firstName" validate:"required,min=2,max=50"`
	LastName       string     `json:"lastName" validate:"required,min=2,max=50"`
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=6,max=100"`
	Phone          *string    `json:"phone" validate:"omitempty,min=10,max=15"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	Address        *string    `json:"address" validate:"omitempty,max=200"`
	EnrollmentYear *int       `json:"enrollmentYear" validate:"omitempty,min=1900,max=2100"`
	IsActive       *bool      `json:"isActive"`
}

// UpdateStudentRequest holds a partial student update.
type UpdateStudentRequest struct {
	FirstName      *string    `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName       *string    `json:"lastName" validate:"omitempty,min=2,max=50"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	Password       *string    `json:"password" validate:"omitempty,min=6,max=100"`
	Phone          *string    `json:"phone" validate:"omitempty,min=10,max=15"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	Address        *string    `json:"address" validate:"omitempty,max=200"`
	EnrollmentYear *int       `json:"enrollmentYear" validate:"omitempty,min=1900,max=2100"`
	IsActive       *bool      `json:"isActive"`
}

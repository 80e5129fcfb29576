package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const studentColumns = "id, first_name, last_name, email, password_hash, phone, date_of_birth, address, enrollment_year, is_active, created_at, updated_at"

var studentSorts = map[string]string{
	"firstName":      "first_name",
	"lastName":       "last_name",
	"email":          "email",
	"enrollmentYear": "enrollment_year",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

// StudentRepository persists student accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByEmail fetches a student by email, case-insensitively.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, normalizeEmail(email)); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail reports whether another student already uses email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return exists(ctx, r.db, "students", "email", normalizeEmail(email), excludeID)
}

// List returns students matching the filter together with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "first_name", "last_name", "email")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	b.contains("first_name", filter.FirstName)
	b.contains("last_name", filter.LastName)
	b.contains("email", filter.Email)
	if filter.EnrollmentYear != nil {
		b.eq("enrollment_year", *filter.EnrollmentYear)
	}
	if filter.IsActive != nil {
		b.eq("is_active", *filter.IsActive)
	}

	students := make([]models.Student, 0)
	total, err := selectPage(ctx, r.db, &students, studentColumns, "students", b, orderAndPage(filter.ListQuery, studentSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ListByEnrollmentYear returns one page of students enrolled in year.
func (r *StudentRepository) ListByEnrollmentYear(ctx context.Context, year int, q models.ListQuery) ([]models.Student, int, error) {
	return r.List(ctx, models.StudentFilter{ListQuery: q, EnrollmentYear: &year})
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.Email = normalizeEmail(student.Email)
	stamp(&student.CreatedAt, &student.UpdatedAt)
	const query = `INSERT INTO students (id, first_name, last_name, email, password_hash, phone, date_of_birth, address, enrollment_year, is_active, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :password_hash, :phone, :date_of_birth, :address, :enrollment_year, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists all mutable student fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.Email = normalizeEmail(student.Email)
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, password_hash = :password_hash,
        phone = :phone, date_of_birth = :date_of_birth, address = :address, enrollment_year = :enrollment_year, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res, "update student")
}

// UpdatePassword replaces the password hash of a student.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update student password: %w", err)
	}
	return requireAffected(res, "update student password")
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res, "delete student")
}

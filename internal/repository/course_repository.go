package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const courseColumns = "id, title, overview, resources, image, categories, rating, minute, price, admin_id, level, is_active, created_at, updated_at"

var courseSorts = map[string]string{
	"title":     "title",
	"rating":    "rating",
	"price":     "price",
	"minute":    "minute",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// CourseRepository persists courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByTitle reports whether another course already uses title.
func (r *CourseRepository) ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error) {
	return exists(ctx, r.db, "courses", "title", title, excludeID)
}

// List returns courses matching the filter together with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	b := &filterBuilder{}
	b.search(filter.Search, "title", "overview")
	b.between("created_at", filter.CreatedAfter, filter.CreatedBefore)
	b.contains("title", filter.Title)
	b.overlaps("categories", filter.Categories)
	if filter.Level != "" {
		b.eq("level", filter.Level)
	}
	b.atLeast("price", filter.MinPrice)
	b.atMost("price", filter.MaxPrice)
	b.atLeast("rating", filter.MinRating)
	if filter.AdminID != "" {
		b.eq("admin_id", filter.AdminID)
	}
	if filter.IsActive != nil {
		b.eq("is_active", *filter.IsActive)
	}

	courses := make([]models.Course, 0)
	total, err := selectPage(ctx, r.db, &courses, courseColumns, "courses", b, orderAndPage(filter.ListQuery, courseSorts, "created_at"))
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.Categories == nil {
		course.Categories = pq.StringArray{}
	}
	stamp(&course.CreatedAt, &course.UpdatedAt)
	const query = `INSERT INTO courses (id, title, overview, resources, image, categories, rating, minute, price, admin_id, level, is_active, created_at, updated_at)
        VALUES (:id, :title, :overview, :resources, :image, :categories, :rating, :minute, :price, :admin_id, :level, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists all mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	if course.Categories == nil {
		course.Categories = pq.StringArray{}
	}
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, overview = :overview, resources = :resources, image = :image, categories = :categories,
        rating = :rating, minute = :minute, price = :price, admin_id = :admin_id, level = :level, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res, "update course")
}

// Delete removes a course. Its modules are removed by the foreign key cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res, "delete course")
}

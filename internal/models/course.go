package models

import (
	"time"

	"github.com/lib/pq"
)

// CourseLevel grades course difficulty.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// Course is a catalogue entry authored by an admin.
type Course struct {
	ID         string         `db:"id" json:"id"`
	Title      string         `db:"title" json:"title"`
	Overview   string         `db:"overview" json:"overview"`
	Resources  string         `db:"resources" json:"resources"`
	Image      string         `db:"image" json:"image"`
	Categories pq.StringArray `db:"categories" json:"categories"`
	Rating     *float64       `db:"rating" json:"rating"`
	Minute     *int           `db:"minute" json:"minute"`
	Price      *float64       `db:"price" json:"price"`
	AdminID    *string        `db:"admin_id" json:"admin,omitempty"`
	Level      *CourseLevel   `db:"level" json:"level"`
	IsActive   bool           `db:"is_active" json:"isActive"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

// Module is a unit of a course.
type Module struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CourseID  string    `db:"course_id" json:"courseId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	ListQuery
	Title      string
	Level      CourseLevel
	Categories []string
	AdminID    string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	IsActive   *bool
}

// ModuleFilter captures filtering criteria for listing modules.
type ModuleFilter struct {
	ListQuery
	CourseID string
}

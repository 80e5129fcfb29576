package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestCourseRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	minPrice := 10.0
	filter := models.CourseFilter{
		Level:      models.CourseLevelBeginner,
		Categories: []string{"go"},
		MinPrice:   &minPrice,
	}
	now := time.Now()
	cols := []string{"id", "title", "overview", "resources", "image", "categories", "rating", "minute", "price", "admin_id", "level", "is_active", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses WHERE categories && $1 AND level = $2 AND price >= $3 ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WithArgs(sqlmock.AnyArg(), models.CourseLevelBeginner, 10.0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", "Go 101", "intro", "", "", "{go,backend}", 4.5, 90, 19.0, nil, "beginner", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE categories && $1 AND level = $2 AND price >= $3")).
		WithArgs(sqlmock.AnyArg(), models.CourseLevelBeginner, 10.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, []string{"go", "backend"}, []string(courses[0].Categories))
	require.NotNil(t, courses[0].Level)
	assert.Equal(t, models.CourseLevelBeginner, *courses[0].Level)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + moduleColumns + " FROM modules WHERE course_id = $1 ORDER BY name ASC LIMIT 10 OFFSET 0")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "course_id", "created_at", "updated_at"}).AddRow("m1", "Basics", "c1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM modules WHERE course_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	modules, total, err := repo.List(context.Background(), models.ModuleFilter{
		ListQuery: models.ListQuery{SortBy: "name", SortOrder: "asc"},
		CourseID:  "c1",
	})
	require.NoError(t, err)
	assert.Len(t, modules, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

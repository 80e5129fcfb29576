package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestFilterBuilderNumbersPlaceholders(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &filterBuilder{}
	b.search("ann", "name", "email")
	b.between("created_at", &after, nil)
	b.eq("is_active", true)
	b.contains("email", "")

	assert.Equal(t, " WHERE (name ILIKE $1 OR email ILIKE $1) AND created_at >= $2 AND is_active = $3", b.where())
	assert.Equal(t, []interface{}{"%ann%", after, true}, b.args)
}

func TestFilterBuilderEscapesLikeWildcards(t *testing.T) {
	b := &filterBuilder{}
	b.contains("email", "100%_done")
	assert.Equal(t, `%100\%\_done%`, b.args[0])
}

func TestOrderAndPageFallsBackToDefault(t *testing.T) {
	sorts := map[string]string{"name": "name"}

	got := orderAndPage(models.ListQuery{SortBy: "password_hash; DROP TABLE admins", Page: 2, Limit: 5}, sorts, "created_at")
	assert.Equal(t, " ORDER BY created_at DESC LIMIT 5 OFFSET 5", got)

	got = orderAndPage(models.ListQuery{SortBy: "name", SortOrder: "asc"}, sorts, "created_at")
	assert.Equal(t, " ORDER BY name ASC LIMIT 10 OFFSET 0", got)
}

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// bindJSON decodes the request body and writes a 400 envelope on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// listQuery reads the paging, sorting, search and creation window parameters shared by every list.
func listQuery(c *gin.Context) models.ListQuery {
	q := models.ListQuery{
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
		SortBy:    strings.TrimSpace(c.Query("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(c.Query("sortOrder"))),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	q.CreatedAfter = timeQuery(c, "createdAfter")
	q.CreatedBefore = timeQuery(c, "createdBefore")
	return q
}

func intQuery(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func boolQuery(c *gin.Context, key string) *bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func floatQuery(c *gin.Context, key string) *float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return nil
	}
	return &v
}

// timeQuery accepts RFC3339 timestamps or plain dates.
func timeQuery(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func page(c *gin.Context, items interface{}, pagination *models.Pagination, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, pagination, "")
}

func sendDocument(c *gin.Context, doc *export.Document, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/middleware"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// accessClaims returns the caller's access claims, writing a 401 when there are none.
func accessClaims(c *gin.Context) (models.AccessClaims, bool) {
	claims, ok := middleware.AccessClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		return models.AccessClaims{}, false
	}
	return claims, true
}

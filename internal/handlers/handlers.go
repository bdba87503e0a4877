// Package handlers translates HTTP requests into service calls and
// service errors back into status codes.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/database"
	"fitgrid/internal/logger"
	"fitgrid/internal/service"
)

type Handler struct {
	svc *service.Service
	db  *database.DB
}

func New(svc *service.Service, db *database.DB) *Handler {
	return &Handler{svc: svc, db: db}
}

func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		logger.WithContext(c.Request.Context()).Error("request failed", "error", appErr)
	}
	c.JSON(appErr.HTTPStatus, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    apperrors.CodeInvalidInput,
		"message": err.Error(),
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    apperrors.CodeInvalidInput,
			"message": "invalid id",
		})
		return 0, false
	}
	return id, true
}

// Health reports service liveness and database pool health.
func (h *Handler) Health(c *gin.Context) {
	check := h.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":    check.Status,
		"timestamp": time.Now().UTC(),
		"database":  check,
	})
}

package controller

import (
	"net/http"

	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/sheet"
	"sheet_lms_backend/internal/util"
	"sheet_lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthController struct {
	Store   sheet.Store
	Backend string
	Storage *service.StorageService
}

func NewHealthController(store sheet.Store, backend string, storage *service.StorageService) *HealthController {
	return &HealthController{Store: store, Backend: backend, Storage: storage}
}

// @Summary 健康检查
// @Description 读取 Users 表确认行存储可用
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	if _, err := c.Store.ReadAll(ctx.Request.Context(), repository.SheetUsers); err != nil {
		logger.Log.Warn("health check failed", zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "Row store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"row_store": c.Backend,
			"storage":   c.Storage.Backend(),
		},
	})
}

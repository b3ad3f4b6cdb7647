package controller

import (
	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetUserProgress godoc
// @Summary 用户学习进度
// @Description 本人或管理员可查看，包含总体统计
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=service.UserProgress}
// @Failure 403 {object} util.Response
// @Router /api/progress/{userId} [get]
func (c *ProgressController) GetUserProgress(ctx *gin.Context) {
	progress, err := c.ProgressService.ForUser(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch progress")
		return
	}
	util.Success(ctx, progress)
}

// GetCourseProgress godoc
// @Summary 课程进度
// @Description 当前用户在课程内按章节汇总的进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/progress/course/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.ForCourse(ctx.Request.Context(), claims.UserID, ctx.Param("courseId"))
	if err != nil {
		util.HandleError(ctx, err, "Failed to fetch course progress")
		return
	}
	util.Success(ctx, progress)
}
